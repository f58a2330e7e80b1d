package console

import (
	"context"
)

// TypesResolver overrides how a resource obtains its sub-type catalogue.
// Detail resources use it when they share the parent's types instead of
// exposing their own types endpoint.
type TypesResolver func(ctx context.Context) ([]TypeInfo, error)

// DetailOptions tune a detail resource derived from a parent record.
type DetailOptions struct {
	// Permission overrides the permission inherited from the parent.
	Permission *Permission

	// Types overrides the types operation. Nil means the detail resource
	// is non-polymorphic and reports an empty catalogue.
	Types TypesResolver
}

// Resource is one server-managed collection of entities, addressed by a
// stable path. All operations are blocking with context cancellation;
// callers needing read-after-write consistency must sequence the dependent
// fetch after the write returns, since no ordering holds between two
// requests in flight concurrently.
type Resource interface {
	// Path returns the resource path. Stable for the client's lifetime.
	Path() string

	// Overview fetches the full collection. Never cached: rows always
	// reflect live server state.
	Overview(ctx context.Context) ([]Record, error)

	// List is an alias of Overview.
	List(ctx context.Context) ([]Record, error)

	// Summary fetches the server-side summarized variant.
	Summary(ctx context.Context) ([]Record, error)

	// Item fetches one record by id. Never cached.
	Item(ctx context.Context, id string) (Record, error)

	// Create stores a new record. The local cache is untouched; callers
	// re-fetch to observe the change.
	Create(ctx context.Context, fields Record) (Record, error)

	// Save updates an existing record; fields must carry a non-empty id.
	Save(ctx context.Context, fields Record) (Record, error)

	// Delete removes one record. On failure the server's raw error body
	// is surfaced via *APIError.
	Delete(ctx context.Context, id string) error

	// DeleteAll deletes every id independently and reports once all
	// attempts resolve. Best effort: no rollback of completed deletes.
	DeleteAll(ctx context.Context, ids []string) *BatchReport

	// Test posts candidate settings to the type-scoped test endpoint
	// without mutating the resource.
	Test(ctx context.Context, subtype string, fields Record) (string, error)

	// Types fetches the sub-type catalogue. Cached for the session after
	// the first fetch.
	Types(ctx context.Context) ([]TypeInfo, error)

	// TypeMap returns the catalogue indexed by sub-type id.
	TypeMap(ctx context.Context) (TypeMap, error)

	// TableInfo fetches the listing schema descriptor. Cached for the
	// session after the first fetch.
	TableInfo(ctx context.Context) (*Table, error)

	// GUI fetches the editable-field schema for one sub-type ("" for
	// non-polymorphic kinds). Never cached: server-side defaults may
	// depend on context.
	GUI(ctx context.Context, subtype string) ([]FormField, error)

	// Logs fetches the server-side log of one record.
	Logs(ctx context.Context, id string) ([]LogEntry, error)

	// Permission returns the operator's capability tier on this resource.
	Permission() Permission

	// Detail derives a child resource scoped under one parent record.
	Detail(id, child string, opts *DetailOptions) Resource

	// GetPermissions lists explicit grants on one record.
	GetPermissions(ctx context.Context, id string) ([]PermissionEntry, error)

	// AddPermission grants a level to a user or group principal.
	AddPermission(ctx context.Context, id, principalKind, principalID string, level Permission) error

	// RevokePermissions revokes a set of grants by grant id.
	RevokePermissions(ctx context.Context, ids []string) error
}

// Client is the top-level console API client: a generic resource
// constructor plus accessors for the stock entity kinds the console ships
// with. It also resolves form filler callbacks, so it satisfies
// FillerResolver.
type Client interface {
	FillerResolver

	// Resource returns the client for an arbitrary resource path. Clients
	// are created once per path and reused.
	Resource(path string) Resource

	// Stock entity kinds.
	Providers() Resource
	Authenticators() Resource
	OSManagers() Resource
	Transports() Resource
	Networks() Resource
	ServicePools() Resource
	MetaPools() Resource
	Calendars() Resource
	Accounts() Resource
	Tunnels() Resource

	// Cache exposes the shared cache table (e.g. to flush after logout).
	Cache() *Cache
}
