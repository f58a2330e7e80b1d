package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/metagrid-io/console-client/internal/http"
	"github.com/metagrid-io/console-client/pkg/console"
)

// ResourceClient implements console.Resource for one resource path. One
// instance exists per logical entity kind (or per detail relationship); the
// path and permission never change after construction.
type ResourceClient struct {
	httpClient *http.Client
	cache      *console.Cache
	batch      *console.BatchExecutor

	path          string
	permission    console.Permission
	tableInfoPath string

	// typesFn overrides the types operation. Nil fetches {path}/types;
	// detail resources default to an empty catalogue instead.
	typesFn console.TypesResolver
}

// NewResourceClient creates a client for a flat (non-detail) resource path.
func NewResourceClient(httpClient *http.Client, cache *console.Cache, path string, permission console.Permission) *ResourceClient {
	path = strings.Trim(path, "/")

	return &ResourceClient{
		httpClient:    httpClient,
		cache:         cache,
		batch:         console.NewBatchExecutor(0),
		path:          path,
		permission:    permission,
		tableInfoPath: path + "/tableinfo",
	}
}

// Path implements console.Resource.Path.
func (c *ResourceClient) Path() string {
	return c.path
}

// Permission implements console.Resource.Permission.
func (c *ResourceClient) Permission() console.Permission {
	return c.permission
}

// get routes every GET through the cache table so the key convention is
// structural: console.KeyVolatile never stores, metadata keys live for the
// session.
func (c *ResourceClient) get(ctx context.Context, key, requestPath string, query url.Values) ([]byte, error) {
	return c.cache.Get(ctx, c.path, key, func(ctx context.Context) ([]byte, error) {
		resp, err := c.httpClient.Get(ctx, requestPath, query)
		if err != nil {
			return nil, err
		}

		return resp.Body, nil
	})
}

// Overview implements console.Resource.Overview.
func (c *ResourceClient) Overview(ctx context.Context) ([]console.Record, error) {
	body, err := c.get(ctx, console.KeyVolatile, c.path+"/overview", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching %s overview: %w", c.path, err)
	}

	return decodeRecords(body)
}

// List implements console.Resource.List.
func (c *ResourceClient) List(ctx context.Context) ([]console.Record, error) {
	return c.Overview(ctx)
}

// Summary implements console.Resource.Summary.
func (c *ResourceClient) Summary(ctx context.Context) ([]console.Record, error) {
	query := url.Values{"summarize": []string{""}}

	body, err := c.get(ctx, console.KeyVolatile, c.path+"/overview", query)
	if err != nil {
		return nil, fmt.Errorf("fetching %s summary: %w", c.path, err)
	}

	return decodeRecords(body)
}

// Item implements console.Resource.Item.
func (c *ResourceClient) Item(ctx context.Context, id string) (console.Record, error) {
	body, err := c.get(ctx, console.KeyVolatile, c.path+"/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching %s/%s: %w", c.path, id, err)
	}

	return decodeRecord(body)
}

// Create implements console.Resource.Create.
func (c *ResourceClient) Create(ctx context.Context, fields console.Record) (console.Record, error) {
	return c.put(ctx, c.path, fields)
}

// Save implements console.Resource.Save. The record must carry a non-empty
// id; create and save are the same underlying put, distinguished only by
// the id in the request path.
func (c *ResourceClient) Save(ctx context.Context, fields console.Record) (console.Record, error) {
	id := fields.ID()
	if id == "" {
		return nil, fmt.Errorf("saving %s: %w", c.path, console.ErrMissingID)
	}

	return c.put(ctx, c.path+"/"+id, fields)
}

func (c *ResourceClient) put(ctx context.Context, requestPath string, fields console.Record) (console.Record, error) {
	resp, err := c.httpClient.Put(ctx, requestPath, fields)
	if err != nil {
		return nil, fmt.Errorf("storing %s: %w", requestPath, err)
	}

	return decodeRecord(resp.Body)
}

// Delete implements console.Resource.Delete.
func (c *ResourceClient) Delete(ctx context.Context, id string) error {
	_, err := c.httpClient.Delete(ctx, c.path+"/"+id)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", c.path, id, err)
	}

	return nil
}

// DeleteAll implements console.Resource.DeleteAll.
func (c *ResourceClient) DeleteAll(ctx context.Context, ids []string) *console.BatchReport {
	return c.batch.Execute(ctx, ids, c.Delete)
}

// Test implements console.Resource.Test.
func (c *ResourceClient) Test(ctx context.Context, subtype string, fields console.Record) (string, error) {
	resp, err := c.httpClient.Post(ctx, c.path+"/test/"+subtype, fields)
	if err != nil {
		return "", fmt.Errorf("testing %s type %s: %w", c.path, subtype, err)
	}

	// The test endpoint answers with a plain JSON string ("ok" or a
	// diagnostic message).
	var result string
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return strings.TrimSpace(string(resp.Body)), nil
	}

	return result, nil
}

// Types implements console.Resource.Types.
func (c *ResourceClient) Types(ctx context.Context) ([]console.TypeInfo, error) {
	if c.typesFn != nil {
		return c.typesFn(ctx)
	}

	requestPath := c.path + "/types"

	body, err := c.get(ctx, requestPath, requestPath, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching %s types: %w", c.path, err)
	}

	var types []console.TypeInfo

	err = json.Unmarshal(body, &types)
	if err != nil {
		return nil, fmt.Errorf("parsing %s types: %w", c.path, err)
	}

	return types, nil
}

// TypeMap implements console.Resource.TypeMap.
func (c *ResourceClient) TypeMap(ctx context.Context) (console.TypeMap, error) {
	types, err := c.Types(ctx)
	if err != nil {
		return nil, err
	}

	return console.BuildTypeMap(types), nil
}

// TableInfo implements console.Resource.TableInfo.
func (c *ResourceClient) TableInfo(ctx context.Context) (*console.Table, error) {
	body, err := c.get(ctx, c.tableInfoPath, c.tableInfoPath, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching %s tableinfo: %w", c.path, err)
	}

	var table console.Table

	err = json.Unmarshal(body, &table)
	if err != nil {
		return nil, fmt.Errorf("parsing %s tableinfo: %w", c.path, err)
	}

	return &table, nil
}

// GUI implements console.Resource.GUI.
func (c *ResourceClient) GUI(ctx context.Context, subtype string) ([]console.FormField, error) {
	requestPath := c.path + "/gui"
	if subtype != "" {
		requestPath += "/" + subtype
	}

	body, err := c.get(ctx, console.KeyVolatile, requestPath, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching %s gui: %w", c.path, err)
	}

	var fields []console.FormField

	err = json.Unmarshal(body, &fields)
	if err != nil {
		return nil, fmt.Errorf("parsing %s gui: %w", c.path, err)
	}

	return fields, nil
}

// Logs implements console.Resource.Logs.
func (c *ResourceClient) Logs(ctx context.Context, id string) ([]console.LogEntry, error) {
	body, err := c.get(ctx, console.KeyVolatile, c.path+"/"+id+"/log", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching %s/%s log: %w", c.path, id, err)
	}

	var entries []console.LogEntry

	err = json.Unmarshal(body, &entries)
	if err != nil {
		return nil, fmt.Errorf("parsing %s/%s log: %w", c.path, id, err)
	}

	return entries, nil
}

// Detail implements console.Resource.Detail. The child path is
// {parent}/{id}/{child}; the schema request stays parent-scoped
// ({parent}/tableinfo/{id}/{child}) and the child is non-polymorphic unless
// a types resolver is supplied.
func (c *ResourceClient) Detail(id, child string, opts *console.DetailOptions) console.Resource {
	detail := &ResourceClient{
		httpClient:    c.httpClient,
		cache:         c.cache,
		batch:         console.NewBatchExecutor(0),
		path:          c.path + "/" + id + "/" + child,
		permission:    c.permission,
		tableInfoPath: c.path + "/tableinfo/" + id + "/" + child,
		typesFn:       emptyTypes,
	}

	if opts != nil {
		if opts.Permission != nil {
			detail.permission = *opts.Permission
		}

		if opts.Types != nil {
			detail.typesFn = opts.Types
		}
	}

	return detail
}

func emptyTypes(ctx context.Context) ([]console.TypeInfo, error) {
	return nil, nil
}

// GetPermissions implements console.Resource.GetPermissions.
func (c *ResourceClient) GetPermissions(ctx context.Context, id string) ([]console.PermissionEntry, error) {
	resp, err := c.httpClient.Get(ctx, "permissions/"+c.path+"/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching permissions of %s/%s: %w", c.path, id, err)
	}

	var entries []console.PermissionEntry

	err = json.Unmarshal(resp.Body, &entries)
	if err != nil {
		return nil, fmt.Errorf("parsing permissions of %s/%s: %w", c.path, id, err)
	}

	return entries, nil
}

// AddPermission implements console.Resource.AddPermission. principalKind is
// "users" or "groups".
func (c *ResourceClient) AddPermission(ctx context.Context, id, principalKind, principalID string, level console.Permission) error {
	requestPath := "permissions/" + c.path + "/" + id + "/" + principalKind + "/add/" + principalID

	_, err := c.httpClient.Put(ctx, requestPath, map[string]interface{}{"perm": int(level)})
	if err != nil {
		return fmt.Errorf("granting permission on %s/%s: %w", c.path, id, err)
	}

	return nil
}

// RevokePermissions implements console.Resource.RevokePermissions.
func (c *ResourceClient) RevokePermissions(ctx context.Context, ids []string) error {
	_, err := c.httpClient.Put(ctx, "permissions/revoke", map[string]interface{}{"items": ids})
	if err != nil {
		return fmt.Errorf("revoking permissions: %w", err)
	}

	return nil
}

func decodeRecords(body []byte) ([]console.Record, error) {
	var records []console.Record

	err := json.Unmarshal(body, &records)
	if err != nil {
		return nil, fmt.Errorf("parsing record list: %w", err)
	}

	return records, nil
}

func decodeRecord(body []byte) (console.Record, error) {
	if len(body) == 0 {
		return nil, nil
	}

	var record console.Record

	err := json.Unmarshal(body, &record)
	if err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}

	return record, nil
}
