package console

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record is one entity row as returned by the server. Records are opaque
// wire maps: they are re-fetched on every listing refresh and never patched
// locally. A record always carries "id"; polymorphic kinds also carry "type".
type Record map[string]interface{}

// ID returns the record's id field, or "" when absent.
func (r Record) ID() string {
	return r.stringField("id")
}

// Type returns the record's sub-type id, or "" for non-polymorphic kinds.
func (r Record) Type() string {
	return r.stringField("type")
}

func (r Record) stringField(name string) string {
	value, ok := r[name]
	if !ok {
		return ""
	}

	str, ok := value.(string)
	if !ok {
		return fmt.Sprintf("%v", value)
	}

	return str
}

// TypeInfo describes one polymorphic sub-type of an entity kind (an
// authenticator kind has sub-types such as "ldap" or "saml"). It feeds the
// "New <sub-type>" menu and per-type icon rendering.
type TypeInfo struct {
	Type        string `json:"type"            yaml:"type"`
	Name        string `json:"name"            yaml:"name"`
	Description string `json:"description"     yaml:"description"`
	Icon        string `json:"icon"            yaml:"icon"`
	Group       string `json:"group,omitempty" yaml:"group,omitempty"`
}

// TypeMap indexes the sub-types of an entity kind by sub-type id. An empty
// map means the kind is non-polymorphic and gets a plain "New" action.
type TypeMap map[string]TypeInfo

// BuildTypeMap indexes a type listing by sub-type id.
func BuildTypeMap(types []TypeInfo) TypeMap {
	typeMap := make(TypeMap, len(types))
	for _, info := range types {
		typeMap[info.Type] = info
	}

	return typeMap
}

// RenderType tags how a listing column renders its raw value. The vocabulary
// is fixed; unknown tags fall back to plain passthrough.
type RenderType string

const (
	RenderPlain      RenderType = "alphanumeric"
	RenderNumeric    RenderType = "numeric"
	RenderBoolean    RenderType = "boolean"
	RenderDate       RenderType = "date"
	RenderDateTime   RenderType = "datetime"
	RenderTime       RenderType = "time"
	RenderIcon       RenderType = "icon"
	RenderIconByType RenderType = "icon_type"
	RenderIconByDict RenderType = "icon_dict"
	RenderImage      RenderType = "image"
	RenderDict       RenderType = "dictionary"
	RenderCallback   RenderType = "callback"
)

// TableField describes one column of a listing, as declared by the server's
// tableinfo response. Visibility, sortable and searchable flags are
// authority, not hints.
type TableField struct {
	Name       string
	Title      string
	Type       RenderType
	Visible    bool
	Sortable   bool
	Searchable bool
	Width      string
	Dict       map[string]string
}

// tableFieldBody is the wire shape of a field descriptor. Each entry of
// the tableinfo "fields" array is a single-key object: the key is the field
// name and the value this body.
type tableFieldBody struct {
	Title      string            `json:"title"`
	Type       RenderType        `json:"type"`
	Visible    *bool             `json:"visible"`
	Sortable   bool              `json:"sortable"`
	Searchable bool              `json:"searchable"`
	Width      string            `json:"width"`
	Dict       map[string]string `json:"dict"`
}

// UnmarshalJSON decodes the single-key wire object while keeping the field
// name attached to its body.
func (f *TableField) UnmarshalJSON(data []byte) error {
	var wire map[string]tableFieldBody

	err := json.Unmarshal(data, &wire)
	if err != nil {
		return fmt.Errorf("decoding table field: %w", err)
	}

	for name, body := range wire {
		f.Name = name
		f.Title = body.Title
		f.Type = body.Type
		f.Sortable = body.Sortable
		f.Searchable = body.Searchable
		f.Width = body.Width
		f.Dict = body.Dict

		// Visibility defaults to true when the server omits the flag.
		f.Visible = body.Visible == nil || *body.Visible
	}

	return nil
}

// MarshalJSON re-emits the single-key wire shape.
func (f TableField) MarshalJSON() ([]byte, error) {
	visible := f.Visible
	body := tableFieldBody{
		Title:      f.Title,
		Type:       f.Type,
		Visible:    &visible,
		Sortable:   f.Sortable,
		Searchable: f.Searchable,
		Width:      f.Width,
		Dict:       f.Dict,
	}

	data, err := json.Marshal(map[string]tableFieldBody{f.Name: body})
	if err != nil {
		return nil, fmt.Errorf("encoding table field: %w", err)
	}

	return data, nil
}

// RowStyle declares a per-row css class composed as prefix + row[field].
type RowStyle struct {
	Prefix string `json:"prefix"`
	Field  string `json:"field"`
}

// Table is the schema descriptor for a listing: an ordered column
// declaration list plus presentation hints. Field order is significant and
// preserved end-to-end.
type Table struct {
	Title    string       `json:"title"`
	Subtitle string       `json:"subtitle,omitempty"`
	Fields   []TableField `json:"fields"`
	RowStyle RowStyle     `json:"row-style"`
}

// FieldType tags the widget kind of one editable form field.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldNumeric     FieldType = "numeric"
	FieldPassword    FieldType = "password"
	FieldHidden      FieldType = "hidden"
	FieldCheckbox    FieldType = "checkbox"
	FieldChoice      FieldType = "choice"
	FieldMultiChoice FieldType = "multichoice"
	FieldEditList    FieldType = "editlist"
	FieldDate        FieldType = "date"
	FieldImageChoice FieldType = "imagechoice"
)

// Choice is one selectable option of a choice-like field.
type Choice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Fills declares a filler cascade: when the declaring field's value
// changes, the named server callback runs with the current values of all
// Parameters fields and its result repopulates the target fields' options.
//
// Targets enables cycle detection at form build time. Servers that declare
// no targets (the callback response alone names the fields to update) are
// guarded at cascade time instead.
type Fills struct {
	Callback   string   `json:"callbackName"`
	Parameters []string `json:"parameters"`
	Targets    []string `json:"targets,omitempty"`
}

// fillsBody matches both target declaration shapes on the wire: the current
// "targets" list and the legacy singular "target" key.
type fillsBody struct {
	Callback   string   `json:"callbackName"`
	Parameters []string `json:"parameters"`
	Targets    []string `json:"targets"`
	Target     string   `json:"target"`
}

// UnmarshalJSON folds the legacy singular target key into Targets.
func (f *Fills) UnmarshalJSON(data []byte) error {
	var body fillsBody

	err := json.Unmarshal(data, &body)
	if err != nil {
		return fmt.Errorf("decoding fills: %w", err)
	}

	f.Callback = body.Callback
	f.Parameters = body.Parameters
	f.Targets = body.Targets

	if body.Target != "" {
		f.Targets = append(f.Targets, body.Target)
	}

	return nil
}

// FieldGUI carries the widget metadata of one editable field.
type FieldGUI struct {
	Type     FieldType   `json:"type"`
	Label    string      `json:"label"`
	Tooltip  string      `json:"tooltip,omitempty"`
	Required bool        `json:"required,omitempty"`
	ReadOnly bool        `json:"rdonly,omitempty"`
	Order    int         `json:"order,omitempty"`
	Length   int         `json:"length,omitempty"`
	Values   []Choice    `json:"values,omitempty"`
	Default  interface{} `json:"defvalue,omitempty"`
	Fills    *Fills      `json:"fills,omitempty"`
}

// FormField is one entry of the server's editable-field schema ("gui"
// response). Order in the response controls form field order.
type FormField struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value,omitempty"`
	GUI   FieldGUI    `json:"gui"`
}

// FieldUpdate is one entry of a filler callback response: the named field's
// option list is replaced with Values.
type FieldUpdate struct {
	Name   string   `json:"name"`
	Values []Choice `json:"values"`
}

// Permission is the ordered capability tier a resource exposes to the
// current operator. Wire values match the server's permission levels.
type Permission int

const (
	PermissionNone       Permission = 0
	PermissionRead       Permission = 32
	PermissionManagement Permission = 64
	PermissionAll        Permission = 96
)

// Meets reports whether p grants at least the required level.
func (p Permission) Meets(required Permission) bool {
	return p >= required
}

// String implements fmt.Stringer.
func (p Permission) String() string {
	switch {
	case p >= PermissionAll:
		return "all"
	case p >= PermissionManagement:
		return "management"
	case p >= PermissionRead:
		return "read"
	default:
		return "none"
	}
}

// ParsePermission converts a permission name ("none", "read", "management",
// "all") to its level.
func ParsePermission(name string) (Permission, error) {
	switch name {
	case "none":
		return PermissionNone, nil
	case "read":
		return PermissionRead, nil
	case "management":
		return PermissionManagement, nil
	case "all":
		return PermissionAll, nil
	default:
		return PermissionNone, fmt.Errorf("%w: %q", ErrInvalidPermission, name)
	}
}

// PermissionEntry is one granted permission on a single entity, as returned
// by the permissions listing endpoint.
type PermissionEntry struct {
	ID            string     `json:"id"`
	PrincipalKind string     `json:"type"`
	PrincipalID   string     `json:"auth,omitempty"`
	PrincipalName string     `json:"entity_name,omitempty"`
	Level         Permission `json:"perm"`
}

// LogEntry is one line of an entity's server-side log.
type LogEntry struct {
	Stamp   time.Time `json:"stamp"`
	Level   string    `json:"level"`
	Source  string    `json:"source"`
	Message string    `json:"message"`
}

// Logger is the logging interface consumed by the transport and helpers.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a console client.
//
// The session token is an opaque value obtained by an external login
// collaborator; this client only attaches it to requests. Retries are
// disabled unless RetryMax is set: a failed request is terminal until the
// operator re-triggers it.
type Config struct {
	// Endpoint is the base URL of the admin REST API
	// (e.g. "https://console.example.com/rest").
	Endpoint string

	// Token is the session authentication token attached to every request.
	Token string

	// AuthHeader overrides the header name carrying the token. Defaults
	// to "X-Auth-Token".
	AuthHeader string

	// Administrator marks the session as an administrator one. Resource
	// permission defaults derive from it unless overridden per resource.
	Administrator bool

	// HTTPTimeout is the per-request timeout. Context deadlines still
	// apply on top of it.
	HTTPTimeout time.Duration

	// RetryMax enables transport retries for transient failures when > 0.
	RetryMax int

	// RetryWaitMin and RetryWaitMax bound the backoff window when
	// retries are enabled.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// Cache selects the cache backend. Nil means in-memory defaults.
	Cache *StoreConfig

	// Debug enables verbose HTTP request/response logging when a Logger
	// is provided.
	Debug bool

	// Logger is an optional structured logger.
	Logger Logger

	// UserAgent overrides the default User-Agent header.
	UserAgent string
}
