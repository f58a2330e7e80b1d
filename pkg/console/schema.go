package console

import (
	"fmt"
	"strconv"
	"time"
)

// CellFormatter renders one cell value for a row.
type CellFormatter func(row Record) string

// Column is the render directive for one listing column, derived from the
// server's schema descriptor.
type Column struct {
	Name       string
	Title      string
	Type       RenderType
	Visible    bool
	Sortable   bool
	Searchable bool
	Width      string
	Format     CellFormatter
}

// SchemaOptions supplies the context a schema interpretation needs beyond
// the descriptor itself: locale layouts, the owning resource's type map for
// icon-by-type columns, and caller formatters for callback columns.
type SchemaOptions struct {
	// DateLayout, DateTimeLayout and TimeLayout are Go time layouts for the
	// operator's locale. Zero values fall back to ISO-ish defaults.
	DateLayout     string
	DateTimeLayout string
	TimeLayout     string

	// Types resolves a row's sub-type for icon_type columns. Unknown types
	// render the generic marker.
	Types TypeMap

	// Callbacks maps a field name to its caller-supplied formatter for
	// callback columns. A missing callback renders the raw value.
	Callbacks map[string]CellFormatter

	// UnknownTypeIcon is the generic marker for unresolvable sub-types.
	UnknownTypeIcon string
}

const defaultUnknownTypeIcon = "unknown"

func (o SchemaOptions) dateLayout() string {
	if o.DateLayout != "" {
		return o.DateLayout
	}

	return "2006-01-02"
}

func (o SchemaOptions) dateTimeLayout() string {
	if o.DateTimeLayout != "" {
		return o.DateTimeLayout
	}

	return "2006-01-02 15:04:05"
}

func (o SchemaOptions) timeLayout() string {
	if o.TimeLayout != "" {
		return o.TimeLayout
	}

	return "15:04:05"
}

func (o SchemaOptions) unknownIcon() string {
	if o.UnknownTypeIcon != "" {
		return o.UnknownTypeIcon
	}

	return defaultUnknownTypeIcon
}

// Columns converts a schema descriptor into column directives. It is a pure
// function of its inputs: server-declared field order is preserved, and the
// visible/sortable/searchable flags pass through verbatim.
func Columns(table *Table, opts SchemaOptions) []Column {
	columns := make([]Column, 0, len(table.Fields))

	for _, field := range table.Fields {
		columns = append(columns, Column{
			Name:       field.Name,
			Title:      field.Title,
			Type:       field.Type,
			Visible:    field.Visible,
			Sortable:   field.Sortable,
			Searchable: field.Searchable,
			Width:      field.Width,
			Format:     formatterFor(field, opts),
		})
	}

	return columns
}

func formatterFor(field TableField, opts SchemaOptions) CellFormatter {
	name := field.Name

	switch field.Type {
	case RenderDate:
		return timestampFormatter(name, opts.dateLayout())

	case RenderDateTime:
		return timestampFormatter(name, opts.dateTimeLayout())

	case RenderTime:
		return timestampFormatter(name, opts.timeLayout())

	case RenderNumeric:
		return func(row Record) string {
			return formatNumber(row[name])
		}

	case RenderBoolean:
		return func(row Record) string {
			return strconv.FormatBool(truthy(row[name]))
		}

	case RenderIcon, RenderImage:
		return rawFormatter(name)

	case RenderIconByType:
		return func(row Record) string {
			info, ok := opts.Types[row.Type()]
			if !ok {
				return opts.unknownIcon()
			}

			return info.Icon
		}

	case RenderIconByDict, RenderDict:
		dict := field.Dict

		return func(row Record) string {
			raw := rawFormatter(name)(row)
			if label, ok := dict[raw]; ok {
				return label
			}

			return raw
		}

	case RenderCallback:
		if callback, ok := opts.Callbacks[name]; ok {
			return callback
		}

		return rawFormatter(name)

	default:
		// Plain and unknown tags pass the raw value through.
		return rawFormatter(name)
	}
}

func rawFormatter(name string) CellFormatter {
	return func(row Record) string {
		value, ok := row[name]
		if !ok || value == nil {
			return ""
		}

		if str, ok := value.(string); ok {
			return str
		}

		return fmt.Sprintf("%v", value)
	}
}

func timestampFormatter(name, layout string) CellFormatter {
	return func(row Record) string {
		value, ok := row[name]
		if !ok || value == nil {
			return ""
		}

		if stamp, ok := parseTimestamp(value); ok {
			return stamp.Format(layout)
		}

		return fmt.Sprintf("%v", value)
	}
}

// parseTimestamp accepts the timestamp shapes the server emits: RFC 3339
// strings and unix epoch numbers (JSON numbers decode as float64).
func parseTimestamp(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
			if stamp, err := time.Parse(layout, v); err == nil {
				return stamp, true
			}
		}

		return time.Time{}, false
	case float64:
		return time.Unix(int64(v), 0), true
	case int64:
		return time.Unix(v, 0), true
	default:
		return time.Time{}, false
	}
}

func formatNumber(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}

		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// truthy coerces the loose boolean encodings the server uses.
func truthy(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1" || v == "yes"
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}
