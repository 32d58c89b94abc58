package rest

import (
	"github.com/valyala/fastjson"

	"github.com/cube2222/octorest/execution"
	"github.com/cube2222/octorest/octosql"
	"github.com/cube2222/octorest/physical"
)

// Resource is a single remote endpoint exposed as a table.
type Resource struct {
	Name string
	// Path may contain {column} placeholders, filled in from filters bound to path segments.
	Path    string
	Columns []Column
	Filters []FilterBinding
	// StaticParams are sent with every request.
	StaticParams map[string]string

	Envelope    Envelope
	Pagination  Pagination
	// MaxPageSize is the largest page the remote API returns, 0 if it's unbounded.
	// Page sizes above it are lowered, as the API would silently return smaller pages.
	MaxPageSize int

	// Decode maps a single item to rows. If it's nil, each item becomes a single row read through Columns.
	Decode ItemDecoder
}

type Column struct {
	Name string
	Type octosql.Type
	// Path is the fastjson key path of the value inside an item. Defaults to the column name.
	Path []string
	// Parse overrides the decoding of the raw value.
	Parse func(value *fastjson.Value) (octosql.Value, error)
	// FromFilter columns aren't present in the items, their value is the equality filter the request was made with.
	FromFilter bool
}

type FilterBinding struct {
	Column string
	Mode   physical.FilterMode
	// Param is the query parameter the filter is sent as.
	Param string
	// PathSegment is the placeholder in the resource path the filter is substituted into. Exclusive with Param.
	PathSegment string
	// Required filters must be present for the request to make sense.
	Required bool
	// Format overrides the default parameter formatting.
	Format Formatter
}

// ItemDecoder maps an item to rows. Bound holds the equality filter values of the request the item came from.
type ItemDecoder func(resource *Resource, item *fastjson.Value, bound map[string]octosql.Value) ([]execution.Record, error)

func (r *Resource) Schema() physical.Schema {
	fields := make([]physical.SchemaField, len(r.Columns))
	for i := range r.Columns {
		fields[i] = physical.SchemaField{
			Name: r.Columns[i].Name,
			Type: r.Columns[i].Type,
		}
	}
	return physical.NewSchema(fields)
}

// PageSize returns the page size to request, given the configured one.
func (r *Resource) PageSize(configured int) int {
	if r.MaxPageSize > 0 && configured > r.MaxPageSize {
		return r.MaxPageSize
	}
	return configured
}

func (r *Resource) Capabilities() physical.FilterCapabilities {
	out := make(physical.FilterCapabilities, len(r.Filters))
	for i := range r.Filters {
		out[r.Filters[i].Column] = r.Filters[i].Mode
	}
	return out
}

func (r *Resource) decodeItem(item *fastjson.Value, bound map[string]octosql.Value) ([]execution.Record, error) {
	if r.Decode != nil {
		return r.Decode(r, item, bound)
	}
	record, err := r.DecodeRecord(item, bound)
	if err != nil {
		return nil, err
	}
	return []execution.Record{record}, nil
}

// DecodeRecord reads all columns from the item.
func (r *Resource) DecodeRecord(item *fastjson.Value, bound map[string]octosql.Value) (execution.Record, error) {
	values := make([]octosql.Value, len(r.Columns))
	for i := range r.Columns {
		value, err := r.Columns[i].decode(item, bound)
		if err != nil {
			return execution.Record{}, err
		}
		values[i] = value
	}
	return execution.NewRecord(values), nil
}

func (c *Column) decode(item *fastjson.Value, bound map[string]octosql.Value) (octosql.Value, error) {
	if c.FromFilter {
		if value, ok := bound[c.Name]; ok {
			return value, nil
		}
		return octosql.NewNull(), nil
	}
	path := c.Path
	if len(path) == 0 {
		path = []string{c.Name}
	}
	raw := item.Get(path...)
	if c.Parse != nil {
		return c.Parse(raw)
	}
	return DecodeValue(c.Type, raw), nil
}
