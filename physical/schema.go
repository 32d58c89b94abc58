package physical

import (
	"github.com/cube2222/octorest/octosql"
)

type Schema struct {
	Fields []SchemaField
}

func NewSchema(fields []SchemaField) Schema {
	return Schema{
		Fields: fields,
	}
}

type SchemaField struct {
	Name string
	Type octosql.Type
}

// FieldIndex returns the index of the named field, or -1.
func (s Schema) FieldIndex(name string) int {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return i
		}
	}
	return -1
}

func (s Schema) Field(name string) (SchemaField, bool) {
	if i := s.FieldIndex(name); i != -1 {
		return s.Fields[i], true
	}
	return SchemaField{}, false
}
