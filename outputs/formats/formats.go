package formats

import (
	"io"

	"github.com/pkg/errors"

	"github.com/cube2222/octorest/octosql"
	"github.com/cube2222/octorest/physical"
)

type Formatter interface {
	SetSchema(schema physical.Schema)
	Write(values []octosql.Value) error
	Close() error
}

var Formats = map[string]func(w io.Writer) Formatter{
	"table": func(w io.Writer) Formatter { return NewTableFormatter(w) },
	"json":  func(w io.Writer) Formatter { return NewJSONFormatter(w) },
	"csv":   func(w io.Writer) Formatter { return NewCSVFormatter(w) },
}

func New(name string, w io.Writer) (Formatter, error) {
	newFormatter, ok := Formats[name]
	if !ok {
		return nil, errors.Errorf("unknown output format: %s", name)
	}
	return newFormatter(w), nil
}
