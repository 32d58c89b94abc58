package formats

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/cube2222/octorest/octosql"
	"github.com/cube2222/octorest/physical"
)

type CSVFormatter struct {
	writer *csv.Writer
}

func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{
		writer: csv.NewWriter(w),
	}
}

func (t *CSVFormatter) SetSchema(schema physical.Schema) {
	header := make([]string, len(schema.Fields))
	for i := range schema.Fields {
		header[i] = schema.Fields[i].Name
	}
	t.writer.Write(header)
}

func (t *CSVFormatter) Write(values []octosql.Value) error {
	row := make([]string, len(values))
	for i := range values {
		switch values[i].TypeID {
		case octosql.TypeIDNull:
		case octosql.TypeIDTime:
			row[i] = values[i].Time.Format(time.RFC3339Nano)
		case octosql.TypeIDList:
			row[i] = values[i].String()
		default:
			row[i] = fmt.Sprintf("%v", values[i].ToRawGoValue())
		}
	}
	if err := t.writer.Write(row); err != nil {
		return errors.Wrap(err, "couldn't write csv record")
	}
	return nil
}

func (t *CSVFormatter) Close() error {
	t.writer.Flush()
	return t.writer.Error()
}
