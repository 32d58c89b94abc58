package execution

import (
	"context"

	"github.com/pkg/errors"

	"github.com/cube2222/octorest/octosql"
)

var ErrEndOfStream = errors.New("end of stream")

// ErrContractViolation means a collaborator broke its contract, like a remote API returning no envelope.
// It always indicates a bug, never a user error.
var ErrContractViolation = errors.New("contract violation")

type Record struct {
	Values []octosql.Value
}

func NewRecord(values []octosql.Value) Record {
	return Record{
		Values: values,
	}
}

// RecordStream is a lazy, single-pass sequence of records.
// Next returns ErrEndOfStream once the stream is exhausted, and keeps returning it afterwards.
type RecordStream interface {
	Next(ctx context.Context) (Record, error)
	Close() error
}

// ReadAll drains the stream into a slice and closes it.
func ReadAll(ctx context.Context, rs RecordStream) (out []Record, err error) {
	defer func() {
		if closeErr := rs.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, "couldn't close record stream")
		}
	}()
	for {
		record, err := rs.Next(ctx)
		if err == ErrEndOfStream {
			return out, nil
		} else if err != nil {
			return out, err
		}
		out = append(out, record)
	}
}
