package execution

import (
	"context"

	"github.com/pkg/errors"
)

type LimitedStream struct {
	rs    RecordStream
	limit int
}

// NewLimitedStream stops reading the underlying stream after limit records. A negative limit means no limit.
func NewLimitedStream(rs RecordStream, limit int) *LimitedStream {
	return &LimitedStream{
		rs:    rs,
		limit: limit,
	}
}

func (node *LimitedStream) Next(ctx context.Context) (Record, error) {
	if node.limit == 0 {
		return Record{}, ErrEndOfStream
	}
	record, err := node.rs.Next(ctx)
	if err != nil {
		if err == ErrEndOfStream {
			node.limit = 0
			return Record{}, ErrEndOfStream
		}
		return Record{}, errors.Wrap(err, "couldn't get limited stream's record")
	}
	if node.limit > 0 {
		node.limit--
	}
	return record, nil
}

func (node *LimitedStream) Close() error {
	return node.rs.Close()
}
