package execution

import (
	"context"

	"github.com/pkg/errors"
)

// ConcatStream reads its sources one after another. Each source is only pulled from
// after the previous one has been exhausted.
type ConcatStream struct {
	sources []RecordStream
	current int
}

func NewConcatStream(sources ...RecordStream) *ConcatStream {
	return &ConcatStream{
		sources: sources,
	}
}

func (node *ConcatStream) Next(ctx context.Context) (Record, error) {
	for node.current < len(node.sources) {
		record, err := node.sources[node.current].Next(ctx)
		if err == ErrEndOfStream {
			node.current++
			continue
		} else if err != nil {
			return Record{}, errors.Wrapf(err, "couldn't get record from source %d", node.current)
		}
		return record, nil
	}
	return Record{}, ErrEndOfStream
}

func (node *ConcatStream) Close() error {
	var firstErr error
	for i := range node.sources {
		if err := node.sources[i].Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "couldn't close source %d", i)
		}
	}
	return firstErr
}
