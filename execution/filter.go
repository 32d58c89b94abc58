package execution

import (
	"context"
)

type FilteredStream struct {
	rs        RecordStream
	predicate func(record Record) bool
}

// NewFilteredStream only passes through records matching the predicate.
func NewFilteredStream(rs RecordStream, predicate func(record Record) bool) *FilteredStream {
	return &FilteredStream{
		rs:        rs,
		predicate: predicate,
	}
}

func (node *FilteredStream) Next(ctx context.Context) (Record, error) {
	for {
		record, err := node.rs.Next(ctx)
		if err != nil {
			return Record{}, err
		}
		if node.predicate(record) {
			return record, nil
		}
	}
}

func (node *FilteredStream) Close() error {
	return node.rs.Close()
}
