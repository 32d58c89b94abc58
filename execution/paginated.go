package execution

import (
	"context"

	"github.com/pkg/errors"
)

type PageKind int

const (
	// PageItems is a regular page, possibly empty.
	PageItems PageKind = iota
	// PageNotFound means the remote resource doesn't exist. It ends the stream without an error.
	PageNotFound
)

type Page[T any] struct {
	Kind  PageKind
	Items []T
	// NextCursor is the opaque token for the following page. Empty means there are no more pages.
	NextCursor string
}

type PageFetcher[T any] interface {
	// FetchPage fetches the page for the given cursor. The first page is requested with an empty cursor.
	FetchPage(ctx context.Context, cursor string) (*Page[T], error)
}

type PageFetcherFunc[T any] func(ctx context.Context, cursor string) (*Page[T], error)

func (f PageFetcherFunc[T]) FetchPage(ctx context.Context, cursor string) (*Page[T], error) {
	return f(ctx, cursor)
}

// RowDecoder maps a single fetched item to zero or more records.
type RowDecoder[T any] func(item T) ([]Record, error)

type paginatedState int

const (
	paginatedStateStart paginatedState = iota
	paginatedStateFetchingPage
	paginatedStateHasBufferedRows
	paginatedStateExhausted
)

// PaginatedStream lazily reads a cursor-paginated resource.
//
// No page is fetched before the first call to Next, and a new page is only fetched once all rows of the previous one
// have been consumed. The stream ends when the resource isn't found, a page is empty, the next cursor is empty,
// or the limit is reached.
//
// The limit bounds output rows. Items are decoded one at a time, so an item expanding into several rows
// is truncated at the limit, and items decoding to no rows don't count towards it.
//
// The stream is single-use, once exhausted it stays exhausted.
type PaginatedStream[T any] struct {
	fetcher PageFetcher[T]
	decode  RowDecoder[T]
	limit   int

	state    paginatedState
	cursor   string
	items    []T
	rows     []Record
	produced int
	pages    int
}

// NewPaginatedStream creates a stream reading at most limit rows. A negative limit means no limit.
func NewPaginatedStream[T any](fetcher PageFetcher[T], decode RowDecoder[T], limit int) *PaginatedStream[T] {
	return &PaginatedStream[T]{
		fetcher: fetcher,
		decode:  decode,
		limit:   limit,
		state:   paginatedStateStart,
	}
}

func (s *PaginatedStream[T]) Next(ctx context.Context) (Record, error) {
	for {
		switch s.state {
		case paginatedStateExhausted:
			return Record{}, ErrEndOfStream

		case paginatedStateStart:
			if s.limit == 0 {
				s.finish()
				continue
			}
			s.state = paginatedStateFetchingPage

		case paginatedStateFetchingPage:
			if err := ctx.Err(); err != nil {
				s.finish()
				return Record{}, err
			}
			page, err := s.fetcher.FetchPage(ctx, s.cursor)
			if err != nil {
				s.finish()
				return Record{}, errors.Wrapf(err, "couldn't fetch page %d", s.pages+1)
			}
			if page == nil {
				s.finish()
				return Record{}, errors.Wrapf(ErrContractViolation, "page fetcher returned no page for page %d", s.pages+1)
			}
			s.pages++

			if page.Kind == PageNotFound || len(page.Items) == 0 {
				s.finish()
				continue
			}
			if page.NextCursor != "" && page.NextCursor == s.cursor {
				s.finish()
				return Record{}, errors.Wrapf(ErrContractViolation, "page %d returned the cursor it was requested with: %s", s.pages, s.cursor)
			}

			s.cursor = page.NextCursor
			s.items = page.Items
			s.state = paginatedStateHasBufferedRows

		case paginatedStateHasBufferedRows:
			if s.limit >= 0 && s.produced >= s.limit {
				s.finish()
				continue
			}
			if len(s.rows) > 0 {
				record := s.rows[0]
				s.rows = s.rows[1:]
				s.produced++
				return record, nil
			}
			if len(s.items) > 0 {
				item := s.items[0]
				s.items = s.items[1:]
				rows, err := s.decode(item)
				if err != nil {
					s.finish()
					return Record{}, errors.Wrapf(err, "couldn't decode item on page %d", s.pages)
				}
				s.rows = rows
				continue
			}
			if s.cursor == "" {
				s.finish()
				continue
			}
			s.state = paginatedStateFetchingPage

		default:
			panic("unexhaustive paginated stream state match")
		}
	}
}

func (s *PaginatedStream[T]) finish() {
	s.state = paginatedStateExhausted
	s.items = nil
	s.rows = nil
}

// Pages returns the number of pages fetched so far.
func (s *PaginatedStream[T]) Pages() int {
	return s.pages
}

// Produced returns the number of rows returned so far.
func (s *PaginatedStream[T]) Produced() int {
	return s.produced
}

func (s *PaginatedStream[T]) Close() error {
	s.finish()
	return nil
}
