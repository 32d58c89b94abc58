package rest

import (
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

type Pagination interface {
	// Params sets the query parameters requesting the page identified by cursor. The first page has an empty cursor.
	Params(params url.Values, cursor string, pageSize int) error
	// NextCursor returns the cursor of the page after the decoded one, or an empty string if it was the last one.
	NextCursor(cursor string, page *DecodedPage, pageSize int) string
}

// CursorPagination passes the cursor returned in the previous response envelope.
type CursorPagination struct {
	CursorParam string
	LimitParam  string
}

func (p CursorPagination) Params(params url.Values, cursor string, pageSize int) error {
	params.Set(p.LimitParam, strconv.Itoa(pageSize))
	if cursor != "" {
		params.Set(p.CursorParam, cursor)
	}
	return nil
}

func (p CursorPagination) NextCursor(cursor string, page *DecodedPage, pageSize int) string {
	return page.Cursor
}

// PagePagination requests consecutive page numbers, starting from 1.
// There's a next page as long as a full page came back.
type PagePagination struct {
	PageParam    string
	PerPageParam string
}

func (p PagePagination) Params(params url.Values, cursor string, pageSize int) error {
	page := 1
	if cursor != "" {
		var err error
		page, err = strconv.Atoi(cursor)
		if err != nil || page < 1 {
			return errors.Errorf("invalid page number cursor: %s", cursor)
		}
	}
	params.Set(p.PerPageParam, strconv.Itoa(pageSize))
	params.Set(p.PageParam, strconv.Itoa(page))
	return nil
}

func (p PagePagination) NextCursor(cursor string, page *DecodedPage, pageSize int) string {
	if len(page.Items) < pageSize {
		return ""
	}
	current := 1
	if cursor != "" {
		current, _ = strconv.Atoi(cursor)
	}
	return strconv.Itoa(current + 1)
}
