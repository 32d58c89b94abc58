package rest

import (
	"github.com/pkg/errors"
	"github.com/valyala/fastjson"

	"github.com/cube2222/octorest/execution"
)

// Envelope describes where things are in a response body. Paths are fastjson key paths.
type Envelope struct {
	// OkPath points to a boolean success flag, empty if the API doesn't have one.
	OkPath []string
	// ErrorPath points to the error code reported when the success flag is false.
	ErrorPath []string
	// ItemsPath points to the array of items, empty if the body itself is the array.
	ItemsPath []string
	// CursorPath points to the next page cursor, empty if the API doesn't return cursors.
	CursorPath []string
}

type DecodedPage struct {
	Items  []*fastjson.Value
	Cursor string
}

// Decode parses a response body. Item values stay valid after it returns, as each call uses its own parser.
func (e Envelope) Decode(resource string, statusCode int, body []byte) (*DecodedPage, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, errors.Wrapf(execution.ErrContractViolation, "%s returned invalid json: %s", resource, err)
	}

	if len(e.OkPath) > 0 {
		ok := v.Get(e.OkPath...)
		if ok == nil {
			return nil, errors.Wrapf(execution.ErrContractViolation, "%s response has no %v flag", resource, e.OkPath)
		}
		if ok.Type() != fastjson.TypeTrue {
			code := "unknown_error"
			if len(e.ErrorPath) > 0 {
				if errValue := v.GetStringBytes(e.ErrorPath...); errValue != nil {
					code = string(errValue)
				}
			}
			return nil, &RemoteError{
				Resource:   resource,
				StatusCode: statusCode,
				Code:       code,
			}
		}
	}

	items := v
	if len(e.ItemsPath) > 0 {
		items = v.Get(e.ItemsPath...)
	}
	if items == nil || items.Type() == fastjson.TypeNull {
		// A missing items array on an otherwise successful response is an empty page.
		if len(e.ItemsPath) > 0 && v.Type() == fastjson.TypeObject {
			return &DecodedPage{}, nil
		}
		return nil, errors.Wrapf(execution.ErrContractViolation, "%s response has no items", resource)
	}
	arr, err := items.Array()
	if err != nil {
		return nil, errors.Wrapf(execution.ErrContractViolation, "%s items aren't an array: %s", resource, err)
	}

	out := &DecodedPage{Items: arr}
	if len(e.CursorPath) > 0 {
		out.Cursor = string(v.GetStringBytes(e.CursorPath...))
	}
	return out, nil
}
