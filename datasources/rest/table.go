package rest

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"

	"github.com/cube2222/octorest/execution"
	"github.com/cube2222/octorest/logs"
	"github.com/cube2222/octorest/physical"
)

// Table lists a single resource. It implements physical.DatasourceImplementation.
type Table struct {
	client   *Client
	resource *Resource
	pageSize int
}

// NewTable creates the table. The page size is capped at the resource's maximum.
func NewTable(client *Client, resource *Resource, pageSize int) *Table {
	return &Table{
		client:   client,
		resource: resource,
		pageSize: resource.PageSize(pageSize),
	}
}

func (t *Table) Schema() physical.Schema {
	return t.resource.Schema()
}

func (t *Table) Capabilities() physical.FilterCapabilities {
	return t.resource.Capabilities()
}

func (t *Table) ApplyFilter(handle physical.TableHandle, constraints physical.ConstraintSet) (physical.PushdownResult, bool, error) {
	return physical.ApplyFilter(handle, t.resource.Capabilities(), constraints)
}

func (t *Table) ApplyLimit(handle physical.TableHandle, limit int) (physical.TableHandle, bool) {
	return physical.ApplyLimit(handle, limit)
}

// Materialize resolves the requests needed for the handle. No request is sent until the stream is read.
func (t *Table) Materialize(ctx context.Context, handle physical.TableHandle) (execution.RecordStream, error) {
	requests, err := ResolveRequests(t.resource, handle)
	if err != nil {
		return nil, err
	}
	logs.FromContext(ctx).Debug("materializing table",
		slog.String("table", t.resource.Name),
		slog.String("handle", handle.String()),
		slog.Int("requests", len(requests)),
	)

	limit := handle.RowLimit()
	if len(requests) == 1 {
		return t.stream(requests[0], limit), nil
	}

	streams := make([]execution.RecordStream, len(requests))
	for i := range requests {
		streams[i] = t.stream(requests[i], limit)
	}
	return execution.NewLimitedStream(execution.NewConcatStream(streams...), limit), nil
}

func (t *Table) stream(request Request, limit int) *execution.PaginatedStream[*fastjson.Value] {
	fetcher := execution.PageFetcherFunc[*fastjson.Value](func(ctx context.Context, cursor string) (*execution.Page[*fastjson.Value], error) {
		return t.fetchPage(ctx, request, cursor)
	})
	decode := func(item *fastjson.Value) ([]execution.Record, error) {
		return t.resource.decodeItem(item, request.Bound)
	}
	return execution.NewPaginatedStream[*fastjson.Value](fetcher, decode, limit)
}

func (t *Table) fetchPage(ctx context.Context, request Request, cursor string) (*execution.Page[*fastjson.Value], error) {
	params := url.Values{}
	for key, values := range request.Params {
		params[key] = append([]string(nil), values...)
	}
	if err := t.resource.Pagination.Params(params, cursor, t.pageSize); err != nil {
		return nil, errors.Wrapf(execution.ErrContractViolation, "%s", err)
	}

	res, err := t.client.Get(ctx, t.resource.Name, request.Path, params)
	if err != nil {
		return nil, err
	}
	if res.StatusCode == http.StatusNotFound {
		return &execution.Page[*fastjson.Value]{Kind: execution.PageNotFound}, nil
	}

	page, err := t.resource.Envelope.Decode(t.resource.Name, res.StatusCode, res.Body)
	if err != nil {
		if errors.Cause(err) == execution.ErrContractViolation {
			logs.FromContext(ctx).Error("invalid response envelope", slog.String("table", t.resource.Name), slog.Any("error", err))
		}
		return nil, err
	}

	return &execution.Page[*fastjson.Value]{
		Kind:       execution.PageItems,
		Items:      page.Items,
		NextCursor: t.resource.Pagination.NextCursor(cursor, page, t.pageSize),
	}, nil
}
