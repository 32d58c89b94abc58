package rest

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/cube2222/octorest/execution"
	"github.com/cube2222/octorest/octosql"
	"github.com/cube2222/octorest/physical"
)

// MaxFanOut bounds the number of requests a single scan may be split into
// when equality filters have multiple values.
const MaxFanOut = 16

// Formatter renders a filter value as a request parameter.
type Formatter func(value octosql.Value) (string, error)

// FormatValue is the default formatter. Times are rendered in UTC as RFC3339.
func FormatValue(value octosql.Value) (string, error) {
	switch value.TypeID {
	case octosql.TypeIDString:
		return value.Str, nil
	case octosql.TypeIDInt:
		return strconv.Itoa(value.Int), nil
	case octosql.TypeIDTime:
		return value.Time.UTC().Format(time.RFC3339), nil
	}
	return "", errors.Wrapf(execution.ErrContractViolation, "can't send value of type %s as a filter", value.TypeID)
}

// FormatEpochTimestamp renders times as seconds since the epoch with microsecond precision.
func FormatEpochTimestamp(value octosql.Value) (string, error) {
	if value.TypeID != octosql.TypeIDTime {
		return FormatValue(value)
	}
	micros := value.Time.UnixMicro()
	sign := ""
	if micros < 0 {
		sign = "-"
		micros = -micros
	}
	return fmt.Sprintf("%s%d.%06d", sign, micros/1e6, micros%1e6), nil
}

// Request is a single paginated listing derived from the pushed down filters.
type Request struct {
	Path   string
	Params url.Values
	// Bound holds equality filter values, keyed by column.
	Bound map[string]octosql.Value
}

type resolvedFilter struct {
	binding FilterBinding
	values  []octosql.Value
	params  []string
}

// ResolveRequests turns the handle's pushdown state into the requests needed to list the table.
// Equality filters with multiple values fan out into multiple requests, one per combination of values.
func ResolveRequests(resource *Resource, handle physical.TableHandle) ([]Request, error) {
	var filters []resolvedFilter
	for _, binding := range resource.Filters {
		domain, ok := handle.Pushdown.Domain(binding.Column)
		if !ok {
			if binding.Required {
				return nil, errors.Wrapf(physical.ErrMissingRequiredConstraint, "table %s requires a filter on column %s", resource.Name, binding.Column)
			}
			continue
		}

		var values []octosql.Value
		switch binding.Mode {
		case physical.FilterModeEqual:
			values, ok = domain.Values()
			if !ok || len(values) == 0 {
				return nil, errors.Wrapf(execution.ErrContractViolation, "equality filter on %s.%s isn't a discrete set: %s", resource.Name, binding.Column, domain)
			}
		case physical.FilterModeGreaterThanOrEqual:
			span, ok := domain.Span()
			if !ok || span.Low.Unbounded {
				return nil, errors.Wrapf(execution.ErrContractViolation, "range filter on %s.%s has no lower bound: %s", resource.Name, binding.Column, domain)
			}
			values = []octosql.Value{span.Low.Value}
		default:
			return nil, errors.Wrapf(execution.ErrContractViolation, "filter on %s.%s pushed down with unsupported mode", resource.Name, binding.Column)
		}

		format := binding.Format
		if format == nil {
			format = FormatValue
		}
		params := make([]string, len(values))
		for i := range values {
			param, err := format(values[i])
			if err != nil {
				slog.Error("couldn't format filter value",
					slog.String("table", resource.Name),
					slog.String("column", binding.Column),
					slog.String("value", values[i].String()),
					slog.Any("error", err),
				)
				return nil, errors.Wrapf(err, "couldn't format filter on %s.%s", resource.Name, binding.Column)
			}
			params[i] = param
		}

		filters = append(filters, resolvedFilter{
			binding: binding,
			values:  values,
			params:  params,
		})
	}

	combinations := 1
	for i := range filters {
		combinations *= len(filters[i].values)
		if combinations > MaxFanOut {
			return nil, errors.Wrapf(physical.ErrUnsupportedPredicate, "table %s would need more than %d requests for the given filters", resource.Name, MaxFanOut)
		}
	}

	out := make([]Request, 0, combinations)
	indices := make([]int, len(filters))
	for {
		request, err := buildRequest(resource, filters, indices)
		if err != nil {
			return nil, err
		}
		out = append(out, request)

		// Advance the odometer, last filter first.
		i := len(indices) - 1
		for ; i >= 0; i-- {
			indices[i]++
			if indices[i] < len(filters[i].values) {
				break
			}
			indices[i] = 0
		}
		if i < 0 {
			break
		}
	}
	return out, nil
}

func buildRequest(resource *Resource, filters []resolvedFilter, indices []int) (Request, error) {
	path := resource.Path
	params := url.Values{}
	for key, value := range resource.StaticParams {
		params.Set(key, value)
	}
	bound := make(map[string]octosql.Value)

	for i, filter := range filters {
		param := filter.params[indices[i]]
		if filter.binding.PathSegment != "" {
			path = strings.ReplaceAll(path, "{"+filter.binding.PathSegment+"}", url.PathEscape(param))
		} else {
			params.Set(filter.binding.Param, param)
		}
		if filter.binding.Mode == physical.FilterModeEqual {
			bound[filter.binding.Column] = filter.values[indices[i]]
		}
	}

	if start := strings.Index(path, "{"); start != -1 {
		segment := path[start+1:]
		if end := strings.Index(segment, "}"); end != -1 {
			segment = segment[:end]
		}
		return Request{}, errors.Wrapf(physical.ErrMissingRequiredConstraint, "table %s requires a filter on column %s", resource.Name, segment)
	}

	return Request{
		Path:   path,
		Params: params,
		Bound:  bound,
	}, nil
}
