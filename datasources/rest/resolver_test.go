package rest

import (
	"net/url"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cube2222/octorest/execution"
	"github.com/cube2222/octorest/octosql"
	"github.com/cube2222/octorest/physical"
)

func testIssuesResource() *Resource {
	return &Resource{
		Name: "issues",
		Path: "/repos/{owner}/{repo}/issues",
		Columns: []Column{
			{Name: "owner", Type: octosql.String, FromFilter: true},
			{Name: "repo", Type: octosql.String, FromFilter: true},
			{Name: "number", Type: octosql.Int},
			{Name: "title", Type: octosql.String},
			{Name: "state", Type: octosql.String},
			{Name: "updated_at", Type: octosql.Time},
			{Name: "author", Type: octosql.String, Path: []string{"user", "login"}},
		},
		Filters: []FilterBinding{
			{Column: "owner", Mode: physical.FilterModeEqual, PathSegment: "owner", Required: true},
			{Column: "repo", Mode: physical.FilterModeEqual, PathSegment: "repo", Required: true},
			{Column: "state", Mode: physical.FilterModeEqual, Param: "state"},
			{Column: "updated_at", Mode: physical.FilterModeGreaterThanOrEqual, Param: "since"},
			{Column: "number", Mode: physical.FilterModeEqual, Param: "number"},
		},
		StaticParams: map[string]string{"direction": "asc"},
		Envelope:     Envelope{},
		Pagination:   PagePagination{PageParam: "page", PerPageParam: "per_page"},
	}
}

func str(s string) octosql.Value {
	return octosql.NewString(s)
}

func eq(values ...octosql.Value) physical.Domain {
	return physical.DomainMultipleValues(values[0].Type(), values...)
}

func handleWith(domains map[string]physical.Domain) physical.TableHandle {
	return physical.NewTableHandle("issues").WithPushdown(physical.NewConstraintSet(domains))
}

func TestFormatValue(t *testing.T) {
	warsaw := time.FixedZone("CEST", 2*60*60)

	tests := []struct {
		name    string
		format  Formatter
		value   octosql.Value
		want    string
		wantErr bool
	}{
		{name: "string", format: FormatValue, value: str("open"), want: "open"},
		{name: "int", format: FormatValue, value: octosql.NewInt(42), want: "42"},
		{name: "time in utc", format: FormatValue, value: octosql.NewTime(time.Date(2024, 1, 2, 5, 4, 5, 0, warsaw)), want: "2024-01-02T03:04:05Z"},
		{name: "float", format: FormatValue, value: octosql.NewFloat(1.5), wantErr: true},
		{name: "boolean", format: FormatValue, value: octosql.NewBoolean(true), wantErr: true},
		{name: "epoch", format: FormatEpochTimestamp, value: octosql.NewTime(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)), want: "1704164645.000000"},
		{name: "epoch with micros", format: FormatEpochTimestamp, value: octosql.NewTime(time.Date(2024, 1, 2, 3, 4, 5, 123456789, time.UTC)), want: "1704164645.123456"},
		{name: "epoch before 1970", format: FormatEpochTimestamp, value: octosql.NewTime(time.Unix(0, -500000000)), want: "-0.500000"},
		{name: "epoch falls back for strings", format: FormatEpochTimestamp, value: str("1704164645.000100"), want: "1704164645.000100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.format(tt.value)
			if tt.wantErr {
				assert.Equal(t, execution.ErrContractViolation, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveRequests(t *testing.T) {
	tests := []struct {
		name    string
		handle  physical.TableHandle
		want    []Request
		wantErr error
	}{
		{
			name: "path segments and range parameter",
			handle: handleWith(map[string]physical.Domain{
				"owner":      eq(str("x")),
				"repo":       eq(str("y")),
				"updated_at": physical.DomainFromRanges(octosql.Time, physical.GreaterThanOrEqualRange(octosql.NewTime(t0))),
			}),
			want: []Request{
				{
					Path:   "/repos/x/y/issues",
					Params: url.Values{"direction": {"asc"}, "since": {"2024-01-02T03:04:05Z"}},
					Bound:  map[string]octosql.Value{"owner": str("x"), "repo": str("y")},
				},
			},
		},
		{
			name: "path segments are escaped",
			handle: handleWith(map[string]physical.Domain{
				"owner": eq(str("a b")),
				"repo":  eq(str("c/d")),
			}),
			want: []Request{
				{
					Path:   "/repos/a%20b/c%2Fd/issues",
					Params: url.Values{"direction": {"asc"}},
					Bound:  map[string]octosql.Value{"owner": str("a b"), "repo": str("c/d")},
				},
			},
		},
		{
			name: "fan out",
			handle: handleWith(map[string]physical.Domain{
				"owner": eq(str("x")),
				"repo":  eq(str("a"), str("b")),
				"state": eq(str("closed"), str("open")),
			}),
			want: []Request{
				{Path: "/repos/x/a/issues", Params: url.Values{"direction": {"asc"}, "state": {"closed"}}, Bound: map[string]octosql.Value{"owner": str("x"), "repo": str("a"), "state": str("closed")}},
				{Path: "/repos/x/a/issues", Params: url.Values{"direction": {"asc"}, "state": {"open"}}, Bound: map[string]octosql.Value{"owner": str("x"), "repo": str("a"), "state": str("open")}},
				{Path: "/repos/x/b/issues", Params: url.Values{"direction": {"asc"}, "state": {"closed"}}, Bound: map[string]octosql.Value{"owner": str("x"), "repo": str("b"), "state": str("closed")}},
				{Path: "/repos/x/b/issues", Params: url.Values{"direction": {"asc"}, "state": {"open"}}, Bound: map[string]octosql.Value{"owner": str("x"), "repo": str("b"), "state": str("open")}},
			},
		},
		{
			name:    "missing required filter",
			handle:  handleWith(map[string]physical.Domain{"owner": eq(str("x"))}),
			wantErr: physical.ErrMissingRequiredConstraint,
		},
		{
			name: "too many requests",
			handle: handleWith(map[string]physical.Domain{
				"owner": eq(str("a"), str("b"), str("c"), str("d"), str("e")),
				"repo":  eq(str("a"), str("b"), str("c"), str("d"), str("e")),
			}),
			wantErr: physical.ErrUnsupportedPredicate,
		},
		{
			name: "unsupported value type",
			handle: handleWith(map[string]physical.Domain{
				"owner":  eq(str("x")),
				"repo":   eq(str("y")),
				"number": eq(octosql.NewFloat(1.5)),
			}),
			wantErr: execution.ErrContractViolation,
		},
		{
			name: "equality on a range",
			handle: handleWith(map[string]physical.Domain{
				"owner": eq(str("x")),
				"repo":  physical.DomainFromRanges(octosql.String, physical.GreaterThanRange(str("y"))),
			}),
			wantErr: execution.ErrContractViolation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveRequests(testIssuesResource(), tt.handle)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveRequests_UnboundPathSegment(t *testing.T) {
	resource := testIssuesResource()
	resource.Filters = resource.Filters[2:]

	_, err := ResolveRequests(resource, physical.NewTableHandle("issues"))
	require.Error(t, err)
	assert.Equal(t, physical.ErrMissingRequiredConstraint, errors.Cause(err))
	assert.Contains(t, err.Error(), "owner")
}
