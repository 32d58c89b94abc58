package physical

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cube2222/octorest/octosql"
)

var issuesCapabilities = FilterCapabilities{
	"owner":      FilterModeEqual,
	"repo":       FilterModeEqual,
	"updated_at": FilterModeGreaterThanOrEqual,
	"number":     FilterModeGreaterThanOrEqual,
}

func equalTo(t octosql.Type, v octosql.Value) Domain {
	return DomainSingleValue(t, v)
}

func atLeast(v octosql.Value) Domain {
	return DomainFromRanges(v.Type(), GreaterThanOrEqualRange(v))
}

func TestNormalizeConstraint(t *testing.T) {
	t0 := time.Date(2022, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		column      string
		mode        FilterMode
		constraints ConstraintSet
		want        Domain
		wantOk      bool
	}{
		{
			name:        "unconstrained column",
			column:      "owner",
			mode:        FilterModeEqual,
			constraints: NewConstraintSet(map[string]Domain{"repo": equalTo(octosql.String, octosql.NewString("y"))}),
			wantOk:      false,
		},
		{
			name:        "equality",
			column:      "owner",
			mode:        FilterModeEqual,
			constraints: NewConstraintSet(map[string]Domain{"owner": equalTo(octosql.String, octosql.NewString("x"))}),
			want:        equalTo(octosql.String, octosql.NewString("x")),
			wantOk:      true,
		},
		{
			name:   "equality on a range",
			column: "owner",
			mode:   FilterModeEqual,
			constraints: NewConstraintSet(map[string]Domain{
				"owner": DomainFromRanges(octosql.String, GreaterThanRange(octosql.NewString("x"))),
			}),
			wantOk: false,
		},
		{
			name:   "lower bound is widened to inclusive and unbounded above",
			column: "updated_at",
			mode:   FilterModeGreaterThanOrEqual,
			constraints: NewConstraintSet(map[string]Domain{
				"updated_at": DomainFromRanges(octosql.Time, NewRange(Exclusive(octosql.NewTime(t0)), Inclusive(octosql.NewTime(t0.Add(time.Hour))))),
			}),
			want:   atLeast(octosql.NewTime(t0)),
			wantOk: true,
		},
		{
			name:   "span of discrete values",
			column: "number",
			mode:   FilterModeGreaterThanOrEqual,
			constraints: NewConstraintSet(map[string]Domain{
				"number": DomainMultipleValues(octosql.Int, octosql.NewInt(12), octosql.NewInt(4)),
			}),
			want:   atLeast(octosql.NewInt(4)),
			wantOk: true,
		},
		{
			name:   "no lower bound",
			column: "number",
			mode:   FilterModeGreaterThanOrEqual,
			constraints: NewConstraintSet(map[string]Domain{
				"number": DomainFromRanges(octosql.Int, LessThanOrEqualRange(octosql.NewInt(10))),
			}),
			wantOk: false,
		},
		{
			name:        "unsupported",
			column:      "owner",
			mode:        FilterModeUnsupported,
			constraints: NewConstraintSet(map[string]Domain{"owner": equalTo(octosql.String, octosql.NewString("x"))}),
			wantOk:      false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeConstraint(tt.column, tt.mode, tt.constraints)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestApplyFilter_EndToEnd(t *testing.T) {
	t0 := time.Date(2022, 5, 1, 12, 0, 0, 0, time.UTC)
	constraints := NewConstraintSet(map[string]Domain{
		"owner":      equalTo(octosql.String, octosql.NewString("x")),
		"repo":       equalTo(octosql.String, octosql.NewString("y")),
		"updated_at": atLeast(octosql.NewTime(t0)),
		"title":      equalTo(octosql.String, octosql.NewString("bug")),
	})

	result, ok, err := ApplyFilter(NewTableHandle("issues"), issuesCapabilities, constraints)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, result.Accepted)

	assert.Equal(t, []string{"owner", "repo", "updated_at"}, result.Handle.Pushdown.Columns())
	// Equalities and the plain lower bound are exact, unsupported columns stay.
	assert.Equal(t, []string{"title"}, result.Residual.Columns())

	// The planner offers the residual again, which must converge.
	_, ok, err = ApplyFilter(result.Handle, issuesCapabilities, result.Residual)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApplyFilter_ExactLowerBound(t *testing.T) {
	t0 := time.Date(2022, 5, 1, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	tests := []struct {
		name         string
		domain       Domain
		wantResidual bool
	}{
		{
			name:         "inclusive lower bound",
			domain:       atLeast(octosql.NewTime(t0)),
			wantResidual: false,
		},
		{
			name:         "exclusive lower bound",
			domain:       DomainFromRanges(octosql.Time, GreaterThanRange(octosql.NewTime(t0))),
			wantResidual: true,
		},
		{
			name:         "bounded above",
			domain:       DomainFromRanges(octosql.Time, NewRange(Inclusive(octosql.NewTime(t0)), Inclusive(octosql.NewTime(t1)))),
			wantResidual: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			constraints := NewConstraintSet(map[string]Domain{"updated_at": tt.domain})
			result, ok, err := ApplyFilter(NewTableHandle("issues"), issuesCapabilities, constraints)
			require.NoError(t, err)
			require.True(t, ok)

			pushed, _ := result.Handle.Pushdown.Domain("updated_at")
			assert.True(t, pushed.Equal(atLeast(octosql.NewTime(t0))), "got %s", pushed)
			_, inResidual := result.Residual.Domain("updated_at")
			assert.Equal(t, tt.wantResidual, inResidual)
			assert.Equal(t, !tt.wantResidual, result.Residual.IsAll())
		})
	}
}

func TestApplyFilter_Idempotent(t *testing.T) {
	constraints := NewConstraintSet(map[string]Domain{
		"owner": equalTo(octosql.String, octosql.NewString("x")),
	})

	first, ok, err := ApplyFilter(NewTableHandle("issues"), issuesCapabilities, constraints)
	require.NoError(t, err)
	require.True(t, ok)

	second, ok, err := ApplyFilter(first.Handle, issuesCapabilities, constraints)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, second.Accepted)
}

func TestApplyFilter_RangeWidening(t *testing.T) {
	a, b := octosql.NewInt(10), octosql.NewInt(25)

	// x >= a AND x >= b in a single constraint set.
	combined := NewConstraintSet(map[string]Domain{"number": atLeast(a)}).WithDomain("number", atLeast(b))
	result, ok, err := ApplyFilter(NewTableHandle("issues"), issuesCapabilities, combined)
	require.NoError(t, err)
	require.True(t, ok)
	pushed, _ := result.Handle.Pushdown.Domain("number")
	assert.True(t, pushed.Equal(atLeast(b)), "got %s", pushed)

	// The same pushed in two separate planner calls, in both orders.
	for _, order := range [][]octosql.Value{{a, b}, {b, a}} {
		handle := NewTableHandle("issues")
		for _, bound := range order {
			result, ok, err := ApplyFilter(handle, issuesCapabilities, NewConstraintSet(map[string]Domain{"number": atLeast(bound)}))
			require.NoError(t, err)
			if ok {
				handle = result.Handle
			}
		}
		pushed, _ := handle.Pushdown.Domain("number")
		assert.True(t, pushed.Equal(atLeast(b)), "got %s", pushed)
	}
}

func TestApplyFilter_EqualConflict(t *testing.T) {
	caps := FilterCapabilities{"col": FilterModeEqual}
	first, ok, err := ApplyFilter(NewTableHandle("t"), caps, NewConstraintSet(map[string]Domain{
		"col": equalTo(octosql.Int, octosql.NewInt(5)),
	}))
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = ApplyFilter(first.Handle, caps, NewConstraintSet(map[string]Domain{
		"col": equalTo(octosql.Int, octosql.NewInt(7)),
	}))
	assert.False(t, ok)
	assert.Equal(t, ErrUnsupportedPredicate, errors.Cause(err))
}

func TestApplyFilter_UnboundedRangeRejected(t *testing.T) {
	constraints := NewConstraintSet(map[string]Domain{
		"number": DomainFromRanges(octosql.Int, LessThanOrEqualRange(octosql.NewInt(10))),
	})
	handle := NewTableHandle("issues")
	result, ok, err := ApplyFilter(handle, issuesCapabilities, constraints)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, result.Accepted)
	assert.True(t, handle.Pushdown.IsAll())
}

func TestApplyFilter_NothingToDo(t *testing.T) {
	for _, constraints := range []ConstraintSet{ConstraintsAll(), ConstraintsNone()} {
		_, ok, err := ApplyFilter(NewTableHandle("issues"), issuesCapabilities, constraints)
		assert.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestApplyLimit(t *testing.T) {
	handle := NewTableHandle("issues")
	assert.Equal(t, -1, handle.RowLimit())

	limited, changed := ApplyLimit(handle, 50)
	assert.True(t, changed)
	assert.Equal(t, 50, limited.RowLimit())
	assert.Equal(t, -1, handle.RowLimit())

	_, changed = ApplyLimit(limited, 80)
	assert.False(t, changed)

	tighter, changed := ApplyLimit(limited, 0)
	assert.True(t, changed)
	assert.Equal(t, 0, tighter.RowLimit())
}
