package physical

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cube2222/octorest/octosql"
)

func TestDomainFromRanges(t *testing.T) {
	tests := []struct {
		name   string
		ranges []Range
		want   []Range
	}{
		{
			name: "overlapping ranges are coalesced",
			ranges: []Range{
				NewRange(Inclusive(octosql.NewInt(1)), Exclusive(octosql.NewInt(5))),
				NewRange(Inclusive(octosql.NewInt(3)), Inclusive(octosql.NewInt(8))),
			},
			want: []Range{
				NewRange(Inclusive(octosql.NewInt(1)), Inclusive(octosql.NewInt(8))),
			},
		},
		{
			name: "adjacent ranges are coalesced",
			ranges: []Range{
				NewRange(Inclusive(octosql.NewInt(3)), Inclusive(octosql.NewInt(4))),
				NewRange(Exclusive(octosql.NewInt(4)), Unbounded()),
			},
			want: []Range{
				GreaterThanOrEqualRange(octosql.NewInt(3)),
			},
		},
		{
			name: "disjoint ranges are kept sorted",
			ranges: []Range{
				SingleValueRange(octosql.NewInt(7)),
				LessThanRange(octosql.NewInt(2)),
				GreaterThanRange(octosql.NewInt(2)),
			},
			want: []Range{
				LessThanRange(octosql.NewInt(2)),
				GreaterThanRange(octosql.NewInt(2)),
			},
		},
		{
			name: "empty ranges are dropped",
			ranges: []Range{
				NewRange(Exclusive(octosql.NewInt(3)), Exclusive(octosql.NewInt(3))),
			},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DomainFromRanges(octosql.Int, tt.ranges...).Ranges()
			if assert.Len(t, got, len(tt.want)) {
				for i := range tt.want {
					assert.True(t, got[i].Equal(tt.want[i]), "range %d: got %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDomain_IsDiscreteSet(t *testing.T) {
	assert.True(t, DomainMultipleValues(octosql.String, octosql.NewString("a"), octosql.NewString("b")).IsDiscreteSet())
	assert.True(t, DomainSingleValue(octosql.Int, octosql.NewInt(5)).IsDiscreteSet())
	assert.False(t, DomainFromRanges(octosql.Int, GreaterThanRange(octosql.NewInt(5))).IsDiscreteSet())
	assert.False(t, DomainAll(octosql.Int).IsDiscreteSet())
	assert.False(t, DomainNone(octosql.Int).IsDiscreteSet())

	values, ok := DomainMultipleValues(octosql.Int, octosql.NewInt(3), octosql.NewInt(1), octosql.NewInt(3)).Values()
	assert.True(t, ok)
	assert.Equal(t, []octosql.Value{octosql.NewInt(1), octosql.NewInt(3)}, values)
}

func TestDomain_Intersect(t *testing.T) {
	a := DomainFromRanges(octosql.Int, GreaterThanOrEqualRange(octosql.NewInt(3)))
	b := DomainFromRanges(octosql.Int, GreaterThanOrEqualRange(octosql.NewInt(7)))
	assert.True(t, a.Intersect(b).Equal(b))

	c := DomainFromRanges(octosql.Int, LessThanRange(octosql.NewInt(3)))
	assert.True(t, a.Intersect(c).IsNone())

	assert.True(t, a.Intersect(DomainAll(octosql.Int)).Equal(a))
	assert.True(t, a.Union(c).Equal(DomainFromRanges(octosql.Int, LessThanRange(octosql.NewInt(3)), GreaterThanOrEqualRange(octosql.NewInt(3)))))
	assert.True(t, a.Union(c).IsAll())
}

func TestDomain_Contains(t *testing.T) {
	d := DomainFromRanges(octosql.Int, LessThanRange(octosql.NewInt(0)), SingleValueRange(octosql.NewInt(10)))
	assert.True(t, d.Contains(octosql.NewInt(-5)))
	assert.False(t, d.Contains(octosql.NewInt(0)))
	assert.True(t, d.Contains(octosql.NewInt(10)))
	assert.False(t, d.Contains(octosql.NewNull()))
}

func TestConstraintSet(t *testing.T) {
	set := NewConstraintSet(map[string]Domain{
		"owner": DomainSingleValue(octosql.String, octosql.NewString("x")),
		"repo":  DomainAll(octosql.String),
	})
	assert.Equal(t, []string{"owner"}, set.Columns())
	assert.False(t, set.IsAll())

	none := set.WithDomain("owner", DomainSingleValue(octosql.String, octosql.NewString("y")))
	assert.True(t, none.IsNone())

	assert.True(t, set.Without("owner").IsAll())
	assert.True(t, NewConstraintSet(map[string]Domain{"a": DomainNone(octosql.Int)}).IsNone())

	row := map[string]octosql.Value{"owner": octosql.NewString("x")}
	lookup := func(column string) (octosql.Value, bool) {
		v, ok := row[column]
		return v, ok
	}
	assert.True(t, set.Matches(lookup))
	row["owner"] = octosql.NewString("z")
	assert.False(t, set.Matches(lookup))
}
