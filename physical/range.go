package physical

import (
	"strings"

	"github.com/cube2222/octorest/octosql"
)

// Bound is one end of a Range.
type Bound struct {
	Unbounded bool
	Value     octosql.Value
	Inclusive bool
}

func Unbounded() Bound {
	return Bound{Unbounded: true}
}

func Inclusive(value octosql.Value) Bound {
	return Bound{Value: value, Inclusive: true}
}

func Exclusive(value octosql.Value) Bound {
	return Bound{Value: value}
}

func (b Bound) Equal(other Bound) bool {
	if b.Unbounded || other.Unbounded {
		return b.Unbounded == other.Unbounded
	}
	return b.Inclusive == other.Inclusive && b.Value.Compare(other.Value) == 0
}

// compareLow orders lower bounds. An unbounded lower bound sorts first,
// and for equal values an inclusive bound starts before an exclusive one.
func compareLow(a, b Bound) int {
	switch {
	case a.Unbounded && b.Unbounded:
		return 0
	case a.Unbounded:
		return -1
	case b.Unbounded:
		return 1
	}
	if cmp := a.Value.Compare(b.Value); cmp != 0 {
		return cmp
	}
	switch {
	case a.Inclusive == b.Inclusive:
		return 0
	case a.Inclusive:
		return -1
	default:
		return 1
	}
}

// compareHigh orders upper bounds. An unbounded upper bound sorts last,
// and for equal values an exclusive bound ends before an inclusive one.
func compareHigh(a, b Bound) int {
	switch {
	case a.Unbounded && b.Unbounded:
		return 0
	case a.Unbounded:
		return 1
	case b.Unbounded:
		return -1
	}
	if cmp := a.Value.Compare(b.Value); cmp != 0 {
		return cmp
	}
	switch {
	case a.Inclusive == b.Inclusive:
		return 0
	case a.Inclusive:
		return 1
	default:
		return -1
	}
}

// Range is a contiguous interval over an ordered type.
type Range struct {
	Low, High Bound
}

func NewRange(low, high Bound) Range {
	return Range{Low: low, High: high}
}

func AllRange() Range {
	return Range{Low: Unbounded(), High: Unbounded()}
}

func SingleValueRange(value octosql.Value) Range {
	return Range{Low: Inclusive(value), High: Inclusive(value)}
}

func GreaterThanOrEqualRange(value octosql.Value) Range {
	return Range{Low: Inclusive(value), High: Unbounded()}
}

func GreaterThanRange(value octosql.Value) Range {
	return Range{Low: Exclusive(value), High: Unbounded()}
}

func LessThanOrEqualRange(value octosql.Value) Range {
	return Range{Low: Unbounded(), High: Inclusive(value)}
}

func LessThanRange(value octosql.Value) Range {
	return Range{Low: Unbounded(), High: Exclusive(value)}
}

func (r Range) IsAll() bool {
	return r.Low.Unbounded && r.High.Unbounded
}

func (r Range) IsEmpty() bool {
	if r.Low.Unbounded || r.High.Unbounded {
		return false
	}
	cmp := r.Low.Value.Compare(r.High.Value)
	if cmp > 0 {
		return true
	}
	return cmp == 0 && !(r.Low.Inclusive && r.High.Inclusive)
}

func (r Range) IsSingleValue() bool {
	return !r.Low.Unbounded && !r.High.Unbounded &&
		r.Low.Inclusive && r.High.Inclusive &&
		r.Low.Value.Compare(r.High.Value) == 0
}

func (r Range) Contains(value octosql.Value) bool {
	if value.TypeID == octosql.TypeIDNull {
		return false
	}
	if !r.Low.Unbounded {
		cmp := value.Compare(r.Low.Value)
		if cmp < 0 || (cmp == 0 && !r.Low.Inclusive) {
			return false
		}
	}
	if !r.High.Unbounded {
		cmp := value.Compare(r.High.Value)
		if cmp > 0 || (cmp == 0 && !r.High.Inclusive) {
			return false
		}
	}
	return true
}

// Intersect returns the common part of both ranges, if there is one.
func (r Range) Intersect(other Range) (Range, bool) {
	out := r
	if compareLow(other.Low, out.Low) > 0 {
		out.Low = other.Low
	}
	if compareHigh(other.High, out.High) < 0 {
		out.High = other.High
	}
	if out.IsEmpty() {
		return Range{}, false
	}
	return out, true
}

// Span returns the smallest range containing both ranges.
func (r Range) Span(other Range) Range {
	out := r
	if compareLow(other.Low, out.Low) < 0 {
		out.Low = other.Low
	}
	if compareHigh(other.High, out.High) > 0 {
		out.High = other.High
	}
	return out
}

// touches reports whether two ranges overlap or are adjacent, so that their union is a single range.
func (r Range) touches(other Range) bool {
	first, second := r, other
	if compareLow(second.Low, first.Low) < 0 {
		first, second = second, first
	}
	if first.High.Unbounded || second.Low.Unbounded {
		return true
	}
	cmp := first.High.Value.Compare(second.Low.Value)
	if cmp != 0 {
		return cmp > 0
	}
	return first.High.Inclusive || second.Low.Inclusive
}

func (r Range) Equal(other Range) bool {
	return r.Low.Equal(other.Low) && r.High.Equal(other.High)
}

func (r Range) String() string {
	if r.IsSingleValue() {
		return r.Low.Value.String()
	}
	builder := &strings.Builder{}
	if r.Low.Unbounded {
		builder.WriteString("(-∞")
	} else {
		if r.Low.Inclusive {
			builder.WriteString("[")
		} else {
			builder.WriteString("(")
		}
		builder.WriteString(r.Low.Value.String())
	}
	builder.WriteString(", ")
	if r.High.Unbounded {
		builder.WriteString("+∞)")
	} else {
		builder.WriteString(r.High.Value.String())
		if r.High.Inclusive {
			builder.WriteString("]")
		} else {
			builder.WriteString(")")
		}
	}
	return builder.String()
}
