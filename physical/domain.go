package physical

import (
	"strings"

	"github.com/google/btree"

	"github.com/cube2222/octorest/octosql"
)

const rangeSetDegree = 8

type rangeItem struct {
	Range
}

func (item rangeItem) Less(than btree.Item) bool {
	return compareLow(item.Low, than.(rangeItem).Low) < 0
}

type domainKind int

const (
	domainKindNone domainKind = iota
	domainKindAll
	domainKindRanges
)

// Domain is the set of values a column may take.
// It is either all values, no values, or a sorted set of non-overlapping ranges.
// A discrete set of values is a range set made of single points.
//
// Domains are immutable, every operation returns a new Domain.
type Domain struct {
	Type   octosql.Type
	kind   domainKind
	ranges *btree.BTree
}

func DomainAll(t octosql.Type) Domain {
	return Domain{Type: t, kind: domainKindAll}
}

func DomainNone(t octosql.Type) Domain {
	return Domain{Type: t, kind: domainKindNone}
}

func DomainSingleValue(t octosql.Type, value octosql.Value) Domain {
	return DomainFromRanges(t, SingleValueRange(value))
}

func DomainMultipleValues(t octosql.Type, values ...octosql.Value) Domain {
	ranges := make([]Range, len(values))
	for i := range values {
		ranges[i] = SingleValueRange(values[i])
	}
	return DomainFromRanges(t, ranges...)
}

// DomainFromRanges builds the union of the given ranges. Overlapping and adjacent ranges are coalesced.
func DomainFromRanges(t octosql.Type, ranges ...Range) Domain {
	tree := btree.New(rangeSetDegree)
	for _, r := range ranges {
		insertRange(tree, r)
	}
	return domainFromTree(t, tree)
}

func domainFromTree(t octosql.Type, tree *btree.BTree) Domain {
	if tree.Len() == 0 {
		return DomainNone(t)
	}
	if tree.Len() == 1 && tree.Min().(rangeItem).IsAll() {
		return DomainAll(t)
	}
	return Domain{Type: t, kind: domainKindRanges, ranges: tree}
}

func insertRange(tree *btree.BTree, r Range) {
	if r.IsEmpty() {
		return
	}
	var touching []rangeItem
	tree.Ascend(func(i btree.Item) bool {
		item := i.(rangeItem)
		if item.touches(r) {
			touching = append(touching, item)
			return true
		}
		// Items sorted after r which don't touch it can't be followed by touching ones.
		return compareLow(item.Low, r.Low) <= 0
	})
	merged := r
	for _, item := range touching {
		tree.Delete(item)
		merged = merged.Span(item.Range)
	}
	tree.ReplaceOrInsert(rangeItem{Range: merged})
}

func (d Domain) IsAll() bool {
	return d.kind == domainKindAll
}

func (d Domain) IsNone() bool {
	return d.kind == domainKindNone
}

// Ranges returns the sorted, non-overlapping ranges this domain consists of.
func (d Domain) Ranges() []Range {
	switch d.kind {
	case domainKindAll:
		return []Range{AllRange()}
	case domainKindNone:
		return nil
	}
	out := make([]Range, 0, d.ranges.Len())
	d.ranges.Ascend(func(i btree.Item) bool {
		out = append(out, i.(rangeItem).Range)
		return true
	})
	return out
}

func (d Domain) IsSingleValue() bool {
	return d.kind == domainKindRanges && d.ranges.Len() == 1 && d.ranges.Min().(rangeItem).IsSingleValue()
}

// IsDiscreteSet reports whether the domain is a finite set of values,
// which is a range set made only of single points.
func (d Domain) IsDiscreteSet() bool {
	if d.kind != domainKindRanges {
		return false
	}
	discrete := true
	d.ranges.Ascend(func(i btree.Item) bool {
		discrete = i.(rangeItem).IsSingleValue()
		return discrete
	})
	return discrete
}

// Values returns the values of a discrete domain in ascending order.
func (d Domain) Values() ([]octosql.Value, bool) {
	if !d.IsDiscreteSet() {
		return nil, false
	}
	ranges := d.Ranges()
	out := make([]octosql.Value, len(ranges))
	for i := range ranges {
		out[i] = ranges[i].Low.Value
	}
	return out, true
}

// Span returns the smallest single range containing the whole domain.
func (d Domain) Span() (Range, bool) {
	switch d.kind {
	case domainKindAll:
		return AllRange(), true
	case domainKindNone:
		return Range{}, false
	}
	low := d.ranges.Min().(rangeItem).Range
	high := d.ranges.Max().(rangeItem).Range
	return NewRange(low.Low, high.High), true
}

func (d Domain) Contains(value octosql.Value) bool {
	switch d.kind {
	case domainKindAll:
		return true
	case domainKindNone:
		return false
	}
	contains := false
	d.ranges.Ascend(func(i btree.Item) bool {
		item := i.(rangeItem)
		if item.Contains(value) {
			contains = true
			return false
		}
		return true
	})
	return contains
}

func (d Domain) Intersect(other Domain) Domain {
	switch {
	case d.IsNone() || other.IsNone():
		return DomainNone(d.Type)
	case d.IsAll():
		return other
	case other.IsAll():
		return d
	}
	tree := btree.New(rangeSetDegree)
	otherRanges := other.Ranges()
	for _, r := range d.Ranges() {
		for _, o := range otherRanges {
			if common, ok := r.Intersect(o); ok {
				insertRange(tree, common)
			}
		}
	}
	return domainFromTree(d.Type, tree)
}

func (d Domain) Union(other Domain) Domain {
	switch {
	case d.IsAll() || other.IsAll():
		return DomainAll(d.Type)
	case d.IsNone():
		return other
	case other.IsNone():
		return d
	}
	return DomainFromRanges(d.Type, append(d.Ranges(), other.Ranges()...)...)
}

func (d Domain) Equal(other Domain) bool {
	if d.kind != other.kind {
		return false
	}
	if d.kind != domainKindRanges {
		return true
	}
	ranges, otherRanges := d.Ranges(), other.Ranges()
	if len(ranges) != len(otherRanges) {
		return false
	}
	for i := range ranges {
		if !ranges[i].Equal(otherRanges[i]) {
			return false
		}
	}
	return true
}

func (d Domain) String() string {
	switch d.kind {
	case domainKindAll:
		return "ALL"
	case domainKindNone:
		return "NONE"
	}
	ranges := d.Ranges()
	parts := make([]string, len(ranges))
	for i := range ranges {
		parts[i] = ranges[i].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
