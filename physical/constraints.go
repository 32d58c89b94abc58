package physical

import (
	"sort"
	"strings"

	"github.com/cube2222/octorest/octosql"
)

// ConstraintSet maps columns to the domains they're constrained to.
// Columns without an entry are unconstrained. The empty set is the identity, matching everything,
// while a None set matches no rows at all.
type ConstraintSet struct {
	domains map[string]Domain
	none    bool
}

func ConstraintsAll() ConstraintSet {
	return ConstraintSet{}
}

func ConstraintsNone() ConstraintSet {
	return ConstraintSet{none: true}
}

// NewConstraintSet builds a constraint set, dropping unconstrained columns.
// If any column domain is None, the whole set is None.
func NewConstraintSet(domains map[string]Domain) ConstraintSet {
	out := make(map[string]Domain, len(domains))
	for column, domain := range domains {
		if domain.IsNone() {
			return ConstraintsNone()
		}
		if domain.IsAll() {
			continue
		}
		out[column] = domain
	}
	return ConstraintSet{domains: out}
}

func (c ConstraintSet) IsAll() bool {
	return !c.none && len(c.domains) == 0
}

func (c ConstraintSet) IsNone() bool {
	return c.none
}

func (c ConstraintSet) Domain(column string) (Domain, bool) {
	if c.none {
		return Domain{}, false
	}
	domain, ok := c.domains[column]
	return domain, ok
}

// Columns returns the constrained columns in sorted order.
func (c ConstraintSet) Columns() []string {
	out := make([]string, 0, len(c.domains))
	for column := range c.domains {
		out = append(out, column)
	}
	sort.Strings(out)
	return out
}

// WithDomain returns a copy of the set with the column further constrained to the given domain.
func (c ConstraintSet) WithDomain(column string, domain Domain) ConstraintSet {
	if c.none {
		return c
	}
	domains := c.copyDomains()
	if existing, ok := domains[column]; ok {
		domain = existing.Intersect(domain)
	}
	domains[column] = domain
	return NewConstraintSet(domains)
}

func (c ConstraintSet) Intersect(other ConstraintSet) ConstraintSet {
	if c.none || other.none {
		return ConstraintsNone()
	}
	out := c
	for _, column := range other.Columns() {
		out = out.WithDomain(column, other.domains[column])
	}
	return out
}

// Without returns a copy of the set with the given columns unconstrained.
func (c ConstraintSet) Without(columns ...string) ConstraintSet {
	if c.none {
		return c
	}
	domains := c.copyDomains()
	for _, column := range columns {
		delete(domains, column)
	}
	return ConstraintSet{domains: domains}
}

func (c ConstraintSet) Equal(other ConstraintSet) bool {
	if c.none || other.none {
		return c.none == other.none
	}
	if len(c.domains) != len(other.domains) {
		return false
	}
	for column, domain := range c.domains {
		otherDomain, ok := other.domains[column]
		if !ok || !domain.Equal(otherDomain) {
			return false
		}
	}
	return true
}

// Matches evaluates the constraint set against a single row.
// Columns the lookup doesn't know are treated as not matching.
func (c ConstraintSet) Matches(lookup func(column string) (octosql.Value, bool)) bool {
	if c.none {
		return false
	}
	for column, domain := range c.domains {
		value, ok := lookup(column)
		if !ok || !domain.Contains(value) {
			return false
		}
	}
	return true
}

func (c ConstraintSet) copyDomains() map[string]Domain {
	out := make(map[string]Domain, len(c.domains))
	for column, domain := range c.domains {
		out[column] = domain
	}
	return out
}

func (c ConstraintSet) String() string {
	if c.none {
		return "NONE"
	}
	if len(c.domains) == 0 {
		return "ALL"
	}
	columns := c.Columns()
	parts := make([]string, len(columns))
	for i, column := range columns {
		parts[i] = column + " in " + c.domains[column].String()
	}
	return strings.Join(parts, " AND ")
}
