package physical

// NormalizeConstraint extracts the part of the constraint set on the given column which can be sent
// to the remote API as a single filter parameter.
//
// For GreaterThanOrEqual columns the result is the lower bound of the column's domain span,
// as an unbounded-above range. Unless the domain already was exactly that range, it's a widening
// of the original predicate, which then has to stay in the residual. For Equal columns the result is the domain unchanged,
// and only discrete domains are accepted.
//
// The second return value is false if nothing can be pushed down for this column.
func NormalizeConstraint(column string, mode FilterMode, constraints ConstraintSet) (Domain, bool) {
	domain, ok := constraints.Domain(column)
	if !ok || domain.IsNone() || domain.IsAll() {
		return Domain{}, false
	}

	switch mode {
	case FilterModeGreaterThanOrEqual:
		span, ok := domain.Span()
		if !ok || span.Low.Unbounded {
			return Domain{}, false
		}
		return DomainFromRanges(domain.Type, GreaterThanOrEqualRange(span.Low.Value)), true

	case FilterModeEqual:
		if !domain.IsDiscreteSet() {
			return Domain{}, false
		}
		return domain, true

	case FilterModeUnsupported:
		return Domain{}, false
	}

	panic("unexhaustive filter mode match")
}
