package physical

import (
	"sort"

	"github.com/pkg/errors"
)

type PushdownResult struct {
	Handle TableHandle
	// Residual is the part of the constraint set the engine still has to check locally.
	Residual ConstraintSet
	// Accepted is set if anything new was pushed down.
	Accepted bool
}

// ApplyFilter folds the expressible parts of the constraint set into the handle's pushdown state.
//
// The second return value is false when there's nothing to do: the constraint set is the identity or None,
// or no column got anything new pushed down. The planner should stop re-offering the constraint set then.
//
// Pushing the same normalized domain twice is a no-op. Pushing a different equality for a column
// which already has one is an ErrUnsupportedPredicate, as the remote API can only bind a single filter per column.
// A different lower bound is merged with the existing one, resulting in the tighter bound.
//
// Columns whose pushdown is exact are removed from the residual.
func ApplyFilter(handle TableHandle, capabilities FilterCapabilities, constraints ConstraintSet) (PushdownResult, bool, error) {
	if constraints.IsAll() || constraints.IsNone() {
		return PushdownResult{}, false, nil
	}

	columns := make([]string, 0, len(capabilities))
	for column := range capabilities {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	pushdown := handle.Pushdown
	residual := constraints
	accepted := false

	for _, column := range columns {
		mode := capabilities[column]
		normalized, ok := NormalizeConstraint(column, mode, constraints)
		if !ok {
			continue
		}

		existing, alreadyPushed := pushdown.Domain(column)
		switch {
		case !alreadyPushed:
			pushdown = pushdown.WithDomain(column, normalized)
			accepted = true

		case existing.Equal(normalized):
			// Already satisfied.

		case mode == FilterModeEqual:
			return PushdownResult{}, false, errors.Wrapf(
				ErrUnsupportedPredicate,
				"column %s already filtered on %s, can't also filter on %s", column, existing, normalized,
			)

		default:
			merged := existing.Intersect(normalized)
			if !merged.Equal(existing) {
				pushdown = pushdown.Without(column).WithDomain(column, merged)
				accepted = true
			}
		}

		// Equality pushdown is exact. A lower bound is exact only if the column's domain already was
		// that unbounded-above range, otherwise it was widened and has to be re-checked.
		if original, _ := constraints.Domain(column); mode == FilterModeEqual || original.Equal(normalized) {
			residual = residual.Without(column)
		}
	}

	if !accepted {
		return PushdownResult{}, false, nil
	}

	return PushdownResult{
		Handle:   handle.WithPushdown(pushdown),
		Residual: residual,
		Accepted: true,
	}, true, nil
}
