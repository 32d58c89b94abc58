package optimizer

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/cube2222/octorest/physical"
)

// MaxPushdownIterations bounds the number of ApplyFilter calls per table.
// A well-behaved datasource converges after two: one accepting the constraints, one confirming nothing changed.
const MaxPushdownIterations = 16

var ErrPushdownDidNotConverge = errors.New("predicate pushdown didn't converge")

// PushDownFilterPredicatesToDatasource offers the constraints to the datasource until it stops accepting them.
// Each iteration offers the residual left over by the previous one.
func PushDownFilterPredicatesToDatasource(ctx context.Context, impl physical.DatasourceImplementation, handle physical.TableHandle, constraints physical.ConstraintSet) (physical.TableHandle, physical.ConstraintSet, int, error) {
	residual := constraints
	for i := 0; i < MaxPushdownIterations; i++ {
		if err := ctx.Err(); err != nil {
			return physical.TableHandle{}, physical.ConstraintSet{}, i, err
		}

		result, changed, err := impl.ApplyFilter(handle, residual)
		if err != nil {
			return physical.TableHandle{}, physical.ConstraintSet{}, i + 1, errors.Wrapf(err, "couldn't push down %s into %s", residual, handle.Table)
		}
		if !changed {
			return handle, residual, i + 1, nil
		}
		slog.DebugContext(ctx, "pushed down predicates",
			slog.String("table", handle.Table),
			slog.String("pushdown", result.Handle.Pushdown.String()),
			slog.String("residual", result.Residual.String()),
		)
		handle = result.Handle
		residual = result.Residual
	}
	return physical.TableHandle{}, physical.ConstraintSet{}, MaxPushdownIterations, errors.Wrapf(ErrPushdownDidNotConverge, "table %s after %d iterations", handle.Table, MaxPushdownIterations)
}
