package optimizer

import (
	"context"

	"github.com/pkg/errors"

	"github.com/cube2222/octorest/execution"
	"github.com/cube2222/octorest/octosql"
	"github.com/cube2222/octorest/physical"
)

// Plan is a single table scan with everything that could be pushed down already folded into its handle.
type Plan struct {
	Implementation physical.DatasourceImplementation
	Schema         physical.Schema
	Handle         physical.TableHandle

	// Residual has to be checked by the engine on every row the datasource returns.
	Residual physical.ConstraintSet
	// Limit is applied by the engine after the residual, -1 means no limit.
	Limit int

	Iterations int
}

// PushDown builds a plan for scanning the table with the given constraints.
func PushDown(ctx context.Context, impl physical.DatasourceImplementation, schema physical.Schema, handle physical.TableHandle, constraints physical.ConstraintSet) (Plan, error) {
	handle, residual, iterations, err := PushDownFilterPredicatesToDatasource(ctx, impl, handle, constraints)
	if err != nil {
		return Plan{}, err
	}
	return Plan{
		Implementation: impl,
		Schema:         schema,
		Handle:         handle,
		Residual:       residual,
		Limit:          -1,
		Iterations:     iterations,
	}, nil
}

// PushDownLimit tightens the plan's limit. It's only pushed into the datasource if there's no residual,
// otherwise the datasource could stop before returning enough rows matching it.
func PushDownLimit(plan Plan, limit int) (Plan, bool) {
	if limit < 0 {
		return plan, false
	}
	changed := false
	if plan.Limit < 0 || limit < plan.Limit {
		plan.Limit = limit
		changed = true
	}
	if plan.Residual.IsAll() {
		if handle, ok := plan.Implementation.ApplyLimit(plan.Handle, limit); ok {
			plan.Handle = handle
			changed = true
		}
	}
	return plan, changed
}

// Optimize pushes down the constraints, and then the limit, if any.
func Optimize(ctx context.Context, impl physical.DatasourceImplementation, schema physical.Schema, handle physical.TableHandle, constraints physical.ConstraintSet, limit int) (Plan, error) {
	plan, err := PushDown(ctx, impl, schema, handle, constraints)
	if err != nil {
		return Plan{}, err
	}
	plan, _ = PushDownLimit(plan, limit)
	return plan, nil
}

func (plan Plan) Materialize(ctx context.Context) (execution.RecordStream, error) {
	if plan.Residual.IsNone() || plan.Limit == 0 {
		return execution.NewInMemoryStream(nil), nil
	}

	for _, column := range plan.Residual.Columns() {
		if plan.Schema.FieldIndex(column) == -1 {
			return nil, errors.Errorf("unknown column %s in table %s", column, plan.Handle.Table)
		}
	}

	rs, err := plan.Implementation.Materialize(ctx, plan.Handle)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't materialize table %s", plan.Handle.Table)
	}

	if !plan.Residual.IsAll() {
		schema := plan.Schema
		residual := plan.Residual
		rs = execution.NewFilteredStream(rs, func(record execution.Record) bool {
			return residual.Matches(func(column string) (octosql.Value, bool) {
				i := schema.FieldIndex(column)
				if i == -1 || i >= len(record.Values) {
					return octosql.Value{}, false
				}
				return record.Values[i], true
			})
		})
	}
	if plan.Limit >= 0 {
		rs = execution.NewLimitedStream(rs, plan.Limit)
	}
	return rs, nil
}
