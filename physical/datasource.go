package physical

import (
	"context"

	"github.com/cube2222/octorest/execution"
)

type Database interface {
	ListTables(ctx context.Context) ([]string, error)
	GetTable(ctx context.Context, name string) (DatasourceImplementation, Schema, error)
}

type DatasourceImplementation interface {
	// ApplyFilter tries to push the constraint set down into the table handle.
	// It returns false if nothing changed, in which case the planner should stop calling it.
	ApplyFilter(handle TableHandle, constraints ConstraintSet) (PushdownResult, bool, error)
	ApplyLimit(handle TableHandle, limit int) (TableHandle, bool)
	Materialize(ctx context.Context, handle TableHandle) (execution.RecordStream, error)
}
