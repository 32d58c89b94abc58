package physical

import (
	"fmt"
)

// TableHandle identifies a table together with the constraints and limit already pushed down into it.
// It's a value type: pushdown steps return a new handle and never modify an existing one,
// so it may be shared freely between goroutines during planning.
type TableHandle struct {
	Table    string
	Pushdown ConstraintSet

	// Limit is only meaningful if Limited is set.
	Limited bool
	Limit   int
}

func NewTableHandle(table string) TableHandle {
	return TableHandle{
		Table:    table,
		Pushdown: ConstraintsAll(),
	}
}

func (h TableHandle) WithPushdown(pushdown ConstraintSet) TableHandle {
	out := h
	out.Pushdown = pushdown
	return out
}

func (h TableHandle) WithLimit(limit int) TableHandle {
	out := h
	out.Limited = true
	out.Limit = limit
	return out
}

// RowLimit returns the pushed down limit, or -1 if there is none.
func (h TableHandle) RowLimit() int {
	if !h.Limited {
		return -1
	}
	return h.Limit
}

func (h TableHandle) String() string {
	out := fmt.Sprintf("%s[%s]", h.Table, h.Pushdown)
	if h.Limited {
		out += fmt.Sprintf(" limit %d", h.Limit)
	}
	return out
}

// ApplyLimit pushes a row limit into the handle. A looser limit than the one already present is a no-op.
func ApplyLimit(handle TableHandle, limit int) (TableHandle, bool) {
	if limit < 0 {
		return handle, false
	}
	if handle.Limited && handle.Limit <= limit {
		return handle, false
	}
	return handle.WithLimit(limit), true
}
