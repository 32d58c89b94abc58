package physical

// FilterMode describes how a column's constraint can be expressed as a remote API filter.
type FilterMode int

const (
	FilterModeUnsupported FilterMode = iota
	// FilterModeEqual means the remote API accepts one exact value.
	FilterModeEqual
	// FilterModeGreaterThanOrEqual means the remote API accepts a lower bound,
	// like "updated since" cursors.
	FilterModeGreaterThanOrEqual
)

func (mode FilterMode) String() string {
	switch mode {
	case FilterModeUnsupported:
		return "unsupported"
	case FilterModeEqual:
		return "equal"
	case FilterModeGreaterThanOrEqual:
		return "greater_than_or_equal"
	}
	return "unknown"
}

// FilterCapabilities is the static per-table mapping from column name to supported pushdown mode.
// Columns which aren't present are unsupported.
type FilterCapabilities map[string]FilterMode

func (caps FilterCapabilities) Mode(column string) FilterMode {
	mode, ok := caps[column]
	if !ok {
		return FilterModeUnsupported
	}
	return mode
}
