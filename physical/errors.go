package physical

import (
	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedPredicate is returned when a predicate can't be represented by the remote API,
	// like two different equalities pushed for the same column.
	ErrUnsupportedPredicate = errors.New("unsupported predicate")

	// ErrMissingRequiredConstraint is returned when a table mandates a filter column which has no value.
	ErrMissingRequiredConstraint = errors.New("missing required constraint")

	ErrTableNotFound = errors.New("table not found")
)
