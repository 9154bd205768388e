package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a referenced product or sale id does not
// exist.
var ErrNotFound = errors.New("not found")

// ErrEmptySale reports a commit attempt with zero staged lines.
var ErrEmptySale = errors.New("sale has no lines")

// ValidationError reports a missing or out-of-range field, detected
// before any persistence attempt.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientStockError reports a requested quantity that exceeds the
// currently known stock for a product.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   float64
	Available   float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"insufficient stock for %q (id %d): requested %g, available %g",
		e.ProductName, e.ProductID, e.Requested, e.Available,
	)
}
