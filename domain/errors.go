package domain

import "errors"

// Error kinds returned by store operations. Callers classify with
// errors.Is; the concrete message carries the detail.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)
