package match

import "errors"

var (
	// ErrNotFound is returned when an id-targeted operation affects no record.
	ErrNotFound = errors.New("match not found")
	// ErrValidation is returned when required input is missing or malformed.
	ErrValidation = errors.New("validation failed")
)
