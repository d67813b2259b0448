package common

import "errors"

var (
	// ErrorNotFound is returned when a local lookup (queue entry, file) misses.
	ErrorNotFound = errors.New("not found")

	// ErrorValidation marks input rejected before any network call.
	ErrorValidation = errors.New("validation error")
)
