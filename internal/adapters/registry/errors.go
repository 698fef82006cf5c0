package registry

import "errors"

// Sentinel kinds for registry errors.
var (
	ErrNotFound = errors.New("animal record not found")
	ErrEmptyID  = errors.New("animal id must not be empty")
)
