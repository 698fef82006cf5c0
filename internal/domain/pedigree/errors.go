package pedigree

import "errors"

// Sentinel kinds for tree construction errors.
var (
	ErrInvalidDepth = errors.New("pedigree depth must be positive")
	ErrEmptySubject = errors.New("subject id must not be empty")
)
