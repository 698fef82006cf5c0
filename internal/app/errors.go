package app

import "errors"

// Sentinel kinds for planner input validation and direct-query failures.
var (
	ErrNoDams          = errors.New("dam set must not be empty")
	ErrCeilingRange    = errors.New("inbreeding ceiling must be within [0,1]")
	ErrNegativeWeight  = errors.New("negative selection-index weight not permitted")
	ErrInvalidCapacity = errors.New("sire capacity must not be negative")
	ErrUnknownSubject  = errors.New("subject record not found")
)
