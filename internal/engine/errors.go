package engine

import "errors"

// Sentinel kinds for engine errors.
var (
	ErrUnknownMode = errors.New("no contest period for mode")
	ErrJobFailed   = errors.New("participant job failed")
)
