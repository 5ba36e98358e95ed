package resultsdb

import "errors"

// Sentinel kinds for results database errors.
var (
	ErrOpen        = errors.New("open results database")
	ErrMigrate     = errors.New("migrate results database")
	ErrWrite       = errors.New("write results")
	ErrRunNotFound = errors.New("run not found")
)
