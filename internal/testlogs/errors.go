package testlogs

import "errors"

// Sentinel kinds for generator errors.
var (
	ErrInvalidConfig = errors.New("invalid generator config")
	ErrMismatch      = errors.New("check results differ from generated expectations")
)
