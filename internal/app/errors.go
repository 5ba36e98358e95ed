package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoLogs     = errors.New("no logs found")
	ErrDuplicate  = errors.New("duplicate log")
	ErrNoCallsign = errors.New("log has no callsign")
)
