package repository

import "errors"

// Sentinel kinds for standings errors.
var (
	ErrNotFound     = errors.New("call not in standings")
	ErrInvalidLimit = errors.New("invalid standings limit")
	ErrInvalidEntry = errors.New("invalid standings entry")
)
