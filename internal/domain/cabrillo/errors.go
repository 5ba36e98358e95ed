package cabrillo

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrRead          = errors.New("read log failed")
	ErrMalformedLine = errors.New("malformed QSO line")
	ErrBadFrequency  = errors.New("bad frequency")
	ErrUnknownBand   = errors.New("frequency outside band plan")
	ErrUnknownMode   = errors.New("unknown mode")
	ErrBadTimestamp  = errors.New("bad timestamp")
	ErrBadSerial     = errors.New("bad serial number")
)
