package county

import "errors"

// ErrDecode is returned when a county table cannot be read.
var ErrDecode = errors.New("decode county table")
