package report

import "errors"

// ErrWrite wraps failures writing a report.
var ErrWrite = errors.New("write report")
