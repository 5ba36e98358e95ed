package model

import "fmt"

// FailureKind classifies a rejected log line.
type FailureKind string

// Line failure kinds.
const (
	FailureFieldCount FailureKind = "field_count"
	FailureTimestamp  FailureKind = "timestamp"
	FailureFrequency  FailureKind = "frequency"
	FailureBand       FailureKind = "band"
	FailureMode       FailureKind = "mode"
	FailureSerial     FailureKind = "serial"
	FailureCallsign   FailureKind = "callsign"
)

// ParseFailure records a log line that could not be turned into a ContactRecord.
type ParseFailure struct {
	Line int
	Text string
	Kind FailureKind
	Err  error
}

func (f ParseFailure) Error() string {
	return fmt.Sprintf("line %d: %s: %v", f.Line, f.Kind, f.Err)
}

func (f ParseFailure) Unwrap() error { return f.Err }
