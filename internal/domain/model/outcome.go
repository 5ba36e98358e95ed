package model

import "fmt"

// Status is the tagged result of validating one contact.
type Status int

// Statuses ordered by point value.
const (
	Invalid Status = iota
	Partial
	Full
)

// Points returns the point value for a status.
func (s Status) Points() int {
	switch s {
	case Full:
		return 2
	case Partial:
		return 1
	default:
		return 0
	}
}

func (s Status) String() string {
	switch s {
	case Full:
		return "FULL"
	case Partial:
		return "PARTIAL"
	default:
		return "INVALID"
	}
}

// Reason explains an outcome for reporting.
type Reason string

// Reason codes.
const (
	ReasonOK             Reason = "ok"
	ReasonOutsidePeriod  Reason = "outside_period"
	ReasonBadBand        Reason = "bad_band"
	ReasonNoLog          Reason = "no_log"
	ReasonNotInLog       Reason = "not_in_log"
	ReasonTimeMismatch   Reason = "time_mismatch"
	ReasonReportMismatch Reason = "report_mismatch"
	ReasonSerialMismatch Reason = "serial_mismatch"
	ReasonCountyMismatch Reason = "county_mismatch"
	ReasonUnknownCounty  Reason = "unknown_county"
	ReasonShadowStation  Reason = "shadow_station"
)

// Outcome is the resolved result for one ContactRecord.
type Outcome struct {
	Status Status
	Reason Reason
	Detail string
	// Mult reports whether the received county earns multiplier credit.
	Mult bool
	// Counterpart is the Seq of the matched record in the worked station's
	// log, or 0 when nothing was matched.
	Counterpart int
}

// Points is a shorthand for o.Status.Points().
func (o Outcome) Points() int { return o.Status.Points() }

// AwaitingShadow reports whether the outcome is a first-pass miss that the
// shadow resolver may still promote.
func (o Outcome) AwaitingShadow() bool {
	return o.Status == Invalid && o.Reason == ReasonNoLog
}

// Invalidf builds an INVALID outcome.
func Invalidf(reason Reason, format string, args ...any) Outcome {
	return Outcome{Status: Invalid, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// Partialf builds a PARTIAL outcome.
func Partialf(reason Reason, counterpart int, format string, args ...any) Outcome {
	return Outcome{Status: Partial, Reason: reason, Counterpart: counterpart, Detail: fmt.Sprintf(format, args...)}
}

// Confirmed builds a FULL outcome with multiplier credit.
func Confirmed(counterpart int) Outcome {
	return Outcome{Status: Full, Reason: ReasonOK, Mult: true, Counterpart: counterpart}
}

// WithMult returns a copy of o with multiplier credit set to mult.
func (o Outcome) WithMult(mult bool) Outcome {
	o.Mult = mult
	return o
}
