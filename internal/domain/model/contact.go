// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Mode is the transmission mode a contest period runs in.
type Mode string

// Supported contest modes.
const (
	ModeCW Mode = "CW"
	ModePH Mode = "PH"
)

// Modes lists the modes in report order.
var Modes = []Mode{ModeCW, ModePH} //nolint:gochecknoglobals // fixed enumeration

// ParseMode maps a Cabrillo mode token to a Mode. Phone aliases collapse to PH.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CW":
		return ModeCW, true
	case "PH", "SSB", "USB", "LSB", "FM", "AM":
		return ModePH, true
	default:
		return "", false
	}
}

// Band names a discrete frequency range, e.g. "80m".
type Band string

// Power is the declared power category of a participant.
type Power string

// Power categories.
const (
	PowerHigh  Power = "HIGH"
	PowerLow   Power = "LOW"
	PowerMulti Power = "MULTI"
)

// Exchange is the data passed in one direction of a contact.
type Exchange struct {
	Report string // signal report, e.g. "599" or "59"
	Serial int    // serial number
	County string // two-letter county code
}

// ContactRecord is one claimed contact as logged by its owner.
// Records are built by the Cabrillo parser and never modified afterwards.
type ContactRecord struct {
	Seq     int       // 1-based position in the owning log
	Line    int       // source line number
	FreqKHz int       // logged frequency in kHz
	Band    Band      // band derived from FreqKHz
	Mode    Mode      // mode of the contact
	Time    time.Time // UTC, minute resolution
	Call    string    // normalized call of the logging station
	Sent    Exchange
	Worked  string // normalized call of the worked station
	Rcvd    Exchange
}

// ParticipantLog is a parsed submission.
type ParticipantLog struct {
	Call         string
	Mode         Mode
	Power        Power
	County       string
	Checklog     bool
	ClaimedScore int    // CLAIMED-SCORE header
	HasClaimed   bool   // CLAIMED-SCORE header present
	Source       string // file the log was read from
	Contacts     []ContactRecord
	Failures     []ParseFailure
}

// ChecklogFlag renders the checklog flag the way the result table expects it.
func (l *ParticipantLog) ChecklogFlag() string {
	if l.Checklog {
		return "Y"
	}
	return "N"
}
