package testlogs

import (
	"time"

	"github.com/okian/xcheck/internal/domain/model"
)

// Config holds configuration for the log corpus generator.
type Config struct {
	OutDir   string       // Root directory; one sub-directory per mode
	Stations int          // Number of stations on the air
	Silent   int          // Stations that work others but submit no log
	QSOs     int          // Contacts generated per mode
	BustRate float64      // Share of contacts with a miscopied serial
	Seed     uint64       // Generator seed; equal seeds give equal corpora
	Workers  int          // Concurrent file writers
	Modes    []model.Mode // Modes to generate
	CWStart  time.Time    // CW period start
	PHStart  time.Time    // PH period start
}

// Station is one generated participant.
type Station struct {
	Call   string
	County string
	Power  model.Power
	Silent bool
}

// Corpus is a generated contest.
type Corpus struct {
	Stations []Station
	// Logs holds the submitted logs per mode.
	Logs map[model.Mode][]model.ParticipantLog
	// Clean counts records expected to be confirmed without remarks.
	Clean map[model.Mode]int
	// Busted counts records expected to be partial.
	Busted map[model.Mode]int
}

// Stats holds generator statistics.
type Stats struct {
	Logs      int
	Contacts  int
	Files     int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
