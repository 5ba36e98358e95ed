// Package config defines the cross-checker configuration and its loading.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and XCHECK_ env vars.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"runtime"
	"time"

	"github.com/okian/xcheck/internal/domain/contest"
)

// PeriodConfig is the contest window of one mode.
type PeriodConfig struct {
	Start    time.Time     `koanf:"start"`
	Duration time.Duration `koanf:"duration" validate:"gt=0"`
}

// FreqConfig is an inclusive frequency range in kHz.
type FreqConfig struct {
	LowKHz  int `koanf:"low_khz"  validate:"gt=0"`
	HighKHz int `koanf:"high_khz" validate:"gtefield=LowKHz"`
}

// BandConfig names a frequency range.
type BandConfig struct {
	Name       string `koanf:"name" validate:"required"`
	FreqConfig `koanf:",squash"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr is the results API listen address; empty disables the server.
	Addr string `koanf:"addr"`
	// MaxStandingsLimit caps GET /standings?limit.
	MaxStandingsLimit int `koanf:"max_standings_limit" validate:"gt=0"`

	// WorkerCount sets the validation workers per pass; 0 means one per CPU.
	WorkerCount int `koanf:"worker_count" validate:"gte=0"`
	// QueueSize bounds the job queue of each pass.
	QueueSize int `koanf:"queue_size" validate:"gt=0"`

	// LogsDir holds one sub-directory per mode (CW/, PH/).
	LogsDir string `koanf:"logs_dir" validate:"required"`
	// LogExt selects log files by extension.
	LogExt string `koanf:"log_ext" validate:"required,startswith=."`
	// OutDir receives results.csv and the per-participant reports.
	OutDir string `koanf:"out_dir" validate:"required"`
	// CountiesFile is an optional county table (YAML or JSON).
	CountiesFile string `koanf:"counties_file"`
	// DBPath is an optional SQLite results database.
	DBPath string `koanf:"db_path"`

	ShadowThreshold int           `koanf:"shadow_threshold" validate:"gte=1"`
	TimeTolerance   time.Duration `koanf:"time_tolerance"   validate:"gte=0"`
	ScoreFormula    string        `koanf:"score_formula"    validate:"oneof=per_band combined"`

	Periods  map[string]PeriodConfig `koanf:"periods"   validate:"required,min=1,dive"`
	Bands    []BandConfig            `koanf:"bands"     validate:"required,min=1,dive"`
	SubBands map[string][]FreqConfig `koanf:"sub_bands" validate:"required,min=1,dive,min=1,dive"`
}

// New creates a Config with defaults for the NRAU-Baltic contest.
func New() *Config {
	cwStart := time.Date(2022, 1, 16, 6, 30, 0, 0, time.UTC)
	phStart := time.Date(2022, 1, 16, 9, 0, 0, 0, time.UTC)
	rules := contest.NRAUBaltic(cwStart, phStart)

	c := &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		MaxStandingsLimit: 100,
		WorkerCount:       runtime.NumCPU(),
		QueueSize:         256,
		LogsDir:           ".",
		LogExt:            ".txt",
		OutDir:            "out",
		ShadowThreshold:   rules.ShadowThreshold,
		TimeTolerance:     rules.TimeTolerance,
		ScoreFormula:      string(rules.Formula),
		Periods:           make(map[string]PeriodConfig, len(rules.Periods)),
		SubBands:          make(map[string][]FreqConfig, len(rules.SubBands)),
	}
	for mode, p := range rules.Periods {
		c.Periods[string(mode)] = PeriodConfig{Start: p.Start, Duration: p.Duration}
	}
	for _, b := range rules.Bands {
		c.Bands = append(c.Bands, BandConfig{Name: string(b.Band), FreqConfig: FreqConfig{LowKHz: b.LowKHz, HighKHz: b.HighKHz}})
	}
	for mode, subs := range rules.SubBands {
		for _, sb := range subs {
			c.SubBands[string(mode)] = append(c.SubBands[string(mode)], FreqConfig(sb))
		}
	}
	return c
}
