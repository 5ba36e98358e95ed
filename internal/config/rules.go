package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/xcheck/internal/domain/contest"
	"github.com/okian/xcheck/internal/domain/model"
)

var validate = validator.New() //nolint:gochecknoglobals // validators cache struct metadata

// Validate checks field constraints, then the rule set built from them.
// Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Rules(); err != nil {
		return err
	}
	return nil
}

// Rules converts the contest section into a validated rule set.
func (c *Config) Rules() (contest.Rules, error) {
	r := contest.Rules{
		Periods:         make(map[model.Mode]contest.Period, len(c.Periods)),
		SubBands:        make(map[model.Mode][]contest.FreqRange, len(c.SubBands)),
		TimeTolerance:   c.TimeTolerance,
		ShadowThreshold: c.ShadowThreshold,
		Formula:         contest.Formula(c.ScoreFormula),
	}
	for key, p := range c.Periods {
		mode, err := parseMode(key)
		if err != nil {
			return contest.Rules{}, err
		}
		r.Periods[mode] = contest.Period{Start: p.Start.UTC(), Duration: p.Duration}
	}
	for _, b := range c.Bands {
		r.Bands = append(r.Bands, contest.BandRange{
			Band:      model.Band(b.Name),
			FreqRange: contest.FreqRange{LowKHz: b.LowKHz, HighKHz: b.HighKHz},
		})
	}
	for key, subs := range c.SubBands {
		mode, err := parseMode(key)
		if err != nil {
			return contest.Rules{}, err
		}
		for _, sb := range subs {
			r.SubBands[mode] = append(r.SubBands[mode], contest.FreqRange(sb))
		}
	}
	if err := r.Validate(); err != nil {
		return contest.Rules{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return r, nil
}

// Modes returns the configured modes in report order.
func (c *Config) Modes() []model.Mode {
	var out []model.Mode
	for _, m := range model.Modes {
		if _, ok := c.Periods[string(m)]; ok {
			out = append(out, m)
		}
	}
	return out
}

func parseMode(key string) (model.Mode, error) {
	mode, ok := model.ParseMode(key)
	if !ok || string(mode) != strings.ToUpper(key) {
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, key)
	}
	return mode, nil
}
