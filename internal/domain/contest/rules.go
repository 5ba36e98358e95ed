// Package contest holds the per-edition contest rules the engine is
// constructed with: periods, band plan, tolerances and scoring formula.
package contest

import (
	"fmt"
	"sort"
	"time"

	"github.com/okian/xcheck/internal/domain/model"
)

// Default rule values.
const (
	DefaultShadowThreshold = 10
	DefaultTimeTolerance   = 5 * time.Minute
)

// Formula selects how band points and multipliers combine into a score.
type Formula string

// Supported formulas.
const (
	// FormulaPerBand sums points×multipliers over bands.
	FormulaPerBand Formula = "per_band"
	// FormulaCombined multiplies the point total by the multiplier total.
	FormulaCombined Formula = "combined"
)

// Period is a contest window for one mode. End is exclusive.
type Period struct {
	Start    time.Time
	Duration time.Duration
}

// End returns the first instant after the period.
func (p Period) End() time.Time { return p.Start.Add(p.Duration) }

// Contains reports whether t is inside [Start, End).
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End())
}

// FreqRange is an inclusive frequency range in kHz.
type FreqRange struct {
	LowKHz  int
	HighKHz int
}

// Contains reports whether f lies inside the range.
func (r FreqRange) Contains(f int) bool { return f >= r.LowKHz && f <= r.HighKHz }

// BandRange maps a frequency range onto a band name.
type BandRange struct {
	Band model.Band
	FreqRange
}

// Rules is the immutable rule set for one contest edition.
type Rules struct {
	Periods         map[model.Mode]Period
	Bands           []BandRange
	SubBands        map[model.Mode][]FreqRange
	TimeTolerance   time.Duration
	ShadowThreshold int
	Formula         Formula
}

// BandFor returns the band containing f.
func (r *Rules) BandFor(f int) (model.Band, bool) {
	for _, b := range r.Bands {
		if b.Contains(f) {
			return b.Band, true
		}
	}
	return "", false
}

// BandNames returns configured band names in plan order.
func (r *Rules) BandNames() []model.Band {
	out := make([]model.Band, len(r.Bands))
	for i, b := range r.Bands {
		out[i] = b.Band
	}
	return out
}

// InSubBand reports whether f is a legal frequency for mode.
func (r *Rules) InSubBand(mode model.Mode, f int) bool {
	for _, sb := range r.SubBands[mode] {
		if sb.Contains(f) {
			return true
		}
	}
	return false
}

// Validate checks the rule set for inconsistencies that would silently
// corrupt every score. Any error wraps ErrInvalidRules.
func (r *Rules) Validate() error {
	if len(r.Periods) == 0 {
		return fmt.Errorf("%w: no contest periods", ErrInvalidRules)
	}
	for mode, p := range r.Periods {
		if _, ok := model.ParseMode(string(mode)); !ok {
			return fmt.Errorf("%w: unknown mode %q", ErrInvalidRules, mode)
		}
		if p.Start.IsZero() {
			return fmt.Errorf("%w: period %s has no start", ErrInvalidRules, mode)
		}
		if p.Duration <= 0 {
			return fmt.Errorf("%w: period %s has non-positive duration", ErrInvalidRules, mode)
		}
	}
	if len(r.Bands) == 0 {
		return fmt.Errorf("%w: empty band plan", ErrInvalidRules)
	}
	sorted := append([]BandRange(nil), r.Bands...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LowKHz < sorted[j].LowKHz })
	seen := make(map[model.Band]bool, len(sorted))
	for i, b := range sorted {
		if b.Band == "" {
			return fmt.Errorf("%w: band without a name", ErrInvalidRules)
		}
		if seen[b.Band] {
			return fmt.Errorf("%w: band %s declared twice", ErrInvalidRules, b.Band)
		}
		seen[b.Band] = true
		if b.LowKHz <= 0 || b.HighKHz < b.LowKHz {
			return fmt.Errorf("%w: band %s has invalid edges %d-%d", ErrInvalidRules, b.Band, b.LowKHz, b.HighKHz)
		}
		if i > 0 && sorted[i-1].HighKHz >= b.LowKHz {
			return fmt.Errorf("%w: bands %s and %s overlap", ErrInvalidRules, sorted[i-1].Band, b.Band)
		}
	}
	for mode := range r.Periods {
		subs := r.SubBands[mode]
		if len(subs) == 0 {
			return fmt.Errorf("%w: no sub-bands for %s", ErrInvalidRules, mode)
		}
		for _, sb := range subs {
			if sb.HighKHz < sb.LowKHz {
				return fmt.Errorf("%w: sub-band %d-%d for %s is inverted", ErrInvalidRules, sb.LowKHz, sb.HighKHz, mode)
			}
			lo, okLo := r.BandFor(sb.LowKHz)
			hi, okHi := r.BandFor(sb.HighKHz)
			if !okLo || !okHi || lo != hi {
				return fmt.Errorf("%w: sub-band %d-%d for %s is not inside a single band", ErrInvalidRules, sb.LowKHz, sb.HighKHz, mode)
			}
		}
	}
	if r.TimeTolerance < 0 {
		return fmt.Errorf("%w: negative time tolerance", ErrInvalidRules)
	}
	if r.ShadowThreshold < 1 {
		return fmt.Errorf("%w: shadow threshold must be at least 1", ErrInvalidRules)
	}
	switch r.Formula {
	case FormulaPerBand, FormulaCombined:
	default:
		return fmt.Errorf("%w: unknown score formula %q", ErrInvalidRules, r.Formula)
	}
	return nil
}

// NRAUBaltic returns the band plan used by the NRAU-Baltic contest with the
// given period starts. Each period lasts two hours.
func NRAUBaltic(cwStart, phStart time.Time) Rules {
	const twoHours = 2 * time.Hour
	return Rules{
		Periods: map[model.Mode]Period{
			model.ModeCW: {Start: cwStart, Duration: twoHours},
			model.ModePH: {Start: phStart, Duration: twoHours},
		},
		Bands: []BandRange{
			{Band: "80m", FreqRange: FreqRange{LowKHz: 3500, HighKHz: 3800}},
			{Band: "40m", FreqRange: FreqRange{LowKHz: 7000, HighKHz: 7200}},
		},
		SubBands: map[model.Mode][]FreqRange{
			model.ModeCW: {
				{LowKHz: 3500, HighKHz: 3500},
				{LowKHz: 3510, HighKHz: 3560},
				{LowKHz: 7000, HighKHz: 7000},
				{LowKHz: 7010, HighKHz: 7060},
			},
			model.ModePH: {
				{LowKHz: 3500, HighKHz: 3500},
				{LowKHz: 3600, HighKHz: 3650},
				{LowKHz: 3700, HighKHz: 3775},
				{LowKHz: 7000, HighKHz: 7000},
				{LowKHz: 7050, HighKHz: 7100},
				{LowKHz: 7130, HighKHz: 7200},
			},
		},
		TimeTolerance:   DefaultTimeTolerance,
		ShadowThreshold: DefaultShadowThreshold,
		Formula:         FormulaPerBand,
	}
}
