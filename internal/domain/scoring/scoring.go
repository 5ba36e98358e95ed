// Package scoring folds validated contacts into per-band totals and a
// final score.
package scoring

import (
	"github.com/okian/xcheck/internal/domain/contest"
	"github.com/okian/xcheck/internal/domain/model"
)

// claimedPoints is what a participant implicitly claims per logged contact.
const claimedPoints = 2

// BandTally holds the totals for one band.
type BandTally struct {
	Band   model.Band
	QSO    int
	Points int
	Mult   int
}

// Summary is the score of one participant. It is recomputed from scratch
// on every run.
type Summary struct {
	Bands  []BandTally // in band plan order
	Points int
	Mult   int
	Score  int
}

// Band returns the tally for b, or a zero tally when b is not in the plan.
func (s Summary) Band(b model.Band) BandTally {
	for _, t := range s.Bands {
		if t.Band == b {
			return t
		}
	}
	return BandTally{Band: b}
}

// Aggregator computes summaries for a fixed band plan and formula.
type Aggregator struct {
	bands   []model.Band
	formula contest.Formula
}

// New returns an aggregator. An empty formula means per_band.
func New(bands []model.Band, formula contest.Formula) *Aggregator {
	if formula == "" {
		formula = contest.FormulaPerBand
	}
	return &Aggregator{bands: append([]model.Band(nil), bands...), formula: formula}
}

// Aggregate folds outcomes (parallel to contacts) into a summary. A
// contact counts as a QSO when it earned points; its received county is
// a multiplier on its band when the outcome grants multiplier credit.
func (a *Aggregator) Aggregate(contacts []model.ContactRecord, outcomes []model.Outcome) Summary {
	return a.fold(contacts, func(i int) (int, bool) {
		o := outcomes[i]
		return o.Points(), o.Mult && o.Points() > 0
	})
}

// Claimed computes the summary as submitted: every contact at full value
// and every received county as a multiplier.
func (a *Aggregator) Claimed(contacts []model.ContactRecord) Summary {
	return a.fold(contacts, func(int) (int, bool) { return claimedPoints, true })
}

func (a *Aggregator) fold(contacts []model.ContactRecord, value func(i int) (points int, mult bool)) Summary {
	pos := make(map[model.Band]int, len(a.bands))
	sum := Summary{Bands: make([]BandTally, len(a.bands))}
	mults := make([]map[string]struct{}, len(a.bands))
	for i, b := range a.bands {
		pos[b] = i
		sum.Bands[i].Band = b
		mults[i] = make(map[string]struct{})
	}

	for i := range contacts {
		bi, ok := pos[contacts[i].Band]
		if !ok {
			continue
		}
		points, mult := value(i)
		if points <= 0 {
			continue
		}
		t := &sum.Bands[bi]
		t.QSO++
		t.Points += points
		if cty := contacts[i].Rcvd.County; mult && cty != "" {
			mults[bi][cty] = struct{}{}
		}
	}

	for i := range sum.Bands {
		t := &sum.Bands[i]
		t.Mult = len(mults[i])
		sum.Points += t.Points
		sum.Mult += t.Mult
		if a.formula == contest.FormulaPerBand {
			sum.Score += t.Points * t.Mult
		}
	}
	if a.formula == contest.FormulaCombined {
		sum.Score = sum.Points * sum.Mult
	}
	return sum
}
