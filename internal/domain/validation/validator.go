// Package validation decides the outcome of every claimed contact by
// checking it against the counterpart's own log.
package validation

import (
	"context"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/okian/xcheck/internal/domain/contest"
	"github.com/okian/xcheck/internal/domain/county"
	"github.com/okian/xcheck/internal/domain/model"
	"github.com/okian/xcheck/internal/domain/xref"
	"github.com/okian/xcheck/pkg/logger"
	"github.com/okian/xcheck/pkg/metrics"
)

// maxBustedDistance bounds the edit distance reported as a busted call.
const maxBustedDistance = 2

// Sighting is a contact with a station that has not submitted a log.
type Sighting struct {
	Worked string
	Band   model.Band
}

// Result holds the first-pass outcomes of one participant log.
type Result struct {
	Call string
	// Outcomes is parallel to the log's Contacts.
	Outcomes []model.Outcome
	// Sightings lists distinct (worked, band) pairs awaiting shadow resolution.
	Sightings []Sighting
}

// Validator checks contacts against a read-only index. It holds no
// mutable state and is safe for concurrent use.
type Validator struct {
	rules    *contest.Rules
	index    *xref.Index
	counties *county.Table
	logger   logger.Logger
}

// New builds a validator over rules and index.
func New(rules *contest.Rules, index *xref.Index, opts ...Option) *Validator {
	v := &Validator{
		rules:  rules,
		index:  index,
		logger: logger.Get().Named("validation"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// check carries state between rule steps for one contact.
type check struct {
	owner      string
	rec        *model.ContactRecord
	candidates []model.ContactRecord
	best       *model.ContactRecord
}

// step either decides the outcome (done=true) or lets the next step run.
type step func(v *Validator, c *check) (out model.Outcome, done bool)

var steps = []step{ //nolint:gochecknoglobals // fixed rule order
	(*Validator).window,
	(*Validator).band,
	(*Validator).lookup,
	(*Validator).timing,
	(*Validator).exchange,
}

// Validate resolves one contact claimed by owner.
func (v *Validator) Validate(owner string, rec *model.ContactRecord) model.Outcome {
	c := &check{owner: owner, rec: rec}
	for _, s := range steps {
		if out, done := s(v, c); done {
			return out
		}
	}
	// exchange always decides
	return model.Invalidf(model.ReasonNotInLog, "no rule matched")
}

// ValidateLog runs the first pass over every contact in log.
func (v *Validator) ValidateLog(ctx context.Context, log *model.ParticipantLog) Result {
	start := time.Now()
	res := Result{Call: log.Call, Outcomes: make([]model.Outcome, len(log.Contacts))}
	seen := make(map[Sighting]bool)

	for i := range log.Contacts {
		rec := &log.Contacts[i]
		out := v.Validate(log.Call, rec)
		res.Outcomes[i] = out
		metrics.RecordContactValidated(out.Status.String(), string(out.Reason))

		if out.AwaitingShadow() {
			s := Sighting{Worked: rec.Worked, Band: rec.Band}
			if !seen[s] {
				seen[s] = true
				res.Sightings = append(res.Sightings, s)
			}
		}
		if out.Status != model.Full {
			v.logger.Debug(ctx, "contact not confirmed",
				logger.String("call", log.Call),
				logger.Int("line", rec.Line),
				logger.String("worked", rec.Worked),
				logger.String("status", out.Status.String()),
				logger.String("reason", string(out.Reason)),
			)
		}
	}

	metrics.RecordValidationLatency(float64(time.Since(start).Microseconds()) / 1000)
	return res
}

// ShadowOutcome is the outcome of a contact with a promoted shadow station.
func (v *Validator) ShadowOutcome(rec *model.ContactRecord) model.Outcome {
	if !v.countyCreditable(rec.Rcvd.County) {
		return model.Invalidf(model.ReasonUnknownCounty, "Unknown county %q from shadow station %s", rec.Rcvd.County, rec.Worked)
	}
	return model.Outcome{
		Status: model.Full,
		Reason: model.ReasonShadowStation,
		Mult:   true,
		Detail: "Shadow station " + rec.Worked,
	}
}

func (v *Validator) window(c *check) (model.Outcome, bool) {
	p, ok := v.rules.Periods[c.rec.Mode]
	if !ok {
		return model.Invalidf(model.ReasonOutsidePeriod, "No contest period for mode %s", c.rec.Mode), true
	}
	if !p.Contains(c.rec.Time) {
		return model.Invalidf(model.ReasonOutsidePeriod, "Outside contest period %s-%s",
			p.Start.Format("15:04"), p.End().Format("15:04")), true
	}
	return model.Outcome{}, false
}

func (v *Validator) band(c *check) (model.Outcome, bool) {
	if !v.rules.InSubBand(c.rec.Mode, c.rec.FreqKHz) {
		return model.Invalidf(model.ReasonBadBand, "Frequency %d kHz not allowed for %s", c.rec.FreqKHz, c.rec.Mode), true
	}
	return model.Outcome{}, false
}

func (v *Validator) lookup(c *check) (model.Outcome, bool) {
	worked := c.rec.Worked
	if !v.index.HasLog(worked) {
		return model.Invalidf(model.ReasonNoLog, "Log not received from %s", worked), true
	}
	for _, r := range v.index.Lookup(worked, c.rec.Band) {
		if r.Worked == c.owner {
			c.candidates = append(c.candidates, r)
		}
	}
	if len(c.candidates) == 0 {
		if hint := v.bustedHint(c); hint != "" {
			return model.Invalidf(model.ReasonNotInLog, "QSO not found in %s's log (%s)", worked, hint), true
		}
		return model.Invalidf(model.ReasonNotInLog, "QSO not found in %s's log", worked), true
	}
	return model.Outcome{}, false
}

// bustedHint looks for a near miss in the counterpart's log around the
// claimed time: the owner's call logged on another band, or a call within
// a small edit distance on the same band.
func (v *Validator) bustedHint(c *check) string {
	for _, b := range v.rules.BandNames() {
		if b == c.rec.Band {
			continue
		}
		for _, r := range v.index.Lookup(c.rec.Worked, b) {
			if r.Worked == c.owner && v.withinTolerance(absDiff(r.Time, c.rec.Time)) {
				return "logged on " + string(b)
			}
		}
	}
	for _, r := range v.index.Lookup(c.rec.Worked, c.rec.Band) {
		if !v.withinTolerance(absDiff(r.Time, c.rec.Time)) {
			continue
		}
		if d := levenshtein.ComputeDistance(r.Worked, c.owner); d > 0 && d <= maxBustedDistance {
			return "logged as " + r.Worked
		}
	}
	return ""
}

func (v *Validator) timing(c *check) (model.Outcome, bool) {
	var (
		best    *model.ContactRecord
		bestD   time.Duration
		nearest = time.Duration(-1)
	)
	for i := range c.candidates {
		r := &c.candidates[i]
		d := absDiff(r.Time, c.rec.Time)
		if nearest < 0 || d < nearest {
			nearest = d
		}
		if !v.withinTolerance(d) {
			continue
		}
		// candidates are in log order; strict < keeps the earliest on ties
		if best == nil || d < bestD {
			best, bestD = r, d
		}
	}
	if best == nil {
		return model.Invalidf(model.ReasonTimeMismatch, "Time differs by %d min in %s's log",
			int(nearest/time.Minute), c.rec.Worked), true
	}
	c.best = best
	return model.Outcome{}, false
}

func (v *Validator) exchange(c *check) (model.Outcome, bool) {
	mine, theirs := c.rec, c.best
	seq := theirs.Seq
	switch {
	case mine.Sent.Report != theirs.Rcvd.Report:
		return model.Partialf(model.ReasonReportMismatch, seq, "TX report mismatch: sent %s, %s logged %s",
			mine.Sent.Report, mine.Worked, theirs.Rcvd.Report).WithMult(v.partialMult(c)), true
	case mine.Rcvd.Report != theirs.Sent.Report:
		return model.Partialf(model.ReasonReportMismatch, seq, "RX report mismatch: logged %s, %s sent %s",
			mine.Rcvd.Report, mine.Worked, theirs.Sent.Report).WithMult(v.partialMult(c)), true
	case mine.Sent.Serial != theirs.Rcvd.Serial:
		return model.Partialf(model.ReasonSerialMismatch, seq, "TX serial mismatch: sent %03d, %s logged %03d",
			mine.Sent.Serial, mine.Worked, theirs.Rcvd.Serial).WithMult(v.partialMult(c)), true
	case mine.Rcvd.Serial != theirs.Sent.Serial:
		return model.Partialf(model.ReasonSerialMismatch, seq, "RX serial mismatch: logged %03d, %s sent %03d",
			mine.Rcvd.Serial, mine.Worked, theirs.Sent.Serial).WithMult(v.partialMult(c)), true
	case mine.Sent.County != theirs.Rcvd.County:
		return model.Partialf(model.ReasonCountyMismatch, seq, "TX county mismatch: sent %s, %s logged %s",
			mine.Sent.County, mine.Worked, theirs.Rcvd.County).WithMult(v.partialMult(c)), true
	case mine.Rcvd.County != theirs.Sent.County:
		return model.Partialf(model.ReasonCountyMismatch, seq, "RX county mismatch: logged %s, %s sent %s",
			mine.Rcvd.County, mine.Worked, theirs.Sent.County).WithMult(v.partialMult(c)), true
	}
	out := model.Confirmed(seq)
	out.Mult = v.countyCreditable(mine.Rcvd.County)
	return out, true
}

// partialMult credits the multiplier of a PARTIAL contact only when the
// received county itself was copied correctly.
func (v *Validator) partialMult(c *check) bool {
	return c.rec.Rcvd.County == c.best.Sent.County && v.countyCreditable(c.rec.Rcvd.County)
}

func (v *Validator) countyCreditable(code string) bool {
	if !v.counties.Configured() {
		return code != ""
	}
	return v.counties.Known(code)
}

func (v *Validator) withinTolerance(d time.Duration) bool {
	return d <= v.rules.TimeTolerance
}

func absDiff(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}
