// Package shadow credits contacts with stations that never submitted a
// log once enough distinct participants corroborate them.
package shadow

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/xcheck/internal/domain/dedupe"
	"github.com/okian/xcheck/internal/domain/model"
)

// Candidate is a non-submitting station on one band.
type Candidate struct {
	Call string
	Band model.Band
}

// Tally counts distinct participants per candidate. Safe for concurrent use.
type Tally struct {
	seen   dedupe.Deduper
	mu     sync.Mutex
	counts map[Candidate]int
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{
		seen:   dedupe.NewInMemoryDeduper(),
		counts: make(map[Candidate]int),
	}
}

// Add records that participant logged a qualifying contact with worked on
// band. Repeat sightings by the same participant count once.
func (t *Tally) Add(ctx context.Context, participant, worked string, band model.Band) {
	if participant == worked {
		return
	}
	if t.seen.SeenAndRecord(ctx, dedupe.Key(worked, string(band), participant)) {
		return
	}
	t.mu.Lock()
	t.counts[Candidate{Call: worked, Band: band}]++
	t.mu.Unlock()
}

// Count returns the number of distinct participants that logged call on band.
func (t *Tally) Count(call string, band model.Band) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[Candidate{Call: call, Band: band}]
}

// Len returns the number of candidates seen.
func (t *Tally) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.counts)
}

// Resolve returns the candidates corroborated by at least threshold
// distinct participants.
func (t *Tally) Resolve(threshold int) Set {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(Set)
	for c, n := range t.counts {
		if n >= threshold {
			out[c] = n
		}
	}
	return out
}

// Set holds promoted shadow stations with their corroboration counts.
type Set map[Candidate]int

// Contains reports whether call is a shadow station on band.
func (s Set) Contains(call string, band model.Band) bool {
	_, ok := s[Candidate{Call: call, Band: band}]
	return ok
}

// Candidates returns the promoted stations ordered by call, then band.
func (s Set) Candidates() []Candidate {
	out := make([]Candidate, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Call != out[j].Call {
			return out[i].Call < out[j].Call
		}
		return out[i].Band < out[j].Band
	})
	return out
}

// Promoter rescores a contact with a promoted shadow station.
type Promoter interface {
	ShadowOutcome(rec *model.ContactRecord) model.Outcome
}

// Rescore replaces pending outcomes of contacts with promoted stations
// and returns how many were replaced. outcomes is parallel to log.Contacts.
func Rescore(log *model.ParticipantLog, outcomes []model.Outcome, set Set, p Promoter) int {
	if len(set) == 0 {
		return 0
	}
	n := 0
	for i := range log.Contacts {
		rec := &log.Contacts[i]
		if !outcomes[i].AwaitingShadow() || !set.Contains(rec.Worked, rec.Band) {
			continue
		}
		outcomes[i] = p.ShadowOutcome(rec)
		n++
	}
	return n
}
