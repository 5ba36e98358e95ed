// Package xref builds the read-only lookup from (station, band) to the
// contact records a station logged on that band.
package xref

import (
	"sort"

	"github.com/okian/xcheck/internal/domain/model"
)

type key struct {
	call string
	band model.Band
}

// Index is immutable after Build and safe for concurrent readers.
type Index struct {
	byKey map[key][]model.ContactRecord
	logs  map[string]*model.ParticipantLog
}

// Build indexes every record of every participant. Records keep their log
// order within each (call, band) slot. When two logs share a call, the
// first one wins.
func Build(logs []model.ParticipantLog) *Index {
	idx := &Index{
		byKey: make(map[key][]model.ContactRecord),
		logs:  make(map[string]*model.ParticipantLog, len(logs)),
	}
	for i := range logs {
		l := &logs[i]
		if _, dup := idx.logs[l.Call]; dup {
			continue
		}
		idx.logs[l.Call] = l
		for _, rec := range l.Contacts {
			k := key{call: l.Call, band: rec.Band}
			idx.byKey[k] = append(idx.byKey[k], rec)
		}
	}
	return idx
}

// Lookup returns the records call logged on band, in log order. The
// returned slice must not be modified.
func (x *Index) Lookup(call string, band model.Band) []model.ContactRecord {
	return x.byKey[key{call: call, band: band}]
}

// HasLog reports whether call submitted a log.
func (x *Index) HasLog(call string) bool {
	_, ok := x.logs[call]
	return ok
}

// Log returns the submitted log for call.
func (x *Index) Log(call string) (*model.ParticipantLog, bool) {
	l, ok := x.logs[call]
	return l, ok
}

// Participants returns every indexed participant call, sorted.
func (x *Index) Participants() []string {
	out := make([]string, 0, len(x.logs))
	for c := range x.logs {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of indexed participants.
func (x *Index) Len() int { return len(x.logs) }
