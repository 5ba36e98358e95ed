// Package repository holds the ranked standings of one contest mode.
package repository

import (
	"context"

	"github.com/okian/xcheck/internal/domain/model"
)

// Entry is one standings row.
type Entry struct {
	Rank   int         `json:"rank"`
	Call   string      `json:"call"`
	Score  int         `json:"score"`
	QSO    int         `json:"qso"`
	Points int         `json:"points"`
	Mult   int         `json:"mult"`
	Power  model.Power `json:"power"`
	County string      `json:"county"`
}

// Store provides read/write access to standings ordered by score desc,
// then call asc. Equal scores share a rank.
type Store interface {
	// Replace swaps the whole table for entries in one step.
	Replace(ctx context.Context, entries []Entry) error

	// Rank returns the entry for call, or ErrNotFound.
	Rank(ctx context.Context, call string) (Entry, error)
	// TopN returns up to n entries in standings order.
	TopN(ctx context.Context, n int) ([]Entry, error)
	Count(ctx context.Context) int
}
