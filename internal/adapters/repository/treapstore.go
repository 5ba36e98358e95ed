package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/okian/xcheck/pkg/metrics"
)

// Treap ordered so that in-order traversal yields the standings: "less"
// means ranks earlier. Priorities come from a hash of the call so the
// shape does not depend on insertion order.

type node struct {
	call  string
	score int
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less reports whether (aScore, aCall) ranks before (bScore, bCall).
func less(aScore int, aCall string, bScore int, bCall string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aCall < bCall
}

func priority(call string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(call))
	return h.Sum64()
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, call string, score int) *node {
	if n == nil {
		return &node{call: call, score: score, prio: priority(call), size: 1}
	}
	if less(score, call, n.score, n.call) {
		n.left = insert(n.left, call, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, call, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func remove(n *node, call string, score int) *node {
	if n == nil {
		return nil
	}
	switch {
	case n.call == call && n.score == score:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = remove(n.right, call, score)
		} else {
			n = rotateLeft(n)
			n.left = remove(n.left, call, score)
		}
	case less(score, call, n.score, n.call):
		n.left = remove(n.left, call, score)
	default:
		n.right = remove(n.right, call, score)
	}
	fix(n)
	return n
}

// countAbove returns the number of entries with a score strictly above s.
func countAbove(n *node, s int) int {
	total := 0
	for n != nil {
		if n.score > s {
			total += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return total
}

// walk visits up to limit nodes in standings order; limit < 0 means all.
func walk(n *node, limit int, visit func(*node)) int {
	if n == nil || limit == 0 {
		return limit
	}
	limit = walk(n.left, limit, visit)
	if limit == 0 {
		return 0
	}
	visit(n)
	limit--
	return walk(n.right, limit, visit)
}

// TreapStore is an in-memory Store.
type TreapStore struct {
	mu     sync.RWMutex
	root   *node
	byCall map[string]Entry
	label  string
}

// NewTreapStore constructs an empty store.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{byCall: make(map[string]Entry), label: "all"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Replace implements Store. Readers see either the old or the new table.
func (s *TreapStore) Replace(_ context.Context, entries []Entry) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	var root *node
	byCall := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if e.Call == "" {
			return fmt.Errorf("%w: empty call", ErrInvalidEntry)
		}
		if old, ok := byCall[e.Call]; ok {
			root = remove(root, old.Call, old.Score)
		}
		e.Rank = 0
		byCall[e.Call] = e
		root = insert(root, e.Call, e.Score)
	}

	s.mu.Lock()
	s.root, s.byCall = root, byCall
	s.mu.Unlock()

	metrics.UpdateStandingsRecords(s.label, len(byCall))
	return nil
}

// Rank implements Store in O(log n).
func (s *TreapStore) Rank(_ context.Context, call string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byCall[call]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, call)
	}
	e.Rank = countAbove(s.root, e.Score) + 1
	return e, nil
}

// TopN implements Store.
func (s *TreapStore) TopN(_ context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, min(n, len(s.byCall)))
	walk(s.root, n, func(nd *node) {
		e := s.byCall[nd.call]
		switch {
		case len(out) == 0:
			e.Rank = 1
		case out[len(out)-1].Score == e.Score:
			e.Rank = out[len(out)-1].Rank
		default:
			e.Rank = len(out) + 1
		}
		out = append(out, e)
	})
	return out, nil
}

// Count implements Store.
func (s *TreapStore) Count(context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byCall)
}
