// Package dedupe tracks keys that have already been seen: distinct
// corroborating participants per shadow candidate, and repeated log
// submissions for the same call and mode.
package dedupe

import (
	"context"
	"strings"
	"sync"
)

// keySep joins key parts; it cannot appear in a normalized call sign.
const keySep = "\x1f"

// Key joins parts into a single dedupe key.
func Key(parts ...string) string {
	return strings.Join(parts, keySep)
}

// Deduper records seen keys.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	Size() int64
}

type inMemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewInMemoryDeduper creates a new in-memory deduper.
func NewInMemoryDeduper() Deduper {
	return &inMemoryDeduper{seen: make(map[string]struct{})}
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	d.seen[id] = struct{}{}
	return false
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
