package grader

import (
	"sync"

	"github.com/google/uuid"
)

// AttemptIDGenerator produces ids for graded attempts.
type AttemptIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 attempt ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, so a session's
// reports sort by grading time.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined attempt ids for testing.
//
// This keeps report output deterministic for golden comparison.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
//
// Example:
//
//	gen := NewFixedGenerator("attempt-1", "attempt-2")
//	gen.Generate() // "attempt-1"
//	gen.Generate() // "attempt-2"
//	gen.Generate() // panic: all ids exhausted
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
//
// Panics if all ids have been consumed; a test that grades more
// attempts than it provided ids for is misconfigured.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
