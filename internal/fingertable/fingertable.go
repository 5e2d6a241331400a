// Package fingertable implements a node's Chord finger table: the m
// logarithmically-spaced routing pointers used to locate the successor of
// an arbitrary identifier in O(log n) hops.
package fingertable

import (
	"fmt"
	"sync"

	"ChordRing/internal/logger"
	"ChordRing/internal/ring"
)

// Peer identifies a ring member by its identifier and dial address.
type Peer struct {
	ID   ring.ID
	Addr string
}

// fingerEntry is a single row of the table: Start is the fixed identifier
// i*2^k-th finger points at (start = self + 2^k mod M); Succ is the first
// node on or after Start, refreshed by fix-fingers.
type fingerEntry struct {
	mu    sync.RWMutex
	start ring.ID
	succ  *Peer
}

// Table is the finger table owned by a single node. Entry i covers the
// identifier range [self+2^i, self+2^(i+1)).
type Table struct {
	logger logger.Logger
	space  ring.Space
	self   Peer
	rows   []*fingerEntry
}

// New builds a finger table with one row per bit of the identifier space,
// all rows initially empty until fix-fingers populates them.
func New(self Peer, space ring.Space, opts ...Option) *Table {
	t := &Table{
		self:   self,
		space:  space,
		rows:   make([]*fingerEntry, space.Bits),
		logger: logger.NopLogger{},
	}
	for i := range t.rows {
		t.rows[i] = &fingerEntry{start: space.AddPow2(self.ID, i)}
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger.Debug("finger table initialized", logger.F("rows", len(t.rows)))
	return t
}

func (t *Table) Self() Peer       { return t.self }
func (t *Table) Space() ring.Space { return t.space }
func (t *Table) Len() int         { return len(t.rows) }

// Start returns the fixed start identifier of row i.
func (t *Table) Start(i int) ring.ID {
	return t.rows[i].start
}

// Get returns the successor currently recorded at row i, or nil if fix-fingers
// has not populated it yet.
func (t *Table) Get(i int) *Peer {
	if i < 0 || i >= len(t.rows) {
		t.logger.Warn("Get: row out of range", logger.F("requested", i))
		return nil
	}
	row := t.rows[i]
	row.mu.RLock()
	defer row.mu.RUnlock()
	return row.succ
}

// Set records the successor of row i.
func (t *Table) Set(i int, p Peer) {
	if i < 0 || i >= len(t.rows) {
		t.logger.Warn("Set: row out of range", logger.F("requested", i))
		return
	}
	row := t.rows[i]
	row.mu.Lock()
	row.succ = &p
	row.mu.Unlock()
	t.logger.Debug("Set: finger updated", logger.F("row", i), logger.FAddr("addr", p.Addr))
}

// ClosestPrecedingFinger returns the finger in this table that most closely
// precedes target on the ring, scanning rows from the highest index down so
// the farthest-reaching known pointer wins first, per the Chord routing
// invariant. It falls back to self when no finger qualifies.
func (t *Table) ClosestPrecedingFinger(target ring.ID) Peer {
	iv := t.space.NewInterval(ring.Open, t.self.ID, target, ring.Open)
	for i := len(t.rows) - 1; i >= 0; i-- {
		f := t.Get(i)
		if f == nil {
			continue
		}
		if iv.Contains(f.ID) {
			return *f
		}
	}
	return t.self
}

// String renders a compact snapshot of the table for diagnostics.
func (t *Table) String() string {
	return fmt.Sprintf("fingertable(self=%s, rows=%d)", t.self.Addr, len(t.rows))
}
