// Package node implements the Chord protocol engine: routing, the join
// protocol, stabilization, failure handling, and the owned/replica key
// store. Every exported method is safe for concurrent use; each mutable
// field of State carries its own lock and no lock is ever held across an
// outbound RPC.
package node

import (
	"sync"
	"time"

	"ChordRing/internal/fingertable"
	"ChordRing/internal/logger"
	"ChordRing/internal/ring"
)

// Config fixes the protocol's timing constants and successor-list depth.
// Every node in a deployment must load the same values.
type Config struct {
	StabilizeInterval time.Duration
	LivenessTimeout   time.Duration
	ReqTimeout        time.Duration
	SuccessorListSize int
}

type predCell struct {
	mu   sync.RWMutex
	peer fingertable.Peer
}

type succListCell struct {
	mu   sync.RWMutex
	list []fingertable.Peer
}

type keySet struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

func newKeySet() *keySet {
	return &keySet{keys: make(map[string]struct{})}
}

func (s *keySet) add(key string) {
	s.mu.Lock()
	s.keys[key] = struct{}{}
	s.mu.Unlock()
}

func (s *keySet) has(key string) bool {
	s.mu.RLock()
	_, ok := s.keys[key]
	s.mu.RUnlock()
	return ok
}

func (s *keySet) snapshot() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	return out
}

// State is the node's view of the ring: its finger table, predecessor,
// successor list, and the keys it owns or holds as a replica.
type State struct {
	logger logger.Logger
	space  ring.Space
	cfg    Config
	self   fingertable.Peer

	transport PeerTransport

	fingerTable *fingertable.Table
	predecessor *predCell
	succList    *succListCell

	ownedKeys   *keySet
	replicaKeys *keySet
}

// New builds a node's state for the given self address, ring space and
// peer transport. The node starts in solo-ring configuration: every finger,
// the predecessor and the successor list point back to self. Callers that
// are joining an existing ring should call Join immediately afterward.
func New(selfAddr string, space ring.Space, cfg Config, transport PeerTransport, opts ...Option) *State {
	self := fingertable.Peer{ID: space.HashID(selfAddr), Addr: selfAddr}
	st := &State{
		logger:      logger.NopLogger{},
		space:       space,
		cfg:         cfg,
		self:        self,
		transport:   transport,
		predecessor: &predCell{peer: self},
		succList:    &succListCell{list: []fingertable.Peer{self}},
		ownedKeys:   newKeySet(),
		replicaKeys: newKeySet(),
	}
	for _, opt := range opts {
		opt(st)
	}
	st.fingerTable = fingertable.New(self, space, fingertable.WithLogger(st.logger.Named("fingertable")))
	st.initSolo()
	return st
}

// initSolo points every routing pointer at self, the configuration of a
// freshly created single-node ring.
func (st *State) initSolo() {
	for i := 0; i < st.fingerTable.Len(); i++ {
		st.fingerTable.Set(i, st.self)
	}
	st.predecessor.mu.Lock()
	st.predecessor.peer = st.self
	st.predecessor.mu.Unlock()
	st.succList.mu.Lock()
	st.succList.list = []fingertable.Peer{st.self}
	st.succList.mu.Unlock()
	st.logger.Debug("node initialized as solo ring")
}

func (st *State) Self() fingertable.Peer { return st.self }
func (st *State) Space() ring.Space      { return st.space }
func (st *State) Config() Config         { return st.cfg }

// Successor returns the node's first successor (finger_table[0]).
func (st *State) Successor() fingertable.Peer {
	s := st.fingerTable.Get(0)
	if s == nil {
		return st.self
	}
	return *s
}

// SetSuccessor overwrites finger_table[0] and the head of the successor
// list in one call, keeping invariant 5 (§3) intact by construction.
func (st *State) SetSuccessor(p fingertable.Peer) {
	st.fingerTable.Set(0, p)
	st.succList.mu.Lock()
	if len(st.succList.list) == 0 {
		st.succList.list = []fingertable.Peer{p}
	} else {
		st.succList.list[0] = p
	}
	st.succList.mu.Unlock()
	st.logger.Debug("successor updated", logger.FAddr("addr", p.Addr))
}

// Predecessor returns the current predecessor. It equals Self() when no
// predecessor is known.
func (st *State) Predecessor() fingertable.Peer {
	st.predecessor.mu.RLock()
	defer st.predecessor.mu.RUnlock()
	return st.predecessor.peer
}

func (st *State) SetPredecessor(p fingertable.Peer) {
	st.predecessor.mu.Lock()
	st.predecessor.peer = p
	st.predecessor.mu.Unlock()
	st.logger.Debug("predecessor updated", logger.FAddr("addr", p.Addr))
}

// ResetPredecessor reverts the predecessor to "unknown" (self).
func (st *State) ResetPredecessor() {
	st.SetPredecessor(st.self)
}

// SuccessorList returns a snapshot of the cached successor list. Callers
// may freely modify the returned slice.
func (st *State) SuccessorList() []fingertable.Peer {
	st.succList.mu.RLock()
	defer st.succList.mu.RUnlock()
	out := make([]fingertable.Peer, len(st.succList.list))
	copy(out, st.succList.list)
	return out
}

// SetSuccessorList replaces the cached successor list, truncating to the
// configured depth and reconciling finger_table[0] to the new head so
// invariant 5 (§3) holds after every call.
func (st *State) SetSuccessorList(list []fingertable.Peer) {
	if len(list) > st.cfg.SuccessorListSize {
		list = list[:st.cfg.SuccessorListSize]
	}
	if len(list) == 0 {
		list = []fingertable.Peer{st.self}
	}
	st.succList.mu.Lock()
	st.succList.list = list
	st.succList.mu.Unlock()
	st.fingerTable.Set(0, list[0])
	st.logger.Debug("successor list updated", logger.F("size", len(list)))
}

// FingerTable exposes the routing table for read-only introspection
// (HTTP /info, fix-fingers, closest_preceding_finger).
func (st *State) FingerTable() *fingertable.Table { return st.fingerTable }

// OwnedKeys returns a snapshot of the locally-owned key set.
func (st *State) OwnedKeys() []string { return st.ownedKeys.snapshot() }

// ReplicaKeys returns a snapshot of the replica key set.
func (st *State) ReplicaKeys() []string { return st.replicaKeys.snapshot() }
