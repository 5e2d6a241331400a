package node

import (
	"context"

	"ChordRing/internal/fingertable"
	"ChordRing/internal/ring"
)

// PeerTransport is everything a Node needs from the network to talk to
// another ring member. The HTTP implementation lives in internal/peerclient;
// tests substitute an in-memory fake so the protocol logic never dials a
// socket.
//
// Implementations must NOT call HandleFailure themselves: only the
// stabilize loop, the client-facing Insert/Contains paths and the
// GET /successor/{id} handler decide when an RPC failure warrants ring
// repair (SPEC_FULL.md §9).
type PeerTransport interface {
	Successor(ctx context.Context, addr string) (fingertable.Peer, error)
	SetSuccessor(ctx context.Context, addr string, succ fingertable.Peer) error
	FindSuccessor(ctx context.Context, addr string, id ring.ID) (fingertable.Peer, error)
	ClosestPrecedingFinger(ctx context.Context, addr string, id ring.ID) (fingertable.Peer, error)
	Predecessor(ctx context.Context, addr string) (fingertable.Peer, error)
	SetPredecessor(ctx context.Context, addr string, pred fingertable.Peer) error
	UpdateFingerTable(ctx context.Context, addr string, s fingertable.Peer, i int) error
	Notify(ctx context.Context, addr string, self fingertable.Peer) error
	InsertKey(ctx context.Context, addr string, key string) (ring.ID, error)
	ContainsKey(ctx context.Context, addr string, key string) (bool, error)
	InsertReplica(ctx context.Context, addr string, key string) error
	IsAlive(ctx context.Context, addr string) bool
}
