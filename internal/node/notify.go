package node

import (
	"context"

	"ChordRing/internal/fingertable"
	"ChordRing/internal/logger"
	"ChordRing/internal/ring"
)

// Notify is the inbound handler for a peer o claiming it may be this node's
// predecessor. The local predecessor is replaced when it is unknown, dead,
// or o is strictly closer on the arc (id(o) ∈ (id(pred), id(self))).
func (st *State) Notify(ctx context.Context, o fingertable.Peer) {
	pred := st.Predecessor()

	if pred.Addr == st.self.Addr {
		st.SetPredecessor(o)
		return
	}
	if !st.transport.IsAlive(ctx, pred.Addr) {
		st.SetPredecessor(o)
		return
	}

	iv := st.space.NewInterval(ring.Open, pred.ID, st.self.ID, ring.Open)
	if iv.Contains(o.ID) {
		st.SetPredecessor(o)
		return
	}
	st.logger.Debug("notify: predecessor unchanged", logger.FAddr("candidate", o.Addr))
}
