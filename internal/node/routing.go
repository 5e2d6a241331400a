package node

import (
	"context"

	"ChordRing/internal/fingertable"
	"ChordRing/internal/logger"
	"ChordRing/internal/ring"
)

// FindSuccessor computes the owner of id: the live node whose identifier
// is the first at or after id on the ring.
func (st *State) FindSuccessor(ctx context.Context, id ring.ID) (fingertable.Peer, error) {
	p, err := st.FindPredecessor(ctx, id)
	if err != nil {
		return fingertable.Peer{}, err
	}
	if p.Addr == st.self.Addr {
		return st.Successor(), nil
	}
	succ, err := st.transport.Successor(ctx, p.Addr)
	if err != nil {
		return fingertable.Peer{}, err
	}
	return succ, nil
}

// FindPredecessor walks the ring toward id, returning the live node whose
// successor covers id.
func (st *State) FindPredecessor(ctx context.Context, id ring.ID) (fingertable.Peer, error) {
	n := st.self
	for {
		var s fingertable.Peer
		if n.Addr == st.self.Addr {
			s = st.Successor()
		} else {
			var err error
			s, err = st.transport.Successor(ctx, n.Addr)
			if err != nil {
				return fingertable.Peer{}, err
			}
		}

		iv := st.space.NewInterval(ring.Open, n.ID, s.ID, ring.Closed)
		if iv.Contains(id) {
			return n, nil
		}

		var next fingertable.Peer
		if n.Addr == st.self.Addr {
			next = st.ClosestPrecedingFinger(id)
		} else {
			var err error
			next, err = st.transport.ClosestPrecedingFinger(ctx, n.Addr, id)
			if err != nil {
				return fingertable.Peer{}, err
			}
		}
		n = next
	}
}

// ClosestPrecedingFinger scans the local finger table from the highest
// index down for the finger closest to, but not past, id.
func (st *State) ClosestPrecedingFinger(id ring.ID) fingertable.Peer {
	return st.fingerTable.ClosestPrecedingFinger(id)
}

// UpdateFingerTable implements the invariant repair triggered when a node
// learns of a peer s that may improve finger k: if id(s) falls in
// [id(self), finger_table[k].successor_id), the entry is replaced and the
// predecessor is asked to perform the same check. Recursion stops once the
// predecessor is s itself, preventing propagation cycles.
func (st *State) UpdateFingerTable(ctx context.Context, s fingertable.Peer, i int) error {
	cur := st.fingerTable.Get(i)
	if cur == nil {
		st.fingerTable.Set(i, s)
	} else {
		iv := st.space.NewInterval(ring.Closed, st.self.ID, cur.ID, ring.Open)
		if s.ID == st.self.ID || !iv.Contains(s.ID) {
			return nil
		}
		st.fingerTable.Set(i, s)
	}

	pred := st.Predecessor()
	if pred.Addr == s.Addr || pred.Addr == st.self.Addr {
		return nil
	}
	if err := st.transport.UpdateFingerTable(ctx, pred.Addr, s, i); err != nil {
		st.logger.Warn("update_finger_table: predecessor propagation failed",
			logger.FAddr("pred", pred.Addr), logger.F("err", err.Error()))
		return err
	}
	return nil
}
