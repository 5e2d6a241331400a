package node

import (
	"context"
	"math/rand"
	"time"

	"ChordRing/internal/fingertable"
	"ChordRing/internal/logger"
	"ChordRing/internal/ring"
)

// StartStabilizer launches the background maintenance loop on its own
// goroutine. It stops when ctx is canceled. Each tick runs one full
// stabilization step; failures are logged and self-heal on the next tick.
func (st *State) StartStabilizer(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(st.cfg.StabilizeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				st.logger.Info("stabilizer stopped")
				return
			case <-ticker.C:
				st.stabilizeTick(ctx)
			}
		}
	}()
}

// stabilizeTick runs one iteration of the maintenance protocol (§4.5):
// reconcile the successor with its reported predecessor, notify it,
// repair one random finger, and rebuild the successor list. Any failure
// along the way invokes HandleFailure and aborts the remainder of the tick;
// the next tick retries from scratch.
func (st *State) stabilizeTick(ctx context.Context) {
	succ := st.Successor()

	var p fingertable.Peer
	if succ.Addr == st.self.Addr {
		p = st.Predecessor()
	} else {
		var err error
		p, err = st.transport.Predecessor(ctx, succ.Addr)
		if err != nil {
			st.logger.Warn("stabilize: could not reach successor", logger.FAddr("addr", succ.Addr), logger.F("err", err.Error()))
			st.HandleFailure(ctx)
			return
		}
	}
	if p.Addr != st.self.Addr && st.transport.IsAlive(ctx, p.Addr) {
		iv := st.space.NewInterval(ring.Open, st.self.ID, succ.ID, ring.Open)
		if iv.Contains(p.ID) {
			st.SetSuccessor(p)
			succ = p
		}
	}

	if succ.Addr != st.self.Addr {
		if err := st.transport.Notify(ctx, succ.Addr, st.self); err != nil {
			st.logger.Warn("stabilize: notify failed", logger.FAddr("addr", succ.Addr), logger.F("err", err.Error()))
			st.HandleFailure(ctx)
			return
		}
	} else {
		st.Notify(ctx, st.self)
	}

	if !st.fixRandomFinger(ctx) {
		st.HandleFailure(ctx)
		return
	}
	st.buildSuccessorList(ctx)
}

// fixRandomFinger refreshes one randomly chosen finger table row via a
// fresh find_successor lookup of its fixed start identifier. It reports
// whether the lookup succeeded.
func (st *State) fixRandomFinger(ctx context.Context) bool {
	i := rand.Intn(st.fingerTable.Len())
	start := st.fingerTable.Start(i)
	succ, err := st.FindSuccessor(ctx, start)
	if err != nil {
		st.logger.Warn("fix_fingers: lookup failed", logger.F("row", i), logger.F("err", err.Error()))
		return false
	}
	st.fingerTable.Set(i, succ)
	return true
}

// buildSuccessorList walks forward from the current successor, asking each
// hop for its own successor, collecting up to SuccessorListSize live
// addresses. It stops at the first failure, keeping whatever prefix it
// gathered, and then runs HandleFailure.
func (st *State) buildSuccessorList(ctx context.Context) {
	size := st.cfg.SuccessorListSize
	if size <= 0 {
		size = 1
	}
	list := make([]fingertable.Peer, 0, size)
	cur := st.Successor()
	list = append(list, cur)

	for len(list) < size {
		if cur.Addr == st.self.Addr {
			break
		}
		next, err := st.transport.Successor(ctx, cur.Addr)
		if err != nil {
			st.logger.Warn("build_successor_list: hop failed", logger.FAddr("addr", cur.Addr), logger.F("err", err.Error()))
			st.SetSuccessorList(list)
			st.HandleFailure(ctx)
			return
		}
		if next.Addr == st.self.Addr {
			break
		}
		list = append(list, next)
		cur = next
	}
	st.SetSuccessorList(list)
}
