package node

import (
	"context"

	"ChordRing/internal/fingertable"
	"ChordRing/internal/logger"
)

// IsAlive probes addr with a short liveness check.
func (st *State) IsAlive(ctx context.Context, addr string) bool {
	return st.transport.IsAlive(ctx, addr)
}

// HandleFailure repairs the successor and predecessor pointers after an
// outbound RPC has failed somewhere in the caller's call chain. It never
// retries the failing operation itself; repair is the only job here
// (SPEC_FULL.md §9, §4.8).
func (st *State) HandleFailure(ctx context.Context) {
	st.repairSuccessor(ctx)
	st.repairPredecessor(ctx)
}

// repairSuccessor probes the current successor; if dead, it promotes the
// first live address from the successor list, notifying it of self.
// Falls back to self when no candidate is alive.
func (st *State) repairSuccessor(ctx context.Context) {
	succ := st.Successor()
	if succ.Addr == st.self.Addr || st.transport.IsAlive(ctx, succ.Addr) {
		return
	}

	st.logger.Warn("handle_failure: successor unresponsive", logger.FAddr("addr", succ.Addr))

	list := st.SuccessorList()
	for _, candidate := range list {
		if candidate.Addr == succ.Addr {
			continue
		}
		if candidate.Addr == st.self.Addr || st.transport.IsAlive(ctx, candidate.Addr) {
			st.SetSuccessor(candidate)
			if candidate.Addr != st.self.Addr {
				if err := st.transport.Notify(ctx, candidate.Addr, st.self); err != nil {
					st.logger.Warn("handle_failure: notify new successor failed",
						logger.FAddr("addr", candidate.Addr), logger.F("err", err.Error()))
				}
			}
			return
		}
	}

	st.logger.Warn("handle_failure: no live successor candidate, falling back to self")
	st.SetSuccessor(st.self)
	st.SetSuccessorList([]fingertable.Peer{st.self})
}

// repairPredecessor probes the current predecessor; if dead, the
// predecessor is reset to unknown (self).
func (st *State) repairPredecessor(ctx context.Context) {
	pred := st.Predecessor()
	if pred.Addr == st.self.Addr {
		return
	}
	if !st.transport.IsAlive(ctx, pred.Addr) {
		st.logger.Warn("handle_failure: predecessor unresponsive, resetting", logger.FAddr("addr", pred.Addr))
		st.ResetPredecessor()
	}
}
