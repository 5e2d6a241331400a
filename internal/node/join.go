package node

import (
	"context"
	"fmt"

	"ChordRing/internal/fingertable"
	"ChordRing/internal/logger"
)

// Join has this node enter an existing ring through introducer addr. It
// learns its immediate successor from the introducer, seeds finger_table[0]
// with it, leaves every other finger pointing at self (fix-fingers repairs
// them over time), and marks the predecessor unknown so the next inbound
// notify sets it. No eager key migration is performed (SPEC_FULL.md §9).
func (st *State) Join(ctx context.Context, introducer string) error {
	succ, err := st.transport.FindSuccessor(ctx, introducer, st.self.ID)
	if err != nil {
		return fmt.Errorf("join: find_successor on introducer %s: %w", introducer, err)
	}

	st.SetSuccessor(succ)
	st.SetSuccessorList([]fingertable.Peer{succ})
	st.ResetPredecessor()

	st.logger.Info("joined ring",
		logger.FAddr("introducer", introducer),
		logger.FAddr("successor", succ.Addr),
	)
	return nil
}
