package node

import (
	"context"

	"ChordRing/internal/logger"
	"ChordRing/internal/ring"
)

// Insert stores key in the DHT, returning the identifier of the node that
// now owns it. If this node is the owner, the key is replicated to every
// address currently in the successor list.
func (st *State) Insert(ctx context.Context, key string) (ring.ID, error) {
	owner, err := st.FindSuccessor(ctx, st.space.HashID(key))
	if err != nil {
		st.HandleFailure(ctx)
		return 0, err
	}

	if owner.Addr == st.self.Addr {
		st.ownedKeys.add(key)
		st.replicateKey(ctx, key)
		return st.self.ID, nil
	}

	ownerID, err := st.transport.InsertKey(ctx, owner.Addr, key)
	if err != nil {
		st.HandleFailure(ctx)
		return 0, err
	}
	return ownerID, nil
}

// replicateKey best-effort propagates key to every node in the successor
// list, logging but not failing the caller's Insert on a dead replica.
func (st *State) replicateKey(ctx context.Context, key string) {
	for _, peer := range st.SuccessorList() {
		if peer.Addr == st.self.Addr {
			continue
		}
		if err := st.transport.InsertReplica(ctx, peer.Addr, key); err != nil {
			st.logger.Warn("insert: replica propagation failed",
				logger.FAddr("addr", peer.Addr), logger.F("key", key), logger.F("err", err.Error()))
		}
	}
}

// Contains reports whether key is stored in the DHT, forwarding to its
// owner when this node does not currently own it. A hit served from the
// replica set is logged as a warning: it signals this node became the new
// owner after churn and the key has not yet been promoted (open question,
// SPEC_FULL.md §9).
func (st *State) Contains(ctx context.Context, key string) (bool, error) {
	owner, err := st.FindSuccessor(ctx, st.space.HashID(key))
	if err != nil {
		st.HandleFailure(ctx)
		return false, err
	}

	if owner.Addr == st.self.Addr {
		if st.ownedKeys.has(key) {
			return true, nil
		}
		if st.replicaKeys.has(key) {
			st.logger.Warn("contains: hit via replica set, key not yet promoted", logger.F("key", key))
			return true, nil
		}
		return false, nil
	}

	found, err := st.transport.ContainsKey(ctx, owner.Addr, key)
	if err != nil {
		st.HandleFailure(ctx)
		return false, err
	}
	return found, nil
}

// InsertReplica stores key as a replica on behalf of some predecessor along
// the ring, as requested by that node's replicateKey fan-out.
func (st *State) InsertReplica(key string) {
	st.replicaKeys.add(key)
}
