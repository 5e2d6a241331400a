package node

import (
	"context"
	"fmt"

	"ChordRing/internal/fingertable"
	"ChordRing/internal/ring"
)

// FingerView is one row of the finger table as reported by GET /info.
type FingerView struct {
	Start         ring.ID `json:"start"`
	Interval      string  `json:"interval"`
	SuccessorID   ring.ID `json:"successor_id"`
	SuccessorAddr string  `json:"successor"`
}

// SuccessorView is one entry of the successor list as reported by
// GET /info: [addr, id].
type SuccessorView [2]any

// Info is the introspection document served at GET /info.
type Info struct {
	SelfAddr       string          `json:"self_ip"`
	SelfID         ring.ID         `json:"self_id"`
	Predecessor    string          `json:"predecessor"`
	PredecessorID  ring.ID         `json:"predecessor_id"`
	FingerTable    []FingerView    `json:"finger_table"`
	SuccessorList  []SuccessorView `json:"successor_list"`
	HashSet        []string        `json:"hash_set"`
}

// Info builds a snapshot of this node's routing and key-store state.
func (st *State) Info() Info {
	pred := st.Predecessor()

	rows := make([]FingerView, st.fingerTable.Len())
	for i := range rows {
		start := st.fingerTable.Start(i)
		// The last row's interval ends at self + 2^m mod M, i.e. at self.
		nextStart := st.self.ID
		if i+1 < len(rows) {
			nextStart = st.fingerTable.Start(i + 1)
		}
		succ := st.fingerTable.Get(i)
		var succID ring.ID
		var succAddr string
		if succ != nil {
			succID, succAddr = succ.ID, succ.Addr
		}
		rows[i] = FingerView{
			Start:         start,
			Interval:      fmt.Sprintf("[%d, %d)", start, nextStart),
			SuccessorID:   succID,
			SuccessorAddr: succAddr,
		}
	}

	succList := st.SuccessorList()
	svs := make([]SuccessorView, len(succList))
	for i, p := range succList {
		svs[i] = SuccessorView{p.Addr, p.ID}
	}

	return Info{
		SelfAddr:      st.self.Addr,
		SelfID:        st.self.ID,
		Predecessor:   pred.Addr,
		PredecessorID: pred.ID,
		FingerTable:   rows,
		SuccessorList: svs,
		HashSet:       append(st.OwnedKeys(), st.ReplicaKeys()...),
	}
}

// Hop is one step of the ring walk reported by GET /ring.
type Hop struct {
	From ring.ID `json:"from"`
	To   ring.ID `json:"to"`
}

// RingWalk follows successor pointers starting from this node until an
// identifier repeats, returning the ordered sequence of hops. It fails if
// any successor along the walk is unreachable.
func (st *State) RingWalk(ctx context.Context) ([]Hop, error) {
	visited := map[ring.ID]bool{st.self.ID: true}
	hops := make([]Hop, 0, st.fingerTable.Len())

	cur := st.self
	for {
		var next fingertable.Peer
		if cur.Addr == st.self.Addr {
			next = st.Successor()
		} else {
			p, err := st.transport.Successor(ctx, cur.Addr)
			if err != nil {
				return hops, fmt.Errorf("ring walk: successor of %s unreachable: %w", cur.Addr, err)
			}
			next = p
		}

		hops = append(hops, Hop{From: cur.ID, To: next.ID})
		if visited[next.ID] {
			break
		}
		visited[next.ID] = true
		cur = next
	}
	return hops, nil
}
