package node

import (
	"context"
	"errors"
	"testing"
	"time"

	"ChordRing/internal/fingertable"
	"ChordRing/internal/ring"
)

// fakeTransport routes PeerTransport calls directly into other in-process
// State values, standing in for the real HTTP peer client so these tests
// never open a socket.
type fakeTransport struct {
	registry map[string]*State
	dead     map[string]bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{registry: map[string]*State{}, dead: map[string]bool{}}
}

func (f *fakeTransport) lookup(addr string) (*State, error) {
	if f.dead[addr] {
		return nil, errors.New("fake transport: unreachable")
	}
	st, ok := f.registry[addr]
	if !ok {
		return nil, errors.New("fake transport: no such node")
	}
	return st, nil
}

func (f *fakeTransport) Successor(ctx context.Context, addr string) (fingertable.Peer, error) {
	st, err := f.lookup(addr)
	if err != nil {
		return fingertable.Peer{}, err
	}
	return st.Successor(), nil
}

func (f *fakeTransport) SetSuccessor(ctx context.Context, addr string, succ fingertable.Peer) error {
	st, err := f.lookup(addr)
	if err != nil {
		return err
	}
	st.SetSuccessor(succ)
	return nil
}

func (f *fakeTransport) FindSuccessor(ctx context.Context, addr string, id ring.ID) (fingertable.Peer, error) {
	st, err := f.lookup(addr)
	if err != nil {
		return fingertable.Peer{}, err
	}
	return st.FindSuccessor(ctx, id)
}

func (f *fakeTransport) ClosestPrecedingFinger(ctx context.Context, addr string, id ring.ID) (fingertable.Peer, error) {
	st, err := f.lookup(addr)
	if err != nil {
		return fingertable.Peer{}, err
	}
	return st.ClosestPrecedingFinger(id), nil
}

func (f *fakeTransport) Predecessor(ctx context.Context, addr string) (fingertable.Peer, error) {
	st, err := f.lookup(addr)
	if err != nil {
		return fingertable.Peer{}, err
	}
	return st.Predecessor(), nil
}

func (f *fakeTransport) SetPredecessor(ctx context.Context, addr string, pred fingertable.Peer) error {
	st, err := f.lookup(addr)
	if err != nil {
		return err
	}
	st.SetPredecessor(pred)
	return nil
}

func (f *fakeTransport) UpdateFingerTable(ctx context.Context, addr string, s fingertable.Peer, i int) error {
	st, err := f.lookup(addr)
	if err != nil {
		return err
	}
	return st.UpdateFingerTable(ctx, s, i)
}

func (f *fakeTransport) Notify(ctx context.Context, addr string, self fingertable.Peer) error {
	st, err := f.lookup(addr)
	if err != nil {
		return err
	}
	st.Notify(ctx, self)
	return nil
}

func (f *fakeTransport) InsertKey(ctx context.Context, addr string, key string) (ring.ID, error) {
	st, err := f.lookup(addr)
	if err != nil {
		return 0, err
	}
	return st.Insert(ctx, key)
}

func (f *fakeTransport) ContainsKey(ctx context.Context, addr string, key string) (bool, error) {
	st, err := f.lookup(addr)
	if err != nil {
		return false, err
	}
	return st.Contains(ctx, key)
}

func (f *fakeTransport) InsertReplica(ctx context.Context, addr string, key string) error {
	st, err := f.lookup(addr)
	if err != nil {
		return err
	}
	st.InsertReplica(key)
	return nil
}

func (f *fakeTransport) IsAlive(ctx context.Context, addr string) bool {
	if f.dead[addr] {
		return false
	}
	_, ok := f.registry[addr]
	return ok
}

func testConfig() Config {
	return Config{
		StabilizeInterval: 50 * time.Millisecond,
		LivenessTimeout:   10 * time.Millisecond,
		ReqTimeout:        20 * time.Millisecond,
		SuccessorListSize: 3,
	}
}

func mustSpace(t *testing.T, bits uint8) ring.Space {
	t.Helper()
	sp, err := ring.NewSpace(bits)
	if err != nil {
		t.Fatalf("NewSpace: %v", err)
	}
	return sp
}

func TestSoloRingFindSuccessorReturnsSelf(t *testing.T) {
	sp := mustSpace(t, 6)
	ft := newFakeTransport()
	a := New("a:8000", sp, testConfig(), ft)
	ft.registry[a.Self().Addr] = a

	got, err := a.FindSuccessor(context.Background(), sp.HashID("anything"))
	if err != nil {
		t.Fatalf("FindSuccessor: %v", err)
	}
	if got.Addr != a.Self().Addr {
		t.Errorf("FindSuccessor on solo ring = %s, want self %s", got.Addr, a.Self().Addr)
	}
}

func TestSoloRingInsertAndContains(t *testing.T) {
	sp := mustSpace(t, 6)
	ft := newFakeTransport()
	a := New("a:8000", sp, testConfig(), ft)
	ft.registry[a.Self().Addr] = a

	ctx := context.Background()
	ownerID, err := a.Insert(ctx, "hello")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if ownerID != a.Self().ID {
		t.Errorf("Insert owner = %d, want self id %d", ownerID, a.Self().ID)
	}
	found, err := a.Contains(ctx, "hello")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !found {
		t.Errorf("expected Contains(hello) = true after Insert")
	}
}

func TestTwoNodeJoinConverges(t *testing.T) {
	sp := mustSpace(t, 6)
	ft := newFakeTransport()
	cfg := testConfig()

	a := New("a:8000", sp, cfg, ft)
	ft.registry[a.Self().Addr] = a

	b := New("b:8000", sp, cfg, ft)
	ft.registry[b.Self().Addr] = b

	ctx := context.Background()
	if err := b.Join(ctx, a.Self().Addr); err != nil {
		t.Fatalf("Join: %v", err)
	}

	// Drive stabilization manually (no real ticker) until both pointers
	// converge into a two-node cycle.
	for i := 0; i < 10; i++ {
		a.stabilizeTick(ctx)
		b.stabilizeTick(ctx)
	}

	if a.Successor().Addr != b.Self().Addr {
		t.Errorf("a.successor = %s, want b", a.Successor().Addr)
	}
	if b.Successor().Addr != a.Self().Addr {
		t.Errorf("b.successor = %s, want a", b.Successor().Addr)
	}
	if a.Predecessor().Addr != b.Self().Addr {
		t.Errorf("a.predecessor = %s, want b", a.Predecessor().Addr)
	}
	if b.Predecessor().Addr != a.Self().Addr {
		t.Errorf("b.predecessor = %s, want a", b.Predecessor().Addr)
	}
}

func TestRoutedInsertForwardsToOwner(t *testing.T) {
	sp := mustSpace(t, 6)
	ft := newFakeTransport()
	cfg := testConfig()

	a := New("a:8000", sp, cfg, ft)
	ft.registry[a.Self().Addr] = a
	b := New("b:8000", sp, cfg, ft)
	ft.registry[b.Self().Addr] = b

	ctx := context.Background()
	if err := b.Join(ctx, a.Self().Addr); err != nil {
		t.Fatalf("Join: %v", err)
	}
	for i := 0; i < 10; i++ {
		a.stabilizeTick(ctx)
		b.stabilizeTick(ctx)
	}

	// Find a key whose id falls strictly in b's arc (pred(b), b].
	var key string
	for i := 0; i < 1000; i++ {
		candidate := ring.ID(i).String()
		id := sp.HashID(candidate)
		iv := sp.NewInterval(ring.Open, a.Self().ID, b.Self().ID, ring.Closed)
		if iv.Contains(id) {
			key = candidate
			break
		}
	}
	if key == "" {
		t.Fatal("could not find a key owned by b in 1000 tries")
	}

	ownerID, err := a.Insert(ctx, key)
	if err != nil {
		t.Fatalf("Insert via a: %v", err)
	}
	if ownerID != b.Self().ID {
		t.Errorf("owner id = %d, want b's id %d", ownerID, b.Self().ID)
	}

	found, err := a.Contains(ctx, key)
	if err != nil {
		t.Fatalf("Contains via a: %v", err)
	}
	if !found {
		t.Errorf("expected a.Contains(%q) = true after routed insert", key)
	}
}

func TestHandleFailureFallsBackWhenSuccessorDies(t *testing.T) {
	sp := mustSpace(t, 6)
	ft := newFakeTransport()
	cfg := testConfig()

	a := New("a:8000", sp, cfg, ft)
	ft.registry[a.Self().Addr] = a
	b := New("b:8000", sp, cfg, ft)
	ft.registry[b.Self().Addr] = b

	ctx := context.Background()
	if err := b.Join(ctx, a.Self().Addr); err != nil {
		t.Fatalf("Join: %v", err)
	}
	for i := 0; i < 10; i++ {
		a.stabilizeTick(ctx)
		b.stabilizeTick(ctx)
	}

	ft.dead[b.Self().Addr] = true
	a.HandleFailure(ctx)

	if a.Successor().Addr != a.Self().Addr {
		t.Errorf("a.successor after b's death = %s, want self (no other candidates)", a.Successor().Addr)
	}
}
