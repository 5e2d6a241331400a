package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"ChordRing/internal/fingertable"
	"ChordRing/internal/node"
	"ChordRing/internal/ring"
)

// soloTransport services a single solo-ring node; every call either targets
// that node or fails, which is all these handler tests need.
type soloTransport struct {
	self *node.State
}

func (t *soloTransport) match(addr string) bool { return addr == t.self.Self().Addr }

func (t *soloTransport) Successor(ctx context.Context, addr string) (fingertable.Peer, error) {
	if !t.match(addr) {
		return fingertable.Peer{}, errors.New("unknown peer")
	}
	return t.self.Successor(), nil
}
func (t *soloTransport) SetSuccessor(ctx context.Context, addr string, succ fingertable.Peer) error {
	return errors.New("not used")
}
func (t *soloTransport) FindSuccessor(ctx context.Context, addr string, id ring.ID) (fingertable.Peer, error) {
	if !t.match(addr) {
		return fingertable.Peer{}, errors.New("unknown peer")
	}
	return t.self.FindSuccessor(ctx, id)
}
func (t *soloTransport) ClosestPrecedingFinger(ctx context.Context, addr string, id ring.ID) (fingertable.Peer, error) {
	return t.self.ClosestPrecedingFinger(id), nil
}
func (t *soloTransport) Predecessor(ctx context.Context, addr string) (fingertable.Peer, error) {
	return t.self.Predecessor(), nil
}
func (t *soloTransport) SetPredecessor(ctx context.Context, addr string, pred fingertable.Peer) error {
	return errors.New("not used")
}
func (t *soloTransport) UpdateFingerTable(ctx context.Context, addr string, s fingertable.Peer, i int) error {
	return errors.New("not used")
}
func (t *soloTransport) Notify(ctx context.Context, addr string, self fingertable.Peer) error {
	return errors.New("not used")
}
func (t *soloTransport) InsertKey(ctx context.Context, addr string, key string) (ring.ID, error) {
	return 0, errors.New("not used")
}
func (t *soloTransport) ContainsKey(ctx context.Context, addr string, key string) (bool, error) {
	return false, errors.New("not used")
}
func (t *soloTransport) InsertReplica(ctx context.Context, addr string, key string) error {
	return errors.New("not used")
}
func (t *soloTransport) IsAlive(ctx context.Context, addr string) bool { return t.match(addr) }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	sp, err := ring.NewSpace(6)
	if err != nil {
		t.Fatalf("NewSpace: %v", err)
	}
	cfg := node.Config{
		StabilizeInterval: time.Second,
		LivenessTimeout:   time.Second,
		ReqTimeout:         time.Second,
		SuccessorListSize: 3,
	}
	tr := &soloTransport{}
	st := node.New("node-under-test:8000", sp, cfg, tr)
	tr.self = st

	srv := New(nil, st)
	return httptest.NewServer(srv.httpServer.Handler)
}

func TestGetSuccessorReturnsSelfOnSoloRing(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/successor/")
	if err != nil {
		t.Fatalf("GET /successor/: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := make([]byte, 64)
	n, _ := resp.Body.Read(body)
	if got := string(body[:n]); got != "node-under-test:8000" {
		t.Errorf("GET /successor/ body = %q, want node-under-test:8000", got)
	}
}

func TestInsertThenContainsRoundtrips(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/key/", "application/x-www-form-urlencoded", strings.NewReader(url.Values{"key": {"hello"}}.Encode()))
	if err != nil {
		t.Fatalf("POST /key/: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /key/ status = %d", resp.StatusCode)
	}

	resp2, err := http.Get(ts.URL + "/key/hello")
	if err != nil {
		t.Fatalf("GET /key/hello: %v", err)
	}
	defer resp2.Body.Close()
	body := make([]byte, 16)
	n, _ := resp2.Body.Read(body)
	if got := string(body[:n]); got != "true" {
		t.Errorf("GET /key/hello body = %q, want true", got)
	}
}

func TestGetSuccessorOfOutOfRangeIDIsBadRequest(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/successor/999999")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
