package peerclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"ChordRing/internal/ring"
)

func testSpace(t *testing.T) ring.Space {
	t.Helper()
	sp, err := ring.NewSpace(6)
	if err != nil {
		t.Fatalf("NewSpace: %v", err)
	}
	return sp
}

func TestSuccessorParsesPlainTextBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/successor/" || r.Method != http.MethodGet {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte("10.0.0.9:8000"))
	}))
	defer srv.Close()
	addr := strings.TrimPrefix(srv.URL, "http://")

	c := New(testSpace(t), time.Second, time.Second)
	peer, err := c.Successor(context.Background(), addr)
	if err != nil {
		t.Fatalf("Successor: %v", err)
	}
	if peer.Addr != "10.0.0.9:8000" {
		t.Errorf("Successor addr = %s, want 10.0.0.9:8000", peer.Addr)
	}
}

func TestNon200SurfacesAsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()
	addr := strings.TrimPrefix(srv.URL, "http://")

	c := New(testSpace(t), time.Second, time.Second)
	if _, err := c.Successor(context.Background(), addr); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestIsAliveFalseOnUnreachable(t *testing.T) {
	c := New(testSpace(t), time.Second, 50*time.Millisecond)
	if c.IsAlive(context.Background(), "127.0.0.1:1") {
		t.Error("expected IsAlive = false for an unreachable address")
	}
}

func TestNotifySendsFormEncodedPeerAddr(t *testing.T) {
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotForm = r.Form
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	addr := strings.TrimPrefix(srv.URL, "http://")

	c := New(testSpace(t), time.Second, time.Second)
	self := c.peerOf("1.2.3.4:8000")
	if err := c.Notify(context.Background(), addr, self); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if gotForm.Get("n") != "1.2.3.4:8000" {
		t.Errorf("form field n = %q, want 1.2.3.4:8000", gotForm.Get("n"))
	}
}

func TestContainsKeyParsesBooleanBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("true"))
	}))
	defer srv.Close()
	addr := strings.TrimPrefix(srv.URL, "http://")

	c := New(testSpace(t), time.Second, time.Second)
	found, err := c.ContainsKey(context.Background(), addr, "hello")
	if err != nil {
		t.Fatalf("ContainsKey: %v", err)
	}
	if !found {
		t.Error("expected ContainsKey = true")
	}
}
