package fingertable

import (
	"testing"

	"ChordRing/internal/ring"
)

func mustSpace(t *testing.T, bits uint8) ring.Space {
	t.Helper()
	sp, err := ring.NewSpace(bits)
	if err != nil {
		t.Fatalf("NewSpace(%d): %v", bits, err)
	}
	return sp
}

func TestNewPopulatesStartValues(t *testing.T) {
	sp := mustSpace(t, 6)
	self := Peer{ID: 10, Addr: "10.0.0.1:8000"}
	tbl := New(self, sp)
	if tbl.Len() != 6 {
		t.Fatalf("expected 6 rows, got %d", tbl.Len())
	}
	want := []ring.ID{11, 12, 14, 18, 26, 42}
	for i, w := range want {
		if got := tbl.Start(i); got != w {
			t.Errorf("Start(%d) = %d, want %d", i, got, w)
		}
	}
}

func TestGetSetRoundtrip(t *testing.T) {
	sp := mustSpace(t, 6)
	self := Peer{ID: 10, Addr: "10.0.0.1:8000"}
	tbl := New(self, sp)
	if got := tbl.Get(2); got != nil {
		t.Fatalf("expected nil before Set, got %v", got)
	}
	tbl.Set(2, Peer{ID: 20, Addr: "10.0.0.2:8000"})
	got := tbl.Get(2)
	if got == nil || got.ID != 20 || got.Addr != "10.0.0.2:8000" {
		t.Fatalf("Get(2) = %+v, want ID=20 addr=10.0.0.2:8000", got)
	}
}

func TestClosestPrecedingFingerFallsBackToSelf(t *testing.T) {
	sp := mustSpace(t, 6)
	self := Peer{ID: 10, Addr: "10.0.0.1:8000"}
	tbl := New(self, sp)
	got := tbl.ClosestPrecedingFinger(50)
	if got.ID != self.ID {
		t.Fatalf("expected fallback to self, got %+v", got)
	}
}

func TestClosestPrecedingFingerPicksHighestQualifyingRow(t *testing.T) {
	sp := mustSpace(t, 6)
	self := Peer{ID: 0, Addr: "10.0.0.1:8000"}
	tbl := New(self, sp)
	// target = 40. Fingers at starts 1,2,4,8,16,32.
	tbl.Set(0, Peer{ID: 5, Addr: "a"})
	tbl.Set(1, Peer{ID: 10, Addr: "b"})
	tbl.Set(2, Peer{ID: 20, Addr: "c"})
	tbl.Set(3, Peer{ID: 30, Addr: "d"})
	tbl.Set(4, Peer{ID: 35, Addr: "e"}) // closest preceding 40
	tbl.Set(5, Peer{ID: 45, Addr: "f"}) // past target, must be skipped

	got := tbl.ClosestPrecedingFinger(40)
	if got.Addr != "e" {
		t.Fatalf("ClosestPrecedingFinger(40) = %+v, want finger e (id=35)", got)
	}
}
