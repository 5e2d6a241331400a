package ring

import "testing"

func TestNewSpaceRejectsInvalidBits(t *testing.T) {
	if _, err := NewSpace(0); err == nil {
		t.Errorf("expected error for bits=0")
	}
	if _, err := NewSpace(65); err == nil {
		t.Errorf("expected error for bits=65")
	}
}

func TestAddPow2WrapsModM(t *testing.T) {
	sp := mustSpace(t, 6) // M = 64
	if got := sp.AddPow2(63, 0); got != 0 {
		t.Errorf("AddPow2(63,0) = %d, want 0", got)
	}
	if got := sp.AddPow2(10, 3); got != 18 {
		t.Errorf("AddPow2(10,3) = %d, want 18", got)
	}
}

func TestHashIDIsDeterministicAndInRange(t *testing.T) {
	sp := mustSpace(t, 6)
	a := sp.HashID("127.0.0.1:8000")
	b := sp.HashID("127.0.0.1:8000")
	if a != b {
		t.Errorf("HashID not deterministic: %d != %d", a, b)
	}
	if uint64(a) >= sp.M() {
		t.Errorf("HashID out of range: %d >= %d", a, sp.M())
	}
}

func TestSubModularDistance(t *testing.T) {
	sp := mustSpace(t, 6)
	if got := sp.Sub(5, 60); got != 9 { // wraps: 60 -> 63 -> 0 -> 5 is 9 steps
		t.Errorf("Sub(5,60) = %d, want 9", got)
	}
	if got := sp.Sub(5, 5); got != 0 {
		t.Errorf("Sub(5,5) = %d, want 0", got)
	}
}
