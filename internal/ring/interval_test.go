package ring

import "testing"

func mustSpace(t *testing.T, bits uint8) Space {
	t.Helper()
	sp, err := NewSpace(bits)
	if err != nil {
		t.Fatalf("NewSpace(%d): %v", bits, err)
	}
	return sp
}

func TestIntervalOpenOpenWrapsWholeRingExceptEndpoint(t *testing.T) {
	sp := mustSpace(t, 6) // M = 64
	iv := sp.NewInterval(Open, 0, 0, Open)
	for x := ID(1); x < 64; x++ {
		if !iv.Contains(x) {
			t.Errorf("expected (0,0) open/open to contain %d", x)
		}
	}
	if iv.Contains(0) {
		t.Errorf("expected (0,0) open/open to exclude the endpoint 0")
	}
}

func TestIntervalClosedClosedSinglePoint(t *testing.T) {
	sp := mustSpace(t, 6)
	iv := sp.NewInterval(Closed, 5, 5, Closed)
	if !iv.Contains(5) {
		t.Errorf("expected [5,5] to contain 5")
	}
	for _, x := range []ID{0, 4, 6, 63} {
		if iv.Contains(x) {
			t.Errorf("expected [5,5] to exclude %d", x)
		}
	}
}

func TestIntervalBracketCombinations(t *testing.T) {
	sp := mustSpace(t, 6)
	tests := []struct {
		name       string
		lo, hi     Bracket
		v1, v2     ID
		in, out    []ID
	}{
		{
			name: "closed/closed linear", lo: Closed, hi: Closed, v1: 10, v2: 20,
			in:  []ID{10, 15, 20},
			out: []ID{9, 21},
		},
		{
			name: "open/closed linear", lo: Open, hi: Closed, v1: 10, v2: 20,
			in:  []ID{11, 20},
			out: []ID{10, 21},
		},
		{
			name: "closed/open linear", lo: Closed, hi: Open, v1: 10, v2: 20,
			in:  []ID{10, 19},
			out: []ID{20, 9},
		},
		{
			name: "open/open linear", lo: Open, hi: Open, v1: 10, v2: 20,
			in:  []ID{11, 19},
			out: []ID{10, 20},
		},
		{
			name: "closed/closed wraps", lo: Closed, hi: Closed, v1: 60, v2: 2,
			in:  []ID{60, 63, 0, 2},
			out: []ID{3, 59},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv := sp.NewInterval(tt.lo, tt.v1, tt.v2, tt.hi)
			for _, x := range tt.in {
				if !iv.Contains(x) {
					t.Errorf("%s: expected to contain %d", tt.name, x)
				}
			}
			for _, x := range tt.out {
				if iv.Contains(x) {
					t.Errorf("%s: expected to exclude %d", tt.name, x)
				}
			}
		})
	}
}

func TestIntervalIsO1NotAWalk(t *testing.T) {
	// A regression guard: Contains must not scale with the distance between
	// v1 and v2. We can't measure big-O directly in a unit test, but we can
	// pin the implementation to the closed-form distance computation by
	// checking a huge interval resolves in the same call shape as a tiny one.
	sp := mustSpace(t, 32)
	iv := sp.NewInterval(Closed, 0, ID(sp.mask), Closed)
	if !iv.Contains(ID(sp.mask / 2)) {
		t.Errorf("expected large interval to contain its midpoint")
	}
}
