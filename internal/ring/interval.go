package ring

// Bracket marks whether an interval endpoint is inclusive (Closed) or
// exclusive (Open).
type Bracket int

const (
	Open Bracket = iota
	Closed
)

// Interval is a four-boundary circular interval ⟨b1, v1, v2, b2⟩ over a
// Space. Contains is O(1): it never walks the ring from v1 to v2.
type Interval struct {
	space  Space
	lo, hi Bracket
	v1, v2 ID
}

// NewInterval builds the interval ⟨lo, v1, v2, hi⟩ on sp.
func (sp Space) NewInterval(lo Bracket, v1, v2 ID, hi Bracket) Interval {
	return Interval{space: sp, lo: lo, hi: hi, v1: v1, v2: v2}
}

// Contains reports whether x lies on the forward arc from v1 to v2,
// honoring the bracket rules at each endpoint. See SPEC_FULL.md §4.1 for the
// reference semantics this mirrors.
func (iv Interval) Contains(x ID) bool {
	if iv.v1 == iv.v2 {
		if iv.lo == Closed && iv.hi == Closed {
			// [v,v]: the single point v, nothing else.
			return x == iv.v1
		}
		// (v,v] / [v,v) / (v,v): whole ring except the endpoint itself.
		return x != iv.v1
	}

	dTotal := iv.space.Sub(iv.v2, iv.v1)
	dX := iv.space.Sub(x, iv.v1)

	switch {
	case iv.lo == Closed && iv.hi == Closed:
		return dX <= dTotal
	case iv.lo == Open && iv.hi == Closed:
		return dX > 0 && dX <= dTotal
	case iv.lo == Closed && iv.hi == Open:
		return dX < dTotal || (dX == 0 && dTotal != 0)
	default: // open, open
		return dX > 0 && dX < dTotal
	}
}
