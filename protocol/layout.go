package protocol

// Layout is the active output topology. It is owned by the Engine and only
// replaced by a valid CONFIG command; everything else reads it.
type Layout struct {
	Strips       uint8
	LedsPerStrip uint16
}

// DefaultLayout is the power-on topology.
func DefaultLayout() Layout {
	return Layout{Strips: DefaultStrips, LedsPerStrip: DefaultLedsPerStrip}
}

// Valid reports whether the layout satisfies the topology invariants.
func (l Layout) Valid() bool {
	return l.Strips >= 1 && l.Strips <= MaxStrips &&
		l.LedsPerStrip >= 1 && l.LedsPerStrip <= MaxLedsPerStrip
}

// Total returns the number of logically addressable pixels.
func (l Layout) Total() int {
	return int(l.Strips) * int(l.LedsPerStrip)
}

// PhysicalSlot maps a logical pixel index to its frame-buffer slot. The
// buffer is laid out per strip at maximum length, so the slot is
// strip*MaxLedsPerStrip+offset. An index whose derived strip exceeds the
// layout clamps to the last valid (strip, offset) pair: the function is
// total and never rejects, so a topology shrink mid-operation cannot write
// out of bounds.
func (l Layout) PhysicalSlot(logical int) int {
	strip := logical / int(l.LedsPerStrip)
	offset := logical % int(l.LedsPerStrip)
	if strip >= int(l.Strips) {
		strip = int(l.Strips) - 1
		offset = int(l.LedsPerStrip) - 1
	}
	return strip*MaxLedsPerStrip + offset
}
