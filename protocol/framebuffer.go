package protocol

// Color is one pixel: three 8-bit channels, no alpha.
type Color struct {
	R, G, B uint8
}

// FrameBuffer holds one Color per physical slot at the maximum topology.
// It is written exclusively from the main execution context.
type FrameBuffer struct {
	px [MaxPixels]Color
}

// Set overwrites the pixel at slot. Slots outside capacity are ignored;
// callers derive slots from PhysicalSlot which already stays in bounds.
func (f *FrameBuffer) Set(slot int, c Color) {
	if slot >= 0 && slot < MaxPixels {
		f.px[slot] = c
	}
}

// At returns the pixel at slot, or black when out of capacity.
func (f *FrameBuffer) At(slot int) Color {
	if slot < 0 || slot >= MaxPixels {
		return Color{}
	}
	return f.px[slot]
}

// Clear zeroes every slot, active or not.
func (f *FrameBuffer) Clear() {
	for i := range f.px {
		f.px[i] = Color{}
	}
}

// Slots exposes the backing storage for output drivers. Drivers must treat
// it as read-only.
func (f *FrameBuffer) Slots() []Color {
	return f.px[:]
}
