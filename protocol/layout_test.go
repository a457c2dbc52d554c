package protocol

import "testing"

func TestLayoutValid(t *testing.T) {
	cases := []struct {
		strips uint8
		leds   uint16
		valid  bool
	}{
		{1, 1, true},
		{MaxStrips, MaxLedsPerStrip, true},
		{DefaultStrips, DefaultLedsPerStrip, true},
		{0, 10, false},
		{MaxStrips + 1, 10, false},
		{3, 0, false},
		{3, MaxLedsPerStrip + 1, false},
	}
	for _, c := range cases {
		l := Layout{Strips: c.strips, LedsPerStrip: c.leds}
		if l.Valid() != c.valid {
			t.Errorf("Layout{%d,%d}.Valid() = %v, want %v", c.strips, c.leds, l.Valid(), c.valid)
		}
	}
}

func TestLayoutTotal(t *testing.T) {
	l := Layout{Strips: 3, LedsPerStrip: 10}
	if l.Total() != 30 {
		t.Errorf("Total() = %d, want 30", l.Total())
	}
	if m := (Layout{Strips: MaxStrips, LedsPerStrip: MaxLedsPerStrip}).Total(); m != MaxPixels {
		t.Errorf("max layout Total() = %d, want %d", m, MaxPixels)
	}
}

// Every logical index of a valid layout must map to a unique slot within
// capacity.
func TestPhysicalSlotUniqueInCapacity(t *testing.T) {
	ledCounts := []uint16{1, 2, 3, 139, 140, MaxLedsPerStrip}
	for strips := uint8(1); strips <= MaxStrips; strips++ {
		for _, leds := range ledCounts {
			l := Layout{Strips: strips, LedsPerStrip: leds}
			seen := make(map[int]int, l.Total())
			for logical := 0; logical < l.Total(); logical++ {
				slot := l.PhysicalSlot(logical)
				if slot < 0 || slot >= MaxPixels {
					t.Fatalf("layout %dx%d: logical %d -> slot %d outside capacity", strips, leds, logical, slot)
				}
				if prev, dup := seen[slot]; dup {
					t.Fatalf("layout %dx%d: logical %d and %d both map to slot %d", strips, leds, prev, logical, slot)
				}
				seen[slot] = logical
			}
		}
	}
}

func TestPhysicalSlotStrideAndClamp(t *testing.T) {
	l := Layout{Strips: 2, LedsPerStrip: 4}

	// logical 5 is strip 1, offset 1
	want := 1*MaxLedsPerStrip + 1
	if got := l.PhysicalSlot(5); got != want {
		t.Errorf("PhysicalSlot(5) = %d, want %d", got, want)
	}

	// Out-of-range indices saturate to the last valid slot rather than
	// erroring.
	last := 1*MaxLedsPerStrip + 3
	for _, logical := range []int{8, 9, 1000} {
		if got := l.PhysicalSlot(logical); got != last {
			t.Errorf("PhysicalSlot(%d) = %d, want clamp to %d", logical, got, last)
		}
	}
}
