package protocol

import (
	"errors"
	"testing"
	"time"
)

// fakeDriver records the engine's calls into the output collaborator.
type fakeDriver struct {
	renders    int
	brightness uint8
	lastLayout Layout
	lastFrame  []Color
	renderWait time.Duration
	err        error
}

func (d *fakeDriver) SetBrightness(level uint8) { d.brightness = level }

func (d *fakeDriver) Render(frame []Color, layout Layout) error {
	d.renders++
	d.lastLayout = layout
	d.lastFrame = append(d.lastFrame[:0], frame...)
	if d.renderWait > 0 {
		time.Sleep(d.renderWait)
	}
	return d.err
}

type fakeLED struct {
	on      bool
	toggles int
}

func (l *fakeLED) Toggle() {
	l.on = !l.on
	l.toggles++
}

func newTestEngine() (*Engine, *fakeDriver, *fakeLED, *Stats) {
	drv := &fakeDriver{}
	led := &fakeLED{}
	stats := &Stats{}
	return NewEngine(drv, led, stats), drv, led, stats
}

func TestEmptyTransactionIgnored(t *testing.T) {
	eng, drv, _, stats := newTestEngine()
	eng.Process(nil)
	eng.Process([]byte{})
	s := stats.Snapshot()
	if s.Packets != 0 || s.Malformed != 0 || drv.renders != 0 {
		t.Errorf("empty transaction moved state: %+v renders=%d", s, drv.renders)
	}
}

func TestPingTogglesStatus(t *testing.T) {
	eng, drv, led, stats := newTestEngine()

	eng.Process(EncodePing())
	if !led.on {
		t.Error("first PING should turn the indicator on")
	}
	eng.Process(EncodePing())
	if led.on {
		t.Error("second PING should turn the indicator back off")
	}

	s := stats.Snapshot()
	if s.Packets != 2 {
		t.Errorf("packet counter = %d, want 2", s.Packets)
	}
	if drv.renders != 0 {
		t.Errorf("PING rendered %d times, want 0", drv.renders)
	}
	for slot := 0; slot < MaxPixels; slot++ {
		if eng.Frame().At(slot) != (Color{}) {
			t.Fatalf("PING touched frame buffer slot %d", slot)
		}
	}
}

func TestSetPixelAndReadBack(t *testing.T) {
	eng, _, _, _ := newTestEngine()
	eng.Process(EncodeConfig(2, 4))

	eng.Process(EncodeSetPixel(5, Color{R: 10, G: 20, B: 30}))

	// logical 5 decodes to strip 1, offset 1
	slot := 1*MaxLedsPerStrip + 1
	if got := eng.Frame().At(slot); got != (Color{R: 10, G: 20, B: 30}) {
		t.Errorf("slot %d = %+v, want {10 20 30}", slot, got)
	}
	if got := eng.PixelAt(5); got != (Color{R: 10, G: 20, B: 30}) {
		t.Errorf("PixelAt(5) = %+v, want {10 20 30}", got)
	}
}

func TestSetPixelOutOfRangeSkipped(t *testing.T) {
	eng, _, _, stats := newTestEngine()
	eng.Process(EncodeConfig(2, 4))

	eng.Process(EncodeSetPixel(8, Color{R: 1, G: 2, B: 3}))

	for slot := 0; slot < MaxPixels; slot++ {
		if eng.Frame().At(slot) != (Color{}) {
			t.Fatalf("out-of-range SET_PIXEL wrote slot %d", slot)
		}
	}
	if s := stats.Snapshot(); s.Malformed != 0 {
		t.Errorf("out-of-range index is skipped, not malformed; counter = %d", s.Malformed)
	}
}

func TestShortPacketDroppedAndCounted(t *testing.T) {
	eng, drv, _, stats := newTestEngine()

	eng.Process([]byte{OpSetPixel}) // minimum is 6

	if drv.renders != 0 {
		t.Error("short packet must not render")
	}
	for slot := 0; slot < MaxPixels; slot++ {
		if eng.Frame().At(slot) != (Color{}) {
			t.Fatalf("short packet wrote slot %d", slot)
		}
	}
	s := stats.Snapshot()
	if s.Malformed != 1 {
		t.Errorf("malformed counter = %d, want exactly 1", s.Malformed)
	}
}

func TestBrightnessForwarded(t *testing.T) {
	eng, drv, _, stats := newTestEngine()
	eng.Process(EncodeSetBrightness(200))
	if drv.brightness != 200 {
		t.Errorf("brightness = %d, want 200", drv.brightness)
	}
	if s := stats.Snapshot(); s.Malformed != 0 {
		t.Errorf("malformed = %d, want 0", s.Malformed)
	}
	eng.Process([]byte{OpSetBrightness})
	if s := stats.Snapshot(); s.Malformed != 1 {
		t.Errorf("malformed = %d after short packet, want 1", s.Malformed)
	}
}

func TestClearIdempotent(t *testing.T) {
	eng, drv, _, _ := newTestEngine()
	eng.Process(EncodeSetPixel(0, Color{R: 9, G: 9, B: 9}))

	eng.Process(EncodeClear())
	first := append([]Color(nil), drv.lastFrame...)

	eng.Process(EncodeClear())
	for i, c := range drv.lastFrame {
		if c != first[i] {
			t.Fatalf("second CLEAR changed slot %d: %+v != %+v", i, c, first[i])
		}
		if c != (Color{}) {
			t.Fatalf("CLEAR left slot %d at %+v", i, c)
		}
	}
	if drv.renders != 2 {
		t.Errorf("renders = %d, want 2", drv.renders)
	}
}

func TestSetRangeClampsCount(t *testing.T) {
	eng, _, _, _ := newTestEngine()
	eng.Process(EncodeConfig(2, 4)) // total 8

	colors := make([]Color, 5)
	for i := range colors {
		colors[i] = Color{R: uint8(i + 1)}
	}
	pkt, err := EncodeSetRange(6, colors) // 6+5 > 8, only 2 fit
	if err != nil {
		t.Fatal(err)
	}
	eng.Process(pkt)

	if got := eng.PixelAt(6); got != (Color{R: 1}) {
		t.Errorf("pixel 6 = %+v, want {1 0 0}", got)
	}
	if got := eng.PixelAt(7); got != (Color{R: 2}) {
		t.Errorf("pixel 7 = %+v, want {2 0 0}", got)
	}
	// nothing at or beyond total_leds may be touched
	layout := eng.Layout()
	for slot := 0; slot < MaxPixels; slot++ {
		if slot == layout.PhysicalSlot(6) || slot == layout.PhysicalSlot(7) {
			continue
		}
		if eng.Frame().At(slot) != (Color{}) {
			t.Fatalf("clamped SET_RANGE wrote slot %d", slot)
		}
	}
}

func TestSetRangeStartBeyondTotal(t *testing.T) {
	eng, _, _, stats := newTestEngine()
	eng.Process(EncodeConfig(2, 4))

	pkt, err := EncodeSetRange(8, []Color{{R: 1}})
	if err != nil {
		t.Fatal(err)
	}
	eng.Process(pkt)

	for slot := 0; slot < MaxPixels; slot++ {
		if eng.Frame().At(slot) != (Color{}) {
			t.Fatalf("SET_RANGE past total wrote slot %d", slot)
		}
	}
	if s := stats.Snapshot(); s.Malformed != 0 {
		t.Errorf("start past total is a no-op, not malformed; counter = %d", s.Malformed)
	}
}

func TestSetAllRoundTrip(t *testing.T) {
	eng, _, _, _ := newTestEngine()
	eng.Process(EncodeConfig(3, 10))

	total := eng.Layout().Total()
	colors := make([]Color, total)
	for i := range colors {
		colors[i] = Color{R: uint8(i), G: uint8(i * 2), B: uint8(255 - i)}
	}
	pkt, err := EncodeSetAll(colors)
	if err != nil {
		t.Fatal(err)
	}
	eng.Process(pkt)

	for logical := 0; logical < total; logical++ {
		if got := eng.PixelAt(logical); got != colors[logical] {
			t.Fatalf("pixel %d = %+v, want %+v", logical, got, colors[logical])
		}
	}
}

func TestSetAllShortDropped(t *testing.T) {
	eng, drv, _, stats := newTestEngine()
	eng.Process(EncodeConfig(3, 10))
	rendersBefore := drv.renders

	eng.Process([]byte{OpSetAll, 1, 2, 3}) // needs 1+30*3 bytes

	if drv.renders != rendersBefore {
		t.Error("short SET_ALL must not render")
	}
	if s := stats.Snapshot(); s.Malformed != 1 {
		t.Errorf("malformed = %d, want 1", s.Malformed)
	}
}

func TestConfigRejectsInvalid(t *testing.T) {
	eng, _, _, stats := newTestEngine()
	before := eng.Layout()

	eng.Process(EncodeConfig(0, 10))
	if eng.Layout() != before {
		t.Error("CONFIG strips=0 must leave the layout unchanged")
	}
	eng.Process(EncodeConfig(MaxStrips+1, 10))
	eng.Process(EncodeConfig(2, MaxLedsPerStrip+1))
	if eng.Layout() != before {
		t.Error("invalid CONFIG must leave the layout unchanged")
	}
	if s := stats.Snapshot(); s.ConfigRejects != 3 {
		t.Errorf("config rejects = %d, want 3", s.ConfigRejects)
	}
}

func TestConfigZeroesFrameAndRenders(t *testing.T) {
	eng, drv, _, _ := newTestEngine()
	eng.Process(EncodeSetPixel(0, Color{R: 1, G: 1, B: 1}))

	eng.Process(EncodeConfig(3, 10))

	if got := eng.Layout(); got != (Layout{Strips: 3, LedsPerStrip: 10}) {
		t.Errorf("layout = %+v", got)
	}
	for slot := 0; slot < MaxPixels; slot++ {
		if eng.Frame().At(slot) != (Color{}) {
			t.Fatalf("CONFIG left slot %d set", slot)
		}
	}
	if drv.renders != 1 {
		t.Errorf("renders = %d, want 1", drv.renders)
	}
}

func TestConfigDebugFlag(t *testing.T) {
	eng, _, _, _ := newTestEngine()
	if eng.Debugging() {
		t.Fatal("debug must default off")
	}
	eng.Process(EncodeConfigDebug(2, 4, true))
	if !eng.Debugging() {
		t.Error("debug flag byte should enable debugging")
	}
	eng.Process(EncodeConfigDebug(2, 4, false))
	if eng.Debugging() {
		t.Error("debug flag byte should disable debugging")
	}
}

// CONFIG then SET_ALL then SHOW: only SHOW moves the frame counter, every
// logical pixel reads back, and the render duration was recorded.
func TestConfigSetAllShowScenario(t *testing.T) {
	eng, drv, _, stats := newTestEngine()
	drv.renderWait = 200 * time.Microsecond

	eng.Process(EncodeConfig(3, 10))
	framesBefore := stats.Snapshot().Frames

	colors := make([]Color, 30)
	pkt, err := EncodeSetAll(colors)
	if err != nil {
		t.Fatal(err)
	}
	eng.Process(pkt)
	eng.Process(EncodeShow())

	s := stats.Snapshot()
	if s.Frames != framesBefore+1 {
		t.Errorf("frames = %d, want %d", s.Frames, framesBefore+1)
	}
	for logical := 0; logical < 30; logical++ {
		if eng.PixelAt(logical) != (Color{}) {
			t.Fatalf("pixel %d not black", logical)
		}
	}
	if s.LastRenderMicros < 100 {
		t.Errorf("last render duration = %dus, want the driver's wait recorded", s.LastRenderMicros)
	}
}

func TestUnknownOpcodeCountedAndIgnored(t *testing.T) {
	eng, drv, _, stats := newTestEngine()
	eng.Process([]byte{0x42, 1, 2, 3})
	s := stats.Snapshot()
	if s.UnknownOps != 1 {
		t.Errorf("unknown ops = %d, want 1", s.UnknownOps)
	}
	if s.Malformed != 0 || drv.renders != 0 {
		t.Errorf("unknown opcode must be ignored: %+v renders=%d", s, drv.renders)
	}
}

func TestZeroPayloadHeuristic(t *testing.T) {
	eng, _, _, stats := newTestEngine()

	eng.Process(EncodeSetPixel(0, Color{})) // payload ORs to zero
	if s := stats.Snapshot(); s.ZeroPayload != 1 {
		t.Errorf("zero payload = %d, want 1", s.ZeroPayload)
	}

	eng.Process(EncodeSetPixel(0, Color{R: 1}))
	if s := stats.Snapshot(); s.ZeroPayload != 1 {
		t.Errorf("zero payload = %d after non-zero payload, want 1", s.ZeroPayload)
	}

	// opcode-only packets carry no payload and are never flagged
	eng.Process(EncodePing())
	if s := stats.Snapshot(); s.ZeroPayload != 1 {
		t.Errorf("zero payload = %d after PING, want 1", s.ZeroPayload)
	}

	// the heuristic never changes command handling
	if got := eng.PixelAt(0); got != (Color{R: 1}) {
		t.Errorf("pixel 0 = %+v, want {1 0 0}", got)
	}
}

func TestRenderErrorCounted(t *testing.T) {
	eng, drv, _, stats := newTestEngine()
	drv.err = errors.New("strip backend failure")
	eng.Process(EncodeShow())
	if s := stats.Snapshot(); s.RenderErrors != 1 {
		t.Errorf("render errors = %d, want 1", s.RenderErrors)
	}
}
