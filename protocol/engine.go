package protocol

import "time"

// OutputDriver is the strip backend the engine renders into. Render pushes
// the full frame buffer; implementations use the layout to walk the active
// slots. Calls are synchronous and bounded-latency.
type OutputDriver interface {
	SetBrightness(level uint8)
	Render(frame []Color, layout Layout) error
}

// StatusLED is toggled by PING as a pure liveness probe.
type StatusLED interface {
	Toggle()
}

// Engine owns the layout table and frame buffer and applies decoded
// commands to them. Process runs in the main execution context only; the
// interrupt side never touches engine state.
type Engine struct {
	layout Layout
	frame  FrameBuffer
	out    OutputDriver
	status StatusLED
	stats  *Stats
	debug  bool
}

// NewEngine returns an engine at the default topology with a zeroed frame
// buffer.
func NewEngine(out OutputDriver, status StatusLED, stats *Stats) *Engine {
	return &Engine{
		layout: DefaultLayout(),
		out:    out,
		status: status,
		stats:  stats,
	}
}

// Layout returns the active topology.
func (e *Engine) Layout() Layout { return e.layout }

// Stats returns the diagnostics counters.
func (e *Engine) Stats() *Stats { return e.stats }

// Debugging reports whether the CONFIG debug flag is set.
func (e *Engine) Debugging() bool { return e.debug }

// PixelAt reads back the pixel stored for a logical index under the active
// layout.
func (e *Engine) PixelAt(logical int) Color {
	return e.frame.At(e.layout.PhysicalSlot(logical))
}

// Frame exposes the frame buffer, mainly for output wiring and tests.
func (e *Engine) Frame() *FrameBuffer { return &e.frame }

// Process decodes and applies one completed transaction. A zero-length
// transaction is ignored. Process never fails: malformed or unknown input
// only moves diagnostics counters, and the device stays ready for the next
// transaction.
func (e *Engine) Process(packet []byte) {
	if len(packet) == 0 {
		return
	}
	e.stats.AddPacket()

	// Payload bytes that OR to zero usually mean a stuck or disconnected
	// data line. Flagged for diagnostics only; handling is unchanged.
	if len(packet) > 1 {
		var or byte
		for _, b := range packet[1:] {
			or |= b
		}
		if or == 0 {
			e.stats.AddZeroPayload()
		}
	}

	switch packet[0] {
	case OpPing:
		if e.status != nil {
			e.status.Toggle()
		}

	case OpSetPixel:
		if len(packet) < 6 {
			e.stats.AddMalformed()
			return
		}
		logical := int(packet[1])<<8 | int(packet[2])
		if logical < e.layout.Total() {
			e.frame.Set(e.layout.PhysicalSlot(logical), Color{R: packet[3], G: packet[4], B: packet[5]})
		}

	case OpSetBrightness:
		if len(packet) < 2 {
			e.stats.AddMalformed()
			return
		}
		if e.out != nil {
			e.out.SetBrightness(packet[1])
		}

	case OpShow:
		e.render(true)
		e.stats.AddFrame()

	case OpClear:
		e.frame.Clear()
		e.render(false)

	case OpSetRange:
		e.setRange(packet)

	case OpSetAll:
		e.setAll(packet)

	case OpConfig:
		e.configure(packet)

	default:
		e.stats.AddUnknownOp()
	}
}

func (e *Engine) setRange(packet []byte) {
	if len(packet) < 4 {
		e.stats.AddMalformed()
		return
	}
	total := e.layout.Total()
	start := int(packet[1])<<8 | int(packet[2])
	if start >= total {
		return
	}
	count := int(packet[3])
	if len(packet) < 4+count*3 {
		e.stats.AddMalformed()
		return
	}
	// Clamp so no logical index at or beyond total is written.
	if start+count > total {
		count = total - start
	}
	for i := 0; i < count; i++ {
		base := 4 + i*3
		e.frame.Set(e.layout.PhysicalSlot(start+i), Color{R: packet[base], G: packet[base+1], B: packet[base+2]})
	}
}

func (e *Engine) setAll(packet []byte) {
	total := e.layout.Total()
	if len(packet) < 1+total*3 {
		e.stats.AddMalformed()
		return
	}
	for logical := 0; logical < total; logical++ {
		base := 1 + logical*3
		e.frame.Set(e.layout.PhysicalSlot(logical), Color{R: packet[base], G: packet[base+1], B: packet[base+2]})
	}
	e.clearInactive()
	e.render(true)
}

func (e *Engine) configure(packet []byte) {
	if len(packet) < 4 {
		e.stats.AddMalformed()
		return
	}
	next := Layout{
		Strips:       packet[1],
		LedsPerStrip: uint16(packet[2])<<8 | uint16(packet[3]),
	}
	if !next.Valid() {
		e.stats.AddConfigReject()
		return
	}
	e.layout = next
	e.frame.Clear()
	e.render(false)
	if len(packet) >= 5 {
		e.debug = packet[4] != 0
	}
}

// clearInactive zeroes every physical slot outside the active topology:
// the tail of each active strip and all strips past the active count.
func (e *Engine) clearInactive() {
	for strip := 0; strip < int(e.layout.Strips); strip++ {
		for offset := int(e.layout.LedsPerStrip); offset < MaxLedsPerStrip; offset++ {
			e.frame.Set(strip*MaxLedsPerStrip+offset, Color{})
		}
	}
	for strip := int(e.layout.Strips); strip < MaxStrips; strip++ {
		for offset := 0; offset < MaxLedsPerStrip; offset++ {
			e.frame.Set(strip*MaxLedsPerStrip+offset, Color{})
		}
	}
}

// render pushes the frame buffer to the output driver. timed renders also
// record the call duration (SHOW and SET_ALL paths).
func (e *Engine) render(timed bool) {
	if e.out == nil {
		return
	}
	var err error
	if timed {
		start := time.Now()
		err = e.out.Render(e.frame.Slots(), e.layout)
		e.stats.SetRenderMicros(uint32(time.Since(start).Microseconds()))
	} else {
		err = e.out.Render(e.frame.Slots(), e.layout)
	}
	if err != nil {
		e.stats.AddRenderError()
	}
}
