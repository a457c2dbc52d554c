package protocol

import "sync/atomic"

// Stats holds the monotonic diagnostics counters. The receiver increments
// the edge counters from interrupt context and the engine increments the
// rest from the main loop, so every field is accessed atomically. Counters
// are never reset during normal operation; 32-bit rollover is acceptable.
type Stats struct {
	packets     uint32
	frames      uint32
	selectEdges uint32
	clockEdges  uint32
	dataEdges   uint32

	zeroPayload   uint32
	malformed     uint32
	unknownOps    uint32
	configRejects uint32
	renderErrors  uint32

	lastRenderMicros uint32
}

func (s *Stats) AddPacket()       { atomic.AddUint32(&s.packets, 1) }
func (s *Stats) AddFrame()        { atomic.AddUint32(&s.frames, 1) }
func (s *Stats) AddSelectEdge()   { atomic.AddUint32(&s.selectEdges, 1) }
func (s *Stats) AddClockEdge()    { atomic.AddUint32(&s.clockEdges, 1) }
func (s *Stats) AddDataEdge()     { atomic.AddUint32(&s.dataEdges, 1) }
func (s *Stats) AddZeroPayload()  { atomic.AddUint32(&s.zeroPayload, 1) }
func (s *Stats) AddMalformed()    { atomic.AddUint32(&s.malformed, 1) }
func (s *Stats) AddUnknownOp()    { atomic.AddUint32(&s.unknownOps, 1) }
func (s *Stats) AddConfigReject() { atomic.AddUint32(&s.configRejects, 1) }
func (s *Stats) AddRenderError()  { atomic.AddUint32(&s.renderErrors, 1) }

// SetRenderMicros records the duration of the most recent render call.
func (s *Stats) SetRenderMicros(us uint32) {
	atomic.StoreUint32(&s.lastRenderMicros, us)
}

// Snapshot is a consistent-enough copy of the counters for the reporting
// path. Fields are sampled individually; the reporting cadence is seconds,
// so cross-field skew does not matter.
type Snapshot struct {
	Packets     uint32
	Frames      uint32
	SelectEdges uint32
	ClockEdges  uint32
	DataEdges   uint32

	ZeroPayload   uint32
	Malformed     uint32
	UnknownOps    uint32
	ConfigRejects uint32
	RenderErrors  uint32

	LastRenderMicros uint32
}

// Snapshot samples every counter.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Packets:     atomic.LoadUint32(&s.packets),
		Frames:      atomic.LoadUint32(&s.frames),
		SelectEdges: atomic.LoadUint32(&s.selectEdges),
		ClockEdges:  atomic.LoadUint32(&s.clockEdges),
		DataEdges:   atomic.LoadUint32(&s.dataEdges),

		ZeroPayload:   atomic.LoadUint32(&s.zeroPayload),
		Malformed:     atomic.LoadUint32(&s.malformed),
		UnknownOps:    atomic.LoadUint32(&s.unknownOps),
		ConfigRejects: atomic.LoadUint32(&s.configRejects),
		RenderErrors:  atomic.LoadUint32(&s.renderErrors),

		LastRenderMicros: atomic.LoadUint32(&s.lastRenderMicros),
	}
}
