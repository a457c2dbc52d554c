package protocol

import (
	"sync/atomic"
	"time"
)

// Receiver yields completed select-framed transactions to the main loop.
// Poll blocks for at most the implementation's bounded wait and returns
// each transaction exactly once, in completion order.
type Receiver interface {
	Poll() (packet []byte, ok bool)
}

// BulkCapture is the platform primitive behind EdgeReceiver: a background
// transfer that lands incoming bytes into dst until aborted. Start and
// Abort are called from the select-edge interrupt handlers and must only
// arm or stop hardware.
type BulkCapture interface {
	Start(dst []byte)
	// Abort stops the capture and reports how many bytes landed.
	Abort() int
}

// Receiver capture states.
const (
	stateIdle uint32 = iota
	stateCapturing
)

// EdgeReceiver implements the signal-edge capture strategy: the falling
// edge of the select line arms a bulk transfer sized to the packet ceiling,
// and the rising edge aborts it, deriving the byte count from how much
// landed. The ready flag is raised exactly once per completed transaction
// and consumed exactly once by Poll.
//
// One capture buffer is used. If the host starts and completes another
// transaction before the previous packet was polled, the buffer is
// overwritten mid-read. That race is inherent to single-buffering an
// unbounded-length, externally clocked link and is accepted behavior; a
// stricter build would double-buffer.
type EdgeReceiver struct {
	capture BulkCapture
	stats   *Stats

	state uint32
	ready uint32
	count uint32
	buf   [MaxPacket]byte
}

// NewEdgeReceiver wires a capture primitive to a fresh receiver in the
// idle state.
func NewEdgeReceiver(capture BulkCapture, stats *Stats) *EdgeReceiver {
	return &EdgeReceiver{capture: capture, stats: stats}
}

// SelectAsserted handles the falling select edge. Interrupt context: it
// only starts the transfer.
func (r *EdgeReceiver) SelectAsserted() {
	r.stats.AddSelectEdge()
	if atomic.CompareAndSwapUint32(&r.state, stateIdle, stateCapturing) {
		r.capture.Start(r.buf[:])
	}
}

// SelectReleased handles the rising select edge. Interrupt context: it
// aborts the transfer and, for a non-empty transaction, raises ready with
// the byte count. Zero-byte transactions never raise ready.
func (r *EdgeReceiver) SelectReleased() {
	r.stats.AddSelectEdge()
	if atomic.CompareAndSwapUint32(&r.state, stateCapturing, stateIdle) {
		if n := r.capture.Abort(); n > 0 {
			atomic.StoreUint32(&r.count, uint32(n))
			atomic.StoreUint32(&r.ready, 1)
		}
	}
}

// ClockEdge counts clock-line activity for wiring verification only.
func (r *EdgeReceiver) ClockEdge() { r.stats.AddClockEdge() }

// DataEdge counts data-in-line activity for wiring verification only.
func (r *EdgeReceiver) DataEdge() { r.stats.AddDataEdge() }

// Poll consumes the pending transaction, if any. Never blocks.
func (r *EdgeReceiver) Poll() ([]byte, bool) {
	if !atomic.CompareAndSwapUint32(&r.ready, 1, 0) {
		return nil, false
	}
	n := atomic.LoadUint32(&r.count)
	if n > MaxPacket {
		n = MaxPacket
	}
	return r.buf[:n], true
}

// SlaveTransactor is the platform primitive behind SlaveReceiver: arm one
// slave transaction and wait up to timeout for the host to complete it.
// It returns the number of bytes the host clocked in; 0 with a nil error
// means the wait expired with no transaction.
type SlaveTransactor interface {
	Transact(tx, rx []byte, timeout time.Duration) (int, error)
}

// SlaveReceiver implements the built-in slave-transaction strategy: every
// Poll re-arms a transaction sized to the packet ceiling with a bounded
// wait. The platform's completion callback does no decoding; the byte count
// comes back through Transact.
type SlaveReceiver struct {
	bus  SlaveTransactor
	wait time.Duration
	tx   [MaxPacket]byte
	rx   [MaxPacket]byte
}

// NewSlaveReceiver wraps a slave-transaction bus. wait bounds each Poll;
// zero or negative selects 100ms, the original firmware's arm timeout.
func NewSlaveReceiver(bus SlaveTransactor, wait time.Duration) *SlaveReceiver {
	if wait <= 0 {
		wait = 100 * time.Millisecond
	}
	return &SlaveReceiver{bus: bus, wait: wait}
}

// Poll arms one transaction and waits for it. Zero-byte completions and
// bus errors yield no packet; the next Poll re-arms either way.
func (r *SlaveReceiver) Poll() ([]byte, bool) {
	for i := range r.rx {
		r.rx[i] = 0
	}
	n, err := r.bus.Transact(r.tx[:], r.rx[:], r.wait)
	if err != nil || n <= 0 {
		return nil, false
	}
	if n > MaxPacket {
		n = MaxPacket
	}
	return r.rx[:n], true
}
