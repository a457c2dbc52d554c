package core

import (
	"time"
)

// PipeTransactor is a channel-backed slave bus: the producer side pushes
// complete packets, the consumer side arms transactions that complete when
// a packet arrives or the timeout expires. It stands in for the hardware
// slave peripheral in the simulator and in tests.
type PipeTransactor struct {
	packets chan []byte
}

// NewPipeTransactor returns a pipe holding up to depth undelivered packets.
func NewPipeTransactor(depth int) *PipeTransactor {
	if depth <= 0 {
		depth = 4
	}
	return &PipeTransactor{packets: make(chan []byte, depth)}
}

// Push queues one complete transaction. The packet is copied, so the caller
// may reuse its buffer.
func (p *PipeTransactor) Push(pkt []byte) {
	buf := make([]byte, len(pkt))
	copy(buf, pkt)
	p.packets <- buf
}

// Transact blocks until a pushed packet arrives or timeout expires. tx is
// ignored; the engine has nothing to say back on this bus.
func (p *PipeTransactor) Transact(tx, rx []byte, timeout time.Duration) (int, error) {
	select {
	case pkt, ok := <-p.packets:
		if !ok {
			return 0, nil
		}
		return copy(rx, pkt), nil
	case <-time.After(timeout):
		return 0, nil
	}
}

// Close releases the pipe. Pending packets are discarded.
func (p *PipeTransactor) Close() {
	close(p.packets)
}
