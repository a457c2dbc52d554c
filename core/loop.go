// Package core drives the protocol engine: the cooperative main loop and
// the in-process plumbing shared by the simulator and tests.
package core

import (
	"time"

	"ledbus/protocol"
)

// Reporter receives periodic diagnostics snapshots.
type Reporter interface {
	Report(s protocol.Snapshot)
}

// DefaultReportEvery matches the firmware's stats cadence.
const DefaultReportEvery = 5 * time.Second

// Loop runs the main execution context: it consumes at most one completed
// transaction per iteration, strictly in completion order, and emits a
// stats report every `every`. It never blocks on I/O beyond the receiver's
// bounded wait. stop may be nil for firmware builds that never return.
func Loop(eng *protocol.Engine, rx protocol.Receiver, rep Reporter, every time.Duration, stop <-chan struct{}) {
	if every <= 0 {
		every = DefaultReportEvery
	}
	last := time.Now()
	for {
		if stop != nil {
			select {
			case <-stop:
				return
			default:
			}
		}

		if pkt, ok := rx.Poll(); ok {
			eng.Process(pkt)
		}

		if rep != nil && time.Since(last) >= every {
			rep.Report(eng.Stats().Snapshot())
			last = time.Now()
		}

		// Yield to other goroutines (USB/FIFO readers on MCU builds).
		time.Sleep(10 * time.Microsecond)
	}
}
