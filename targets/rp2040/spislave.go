//go:build rp2040

package main

import (
	"machine"
	"sync/atomic"
	"time"
)

// PL022 register bits needed to flip the controller into slave mode.
// TinyGo's machine package only configures master mode, so the mode switch
// is done directly on the SSP block after Configure wires up the pins.
const (
	sspCR1SSE = 1 << 1 // synchronous serial port enable
	sspCR1MS  = 1 << 2 // master/slave select, 1 = slave
	sspSRRNE  = 1 << 2 // receive FIFO not empty
)

// spiSlave captures bytes clocked in by the external master between the
// chip-select edges. A drain goroutine empties the 8-deep receive FIFO into
// the destination buffer; the interrupt side only flips the capture flag.
type spiSlave struct {
	spi *machine.SPI

	capturing uint32
	count     uint32
	dst       []byte
}

// newSPISlave configures the SSP block as a mode-3 slave on the given pins
// and starts the FIFO drain goroutine.
func newSPISlave(spi *machine.SPI, sck, mosi, miso machine.Pin) (*spiSlave, error) {
	// Configure pins and clocking as usual, then switch roles. The
	// frequency only matters for master mode; the external master clocks
	// the bus.
	err := spi.Configure(machine.SPIConfig{
		Frequency: 8_000_000,
		SCK:       sck,
		SDO:       miso, // slave drives MISO
		SDI:       mosi, // slave samples MOSI
		Mode:      3,
	})
	if err != nil {
		return nil, err
	}

	spi.Bus.SSPCR1.ClearBits(sspCR1SSE)
	spi.Bus.SSPCR1.SetBits(sspCR1MS)
	spi.Bus.SSPCR1.SetBits(sspCR1SSE)

	s := &spiSlave{spi: spi}
	s.flush()
	go s.drainLoop()
	return s, nil
}

// Start arms a capture into dst. Runs in interrupt context: no allocation,
// no blocking.
func (s *spiSlave) Start(dst []byte) {
	s.dst = dst
	atomic.StoreUint32(&s.count, 0)
	atomic.StoreUint32(&s.capturing, 1)
}

// Abort ends the capture, drains any bytes still sitting in the FIFO, and
// returns how many bytes landed in dst. Runs in interrupt context.
func (s *spiSlave) Abort() int {
	atomic.StoreUint32(&s.capturing, 0)
	s.drain()
	return int(atomic.LoadUint32(&s.count))
}

// drainLoop empties the receive FIFO continuously. While a capture is armed
// it spins tight so no byte is lost at bus speed; idle it yields and
// discards noise bytes that arrive outside a transaction.
func (s *spiSlave) drainLoop() {
	for {
		if atomic.LoadUint32(&s.capturing) == 1 {
			s.drain()
			continue
		}
		s.flush()
		time.Sleep(10 * time.Microsecond)
	}
}

func (s *spiSlave) drain() {
	for s.spi.Bus.SSPSR.HasBits(sspSRRNE) {
		b := byte(s.spi.Bus.SSPDR.Get())
		n := atomic.LoadUint32(&s.count)
		if int(n) < len(s.dst) {
			s.dst[n] = b
			atomic.StoreUint32(&s.count, n+1)
		}
	}
}

// flush discards everything in the receive FIFO.
func (s *spiSlave) flush() {
	for s.spi.Bus.SSPSR.HasBits(sspSRRNE) {
		s.spi.Bus.SSPDR.Get()
	}
}
