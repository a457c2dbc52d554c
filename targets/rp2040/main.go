//go:build rp2040

package main

import (
	"machine"
	"time"

	"ledbus/core"
	"ledbus/protocol"
)

// Wiring. The external controller is the SPI master; SPI1 on this pin bank
// leaves GPIO16..23 free for the strip outputs.
const (
	pinMOSI = machine.GPIO12
	pinCS   = machine.GPIO13
	pinSCK  = machine.GPIO14
	pinMISO = machine.GPIO15
)

// wireDebug adds toggle interrupts on SCK and MOSI so the edge counters
// move even when no transaction completes. Costs an ISR per edge; keep off
// unless chasing a wiring problem.
const wireDebug = false

// usePIO selects the PIO strip backend; the bit-bang backend is the
// fallback when the PIO blocks are unavailable.
const usePIO = true

// statusLED blinks the on-board LED on PING.
type statusLED struct {
	pin machine.Pin
	on  bool
}

func (l *statusLED) Toggle() {
	l.on = !l.on
	l.pin.Set(l.on)
}

// printReporter dumps counters over the USB serial console.
type printReporter struct{}

func (printReporter) Report(s protocol.Snapshot) {
	println("packets:", s.Packets,
		"frames:", s.Frames,
		"cs:", s.SelectEdges,
		"zero:", s.ZeroPayload,
		"malformed:", s.Malformed,
		"unknown:", s.UnknownOps,
		"render_us:", s.LastRenderMicros)
}

func main() {
	// Give the USB console a moment to enumerate before the first prints.
	time.Sleep(2 * time.Second)

	led := &statusLED{pin: machine.LED}
	led.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	var out protocol.OutputDriver
	if usePIO {
		pio, err := newPIOStrands()
		if err != nil {
			println("pio unavailable, bit-banging:", err.Error())
			out = newBitbangStrands()
		} else {
			out = pio
		}
	} else {
		out = newBitbangStrands()
	}

	stats := &protocol.Stats{}
	eng := protocol.NewEngine(out, led, stats)

	slave, err := newSPISlave(machine.SPI1, pinSCK, pinMOSI, pinMISO)
	if err != nil {
		println("spi slave init failed:", err.Error())
		return
	}
	rx := protocol.NewEdgeReceiver(slave, stats)

	// Chip select frames every transaction: falling edge arms the capture,
	// rising edge completes it.
	pinCS.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	pinCS.SetInterrupt(machine.PinFalling|machine.PinRising, func(p machine.Pin) {
		if p.Get() {
			rx.SelectReleased()
		} else {
			rx.SelectAsserted()
		}
	})

	if wireDebug {
		pinSCK.Configure(machine.PinConfig{Mode: machine.PinInput})
		pinSCK.SetInterrupt(machine.PinToggle, func(machine.Pin) {
			rx.ClockEdge()
		})
		pinMOSI.Configure(machine.PinConfig{Mode: machine.PinInput})
		pinMOSI.SetInterrupt(machine.PinToggle, func(machine.Pin) {
			rx.DataEdge()
		})
	}

	// Brief white flash confirms power and data wiring on all strips.
	// Rendered directly so the diagnostics counters start at zero.
	flash := make([]protocol.Color, protocol.MaxPixels)
	for i := range flash {
		flash[i] = protocol.Color{R: 32, G: 32, B: 32}
	}
	out.Render(flash, eng.Layout())
	time.Sleep(250 * time.Millisecond)
	out.Render(make([]protocol.Color, protocol.MaxPixels), eng.Layout())

	println("ready:", eng.Layout().Total(), "pixels")
	core.Loop(eng, rx, printReporter{}, 5*time.Second, nil)
}
