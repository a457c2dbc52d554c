//go:build rp2040

package main

import (
	"errors"
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"ledbus/protocol"
)

// WS2812 PIO program, pre-assembled. One sideset bit drives the data pin;
// the program shifts 24-bit GRB words out MSB-first with 800 kHz NRZ
// timing at a 125 MHz / (15 + 160/256) state machine clock.
//
//	0: out x, 1       side 0 [2]
//	1: jmp !x, 3      side 1 [1]
//	2: jmp 0          side 1 [4]
//	3: nop            side 0 [4]
var ws2812Program = []uint16{0x6221, 0x1123, 0x1400, 0xa442}

const ws2812Origin = 0

// stripPins maps strip index to data pin. GPIO16..GPIO23 keeps the whole
// bank contiguous and clear of the SPI and status pins.
var stripPins = [protocol.MaxStrips]machine.Pin{
	machine.GPIO16, machine.GPIO17, machine.GPIO18, machine.GPIO19,
	machine.GPIO20, machine.GPIO21, machine.GPIO22, machine.GPIO23,
}

// pioStrands drives up to eight WS2812 strips from PIO state machines,
// four per PIO block. Each strip gets its own state machine so a frame
// streams to all strips without bit-banging from the CPU.
type pioStrands struct {
	sms        [protocol.MaxStrips]rp2pio.StateMachine
	brightness uint8
}

func newPIOStrands() (*pioStrands, error) {
	s := &pioStrands{brightness: protocol.DefaultBrightness}

	blocks := [2]*rp2pio.PIO{rp2pio.PIO0, rp2pio.PIO1}
	var offsets [2]uint8
	for i, block := range blocks {
		offset, err := block.AddProgram(ws2812Program, ws2812Origin)
		if err != nil {
			return nil, err
		}
		offsets[i] = offset
	}

	for strip := 0; strip < protocol.MaxStrips; strip++ {
		block := blocks[strip/4]
		offset := offsets[strip/4]
		sm := block.StateMachine(uint8(strip % 4))
		if !sm.TryClaim() {
			return nil, errors.New("pio: state machine busy")
		}

		pin := stripPins[strip]
		pin.Configure(machine.PinConfig{Mode: block.PinMode()})

		cfg := rp2pio.DefaultStateMachineConfig()
		cfg.SetSidesetPins(pin)
		cfg.SetSideset(1, false, false)
		// Shift left, autopull at 24 bits: one pull per GRB pixel.
		cfg.SetOutShift(false, true, 24)
		cfg.SetWrap(offset+uint8(len(ws2812Program))-1, offset)
		cfg.SetClkDivIntFrac(15, 160)

		sm.Init(offset, cfg)
		sm.SetPindirsConsecutive(pin, 1, true)
		sm.SetEnabled(true)

		s.sms[strip] = sm
	}
	return s, nil
}

func (s *pioStrands) SetBrightness(level uint8) {
	s.brightness = level
}

// Render streams the active slots of each strip into its state machine
// FIFO. The PIO handles waveform timing; the CPU only feeds words.
func (s *pioStrands) Render(frame []protocol.Color, layout protocol.Layout) error {
	for strip := 0; strip < int(layout.Strips); strip++ {
		sm := s.sms[strip]
		base := strip * protocol.MaxLedsPerStrip
		for offset := 0; offset < int(layout.LedsPerStrip); offset++ {
			c := frame[base+offset]
			word := uint32(scale8(c.G, s.brightness))<<24 |
				uint32(scale8(c.R, s.brightness))<<16 |
				uint32(scale8(c.B, s.brightness))<<8
			for sm.IsTxFIFOFull() {
				// Busy wait, the FIFO drains at 30 us per pixel.
			}
			sm.TxPut(word)
		}
	}
	return nil
}
