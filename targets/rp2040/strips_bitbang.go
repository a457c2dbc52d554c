//go:build rp2040

package main

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"

	"ledbus/protocol"
)

// bitbangStrands is the fallback strip backend: timed GPIO writes, one
// strip at a time. Used when the PIO blocks cannot be claimed.
type bitbangStrands struct {
	devs       [protocol.MaxStrips]ws2812.Device
	row        [protocol.MaxLedsPerStrip]color.RGBA
	brightness uint8
}

func newBitbangStrands() *bitbangStrands {
	s := &bitbangStrands{brightness: protocol.DefaultBrightness}
	for strip := 0; strip < protocol.MaxStrips; strip++ {
		pin := stripPins[strip]
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		s.devs[strip] = ws2812.New(pin)
	}
	return s
}

func (s *bitbangStrands) SetBrightness(level uint8) {
	s.brightness = level
}

func (s *bitbangStrands) Render(frame []protocol.Color, layout protocol.Layout) error {
	n := int(layout.LedsPerStrip)
	for strip := 0; strip < int(layout.Strips); strip++ {
		base := strip * protocol.MaxLedsPerStrip
		for offset := 0; offset < n; offset++ {
			c := frame[base+offset]
			s.row[offset] = color.RGBA{
				R: scale8(c.R, s.brightness),
				G: scale8(c.G, s.brightness),
				B: scale8(c.B, s.brightness),
				A: 0xFF,
			}
		}
		if err := s.devs[strip].WriteColors(s.row[:n]); err != nil {
			return err
		}
	}
	return nil
}

// scale8 applies global brightness; level 255 is passthrough.
func scale8(v, b uint8) uint8 {
	return uint8(uint16(v) * (uint16(b) + 1) >> 8)
}
