// Package output holds the host-side strip backends: an NRZ driver that
// pushes pixels over a local SPI master, and an ANSI console preview.
package output

import (
	"image"
	"image/color"

	"ledbus/protocol"
)

// scale applies global brightness the way WS2812 libraries do: a level of
// 255 passes colors through unchanged, 0 is nearly off but not quite.
func scale(v, b uint8) uint8 {
	return uint8(uint16(v) * (uint16(b) + 1) >> 8)
}

// FrameImage flattens the active slots of a frame into a 1xN image in
// logical order, with the global brightness baked in.
func FrameImage(frame []protocol.Color, layout protocol.Layout, brightness uint8) *image.NRGBA {
	total := layout.Total()
	img := image.NewNRGBA(image.Rect(0, 0, total, 1))
	for logical := 0; logical < total; logical++ {
		c := frame[layout.PhysicalSlot(logical)]
		img.SetNRGBA(logical, 0, color.NRGBA{
			R: scale(c.R, brightness),
			G: scale(c.G, brightness),
			B: scale(c.B, brightness),
			A: 0xFF,
		})
	}
	return img
}
