package output

import (
	"image"

	"periph.io/x/extra/devices/screen"

	"ledbus/protocol"
)

// Console previews frames as ANSI color blocks on stdout, one terminal row
// per rendered frame. It stands in when no SPI port is available.
type Console struct {
	drawer     *screen.Dev
	brightness uint8
}

// NewConsole returns a preview sized for layouts up to pixelsPerLine wide.
func NewConsole(pixelsPerLine int) *Console {
	return &Console{
		drawer:     screen.New(pixelsPerLine),
		brightness: protocol.DefaultBrightness,
	}
}

func (c *Console) SetBrightness(level uint8) {
	c.brightness = level
}

func (c *Console) Render(frame []protocol.Color, layout protocol.Layout) error {
	img := FrameImage(frame, layout, c.brightness)
	return c.drawer.Draw(c.drawer.Bounds(), img, image.Point{})
}
