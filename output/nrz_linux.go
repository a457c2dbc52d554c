//go:build linux

package output

import (
	"fmt"
	"image"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"

	"ledbus/protocol"
)

// NRZ drives a WS2812-class chain through a local SPI master, encoding the
// NRZ waveform at 2.5 MHz. The chain is laid out in logical order.
type NRZ struct {
	port       spi.PortCloser
	dev        *nrzled.Dev
	brightness uint8
}

// NewNRZ opens the named SPI port ("" for the first available) sized for
// the given layout.
func NewNRZ(portName string, layout protocol.Layout) (*NRZ, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("output: host init: %w", err)
	}
	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("output: open spi %q: %w", portName, err)
	}
	dev, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: layout.Total(),
		Channels:  3,
		Freq:      2500 * physic.KiloHertz,
	})
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("output: nrzled: %w", err)
	}
	return &NRZ{
		port:       port,
		dev:        dev,
		brightness: protocol.DefaultBrightness,
	}, nil
}

func (n *NRZ) SetBrightness(level uint8) {
	n.brightness = level
}

func (n *NRZ) Render(frame []protocol.Color, layout protocol.Layout) error {
	img := FrameImage(frame, layout, n.brightness)
	if err := n.dev.Draw(n.dev.Bounds(), img, image.Point{}); err != nil {
		return fmt.Errorf("output: draw: %w", err)
	}
	return nil
}

// Close blanks the chain and releases the port.
func (n *NRZ) Close() error {
	if err := n.dev.Halt(); err != nil {
		n.port.Close()
		return fmt.Errorf("output: halt: %w", err)
	}
	return n.port.Close()
}
