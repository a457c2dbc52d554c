// Package device is the host-side client: it opens a local SPI master and
// frames one command per chip-select transaction.
package device

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"ledbus/protocol"
)

// Bus defaults matching the firmware's slave configuration.
const (
	DefaultSpeed = 8 * physic.MegaHertz
	DefaultMode  = spi.Mode3
)

// Device is a connected strip controller. Each method is one transaction;
// the chip select frames the packet, so no length prefix or terminator is
// needed on the wire.
type Device struct {
	port spi.PortCloser
	conn spi.Conn
}

// Open connects to the controller on the named SPI port ("" picks the
// first available).
func Open(portName string, speed physic.Frequency, mode spi.Mode) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("device: host init: %w", err)
	}
	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("device: open spi %q: %w", portName, err)
	}
	d, err := New(port, speed, mode)
	if err != nil {
		port.Close()
		return nil, err
	}
	return d, nil
}

// New wraps an already-open port. Used by tests with a playback port.
func New(port spi.PortCloser, speed physic.Frequency, mode spi.Mode) (*Device, error) {
	if speed == 0 {
		speed = DefaultSpeed
	}
	conn, err := port.Connect(speed, mode, 8)
	if err != nil {
		return nil, fmt.Errorf("device: connect: %w", err)
	}
	return &Device{port: port, conn: conn}, nil
}

func (d *Device) send(pkt []byte) error {
	if err := d.conn.Tx(pkt, nil); err != nil {
		return fmt.Errorf("device: tx: %w", err)
	}
	return nil
}

// Ping toggles the controller's status LED.
func (d *Device) Ping() error {
	return d.send(protocol.EncodePing())
}

// SetPixel stages one pixel at a logical index. Not visible until Show.
func (d *Device) SetPixel(logical uint16, c protocol.Color) error {
	return d.send(protocol.EncodeSetPixel(logical, c))
}

// SetBrightness sets the global brightness, 0..255.
func (d *Device) SetBrightness(level uint8) error {
	return d.send(protocol.EncodeSetBrightness(level))
}

// Show renders the staged frame to the strips.
func (d *Device) Show() error {
	return d.send(protocol.EncodeShow())
}

// Clear blanks the frame and renders immediately.
func (d *Device) Clear() error {
	return d.send(protocol.EncodeClear())
}

// SetRange stages up to 255 consecutive pixels starting at a logical index.
func (d *Device) SetRange(start uint16, colors []protocol.Color) error {
	pkt, err := protocol.EncodeSetRange(start, colors)
	if err != nil {
		return err
	}
	return d.send(pkt)
}

// SetAll replaces the whole frame and renders it in one transaction. The
// slice must cover the controller's active layout.
func (d *Device) SetAll(colors []protocol.Color) error {
	pkt, err := protocol.EncodeSetAll(colors)
	if err != nil {
		return err
	}
	return d.send(pkt)
}

// Configure switches the controller to a new strip topology. The controller
// blanks its frame as part of the switch.
func (d *Device) Configure(strips uint8, ledsPerStrip uint16) error {
	return d.send(protocol.EncodeConfig(strips, ledsPerStrip))
}

// ConfigureDebug is Configure plus the wire-debug flag.
func (d *Device) ConfigureDebug(strips uint8, ledsPerStrip uint16, debug bool) error {
	return d.send(protocol.EncodeConfigDebug(strips, ledsPerStrip, debug))
}

// Close releases the SPI port.
func (d *Device) Close() error {
	return d.port.Close()
}
