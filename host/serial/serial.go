// Package serial reads the controller's USB diagnostics console. The
// command path is SPI; this side is one-way text output from the firmware.
package serial

import (
	"io"
)

// Port is a serial port. An interface so the watcher can run against a
// mock in tests.
type Port interface {
	io.ReadWriteCloser

	// Flush discards buffered data.
	Flush() error
}

// Config holds serial port configuration.
type Config struct {
	// Device path (e.g. "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate. USB CDC ignores it, but the field is required to open
	// the port.
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the configuration for the firmware's USB console.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}
