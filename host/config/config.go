// Package config loads the host tool's TOML configuration.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"ledbus/protocol"
)

// Config describes the bus, the console, and the expected strip topology.
type Config struct {
	// SPI port name for spireg.Open; empty picks the first available.
	Device string `toml:"device"`

	// Bus clock in hertz.
	SpeedHz int64 `toml:"speed_hz"`

	// SPI mode, 0..3. The firmware's slave runs mode 3.
	Mode int `toml:"mode"`

	Strips       int `toml:"strips"`
	LedsPerStrip int `toml:"leds_per_strip"`
	Brightness   int `toml:"brightness"`

	// Diagnostics console.
	SerialDevice string `toml:"serial_device"`
	Baud         int    `toml:"baud"`
}

// Default returns the configuration matching the firmware's boot state.
func Default() Config {
	return Config{
		Device:       "",
		SpeedHz:      8_000_000,
		Mode:         3,
		Strips:       int(protocol.DefaultStrips),
		LedsPerStrip: int(protocol.DefaultLedsPerStrip),
		Brightness:   int(protocol.DefaultBrightness),
		SerialDevice: "/dev/ttyACM0",
		Baud:         115200,
	}
}

// Load reads a TOML file over the defaults. A missing file is not an
// error; the defaults stand.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate range-checks the fields the firmware would reject.
func (c Config) Validate() error {
	if c.Strips < 1 || c.Strips > protocol.MaxStrips {
		return fmt.Errorf("strips %d out of range 1..%d", c.Strips, protocol.MaxStrips)
	}
	if c.LedsPerStrip < 1 || c.LedsPerStrip > protocol.MaxLedsPerStrip {
		return fmt.Errorf("leds_per_strip %d out of range 1..%d", c.LedsPerStrip, protocol.MaxLedsPerStrip)
	}
	if c.Brightness < 0 || c.Brightness > 255 {
		return fmt.Errorf("brightness %d out of range 0..255", c.Brightness)
	}
	if c.Mode < 0 || c.Mode > 3 {
		return fmt.Errorf("mode %d out of range 0..3", c.Mode)
	}
	if c.SpeedHz <= 0 {
		return fmt.Errorf("speed_hz must be positive, got %d", c.SpeedHz)
	}
	return nil
}

// Layout converts the configured topology for the wire encoders.
func (c Config) Layout() protocol.Layout {
	return protocol.Layout{
		Strips:       uint8(c.Strips),
		LedsPerStrip: uint16(c.LedsPerStrip),
	}
}
