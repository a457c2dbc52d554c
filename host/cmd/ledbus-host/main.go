// ledbus-host drives a strip controller over a local SPI master. With
// arguments it runs one command and exits; without, it opens an
// interactive console.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"ledbus/host/config"
	"ledbus/host/device"
	"ledbus/host/serial"
	"ledbus/protocol"
)

var (
	configPath = flag.String("config", "", "TOML config file path")
	devFlag    = flag.String("device", "", "SPI port name (overrides config)")
	verbose    = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *verbose {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if *devFlag != "" {
		cfg.Device = *devFlag
	}

	// watch only needs the serial console, not the bus.
	if flag.Arg(0) == "watch" {
		if err := watch(cfg); err != nil {
			log.Fatal().Err(err).Msg("watch")
		}
		return
	}

	d, err := device.Open(cfg.Device, physic.Frequency(cfg.SpeedHz)*physic.Hertz, spi.Mode(cfg.Mode))
	if err != nil {
		log.Fatal().Err(err).Msg("open device")
	}
	defer d.Close()
	log.Debug().Str("device", cfg.Device).Int64("speed_hz", cfg.SpeedHz).Msg("connected")

	if flag.NArg() > 0 {
		if err := run(d, cfg, flag.Args()); err != nil {
			log.Fatal().Err(err).Msg("command failed")
		}
		return
	}

	console(d, cfg, log)
}

func console(d *device.Device, cfg config.Config, log zerolog.Logger) {
	fmt.Println("ledbus console; 'help' lists commands, 'quit' exits")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		args, err := shlex.Split(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "parse: %v\n", err)
			continue
		}
		switch args[0] {
		case "quit", "exit", "q":
			return
		case "help", "?":
			printHelp()
		default:
			if err := run(d, cfg, args); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("read input")
	}
}

func run(d *device.Device, cfg config.Config, args []string) error {
	switch args[0] {
	case "ping":
		return d.Ping()

	case "pixel":
		if len(args) != 5 {
			return fmt.Errorf("usage: pixel INDEX R G B")
		}
		logical, err := parseUint(args[1], 0xFFFF)
		if err != nil {
			return err
		}
		c, err := parseColor(args[2:5])
		if err != nil {
			return err
		}
		return d.SetPixel(uint16(logical), c)

	case "brightness":
		if len(args) != 2 {
			return fmt.Errorf("usage: brightness LEVEL")
		}
		level, err := parseUint(args[1], 255)
		if err != nil {
			return err
		}
		return d.SetBrightness(uint8(level))

	case "show":
		return d.Show()

	case "clear":
		return d.Clear()

	case "range":
		if len(args) < 5 || (len(args)-2)%3 != 0 {
			return fmt.Errorf("usage: range START R G B [R G B ...]")
		}
		start, err := parseUint(args[1], 0xFFFF)
		if err != nil {
			return err
		}
		colors := make([]protocol.Color, 0, (len(args)-2)/3)
		for i := 2; i < len(args); i += 3 {
			c, err := parseColor(args[i : i+3])
			if err != nil {
				return err
			}
			colors = append(colors, c)
		}
		return d.SetRange(uint16(start), colors)

	case "fill":
		if len(args) != 4 {
			return fmt.Errorf("usage: fill R G B")
		}
		c, err := parseColor(args[1:4])
		if err != nil {
			return err
		}
		frame := make([]protocol.Color, cfg.Layout().Total())
		for i := range frame {
			frame[i] = c
		}
		return d.SetAll(frame)

	case "config":
		if len(args) != 3 && len(args) != 4 {
			return fmt.Errorf("usage: config STRIPS LEDS_PER_STRIP [debug]")
		}
		strips, err := parseUint(args[1], protocol.MaxStrips)
		if err != nil {
			return err
		}
		leds, err := parseUint(args[2], protocol.MaxLedsPerStrip)
		if err != nil {
			return err
		}
		if len(args) == 4 {
			if args[3] != "debug" {
				return fmt.Errorf("usage: config STRIPS LEDS_PER_STRIP [debug]")
			}
			return d.ConfigureDebug(uint8(strips), uint16(leds), true)
		}
		return d.Configure(uint8(strips), uint16(leds))

	case "help":
		printHelp()
		return nil

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// watch streams the firmware's diagnostics console to stdout.
func watch(cfg config.Config) error {
	scfg := serial.DefaultConfig(cfg.SerialDevice)
	scfg.Baud = cfg.Baud
	scfg.ReadTimeout = 0

	port, err := serial.Open(scfg)
	if err != nil {
		return err
	}
	defer port.Close()

	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		fmt.Println(scanner.Text())
	}
	return scanner.Err()
}

func parseUint(s string, max uint64) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("number %q: %w", s, err)
	}
	if v > max {
		return 0, fmt.Errorf("%d exceeds maximum %d", v, max)
	}
	return v, nil
}

func parseColor(args []string) (protocol.Color, error) {
	var ch [3]uint8
	for i, s := range args {
		v, err := parseUint(s, 255)
		if err != nil {
			return protocol.Color{}, err
		}
		ch[i] = uint8(v)
	}
	return protocol.Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}

func printHelp() {
	fmt.Println(`commands:
  ping                              toggle the status LED
  pixel INDEX R G B                 stage one pixel
  brightness LEVEL                  set global brightness (0-255)
  show                              render the staged frame
  clear                             blank all strips
  range START R G B [R G B ...]     stage consecutive pixels
  fill R G B                        fill and render the whole frame
  config STRIPS LEDS [debug]        switch strip topology
  quit                              exit`)
}
