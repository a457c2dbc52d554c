// ledbus-sim runs the protocol engine against the console preview driver
// and pushes a demo command stream through the in-process pipe. Useful for
// exercising the full decode/render path without hardware.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"

	"ledbus/core"
	"ledbus/output"
	"ledbus/protocol"
)

var (
	strips = flag.Int("strips", 1, "Strip count for the demo layout")
	leds   = flag.Int("leds", 30, "LEDs per strip for the demo layout")
	frames = flag.Int("frames", 64, "Rainbow frames to play")
)

type logReporter struct {
	log zerolog.Logger
}

func (r logReporter) Report(s protocol.Snapshot) {
	r.log.Info().
		Uint32("packets", s.Packets).
		Uint32("frames", s.Frames).
		Uint32("malformed", s.Malformed).
		Uint32("unknown", s.UnknownOps).
		Uint32("render_us", s.LastRenderMicros).
		Msg("stats")
}

type nopLED struct{}

func (nopLED) Toggle() {}

func main() {
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	layout := protocol.Layout{Strips: uint8(*strips), LedsPerStrip: uint16(*leds)}
	if !layout.Valid() {
		log.Fatal().Int("strips", *strips).Int("leds", *leds).Msg("invalid layout")
	}

	stats := &protocol.Stats{}
	eng := protocol.NewEngine(output.NewConsole(layout.Total()), nopLED{}, stats)

	pipe := core.NewPipeTransactor(8)
	rx := protocol.NewSlaveReceiver(pipe, 50*time.Millisecond)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		core.Loop(eng, rx, logReporter{log}, 2*time.Second, stop)
		close(done)
	}()

	pipe.Push(protocol.EncodeConfig(layout.Strips, layout.LedsPerStrip))

	frame := make([]protocol.Color, layout.Total())
	for f := 0; f < *frames; f++ {
		for i := range frame {
			frame[i] = wheel(byte((i*256/len(frame) + f*4) & 0xFF))
		}
		pkt, err := protocol.EncodeSetAll(frame)
		if err != nil {
			log.Fatal().Err(err).Msg("encode frame")
		}
		pipe.Push(pkt)
		time.Sleep(50 * time.Millisecond)
	}

	pipe.Push(protocol.EncodeClear())
	time.Sleep(200 * time.Millisecond)

	close(stop)
	<-done

	s := stats.Snapshot()
	log.Info().Uint32("packets", s.Packets).Uint32("frames", s.Frames).Msg("done")
}

// wheel maps 0..255 onto the color wheel: red, green, blue and back.
func wheel(pos byte) protocol.Color {
	switch {
	case pos < 85:
		return protocol.Color{R: 255 - pos*3, G: pos * 3, B: 0}
	case pos < 170:
		pos -= 85
		return protocol.Color{R: 0, G: 255 - pos*3, B: pos * 3}
	default:
		pos -= 170
		return protocol.Color{R: pos * 3, G: 0, B: 255 - pos*3}
	}
}
