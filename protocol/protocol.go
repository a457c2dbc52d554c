// Package protocol implements the SPI-slave pixel-frame command protocol:
// the wire opcodes, the layout table and frame buffer they act on, the
// command decoder, and the transaction receivers that feed it.
package protocol

// Topology limits. The frame buffer is sized for the worst case; the active
// topology is bounded by these at runtime via CONFIG.
const (
	MaxStrips       = 8
	MaxLedsPerStrip = 500
	MaxPixels       = MaxStrips * MaxLedsPerStrip

	DefaultStrips       = 8
	DefaultLedsPerStrip = 140
	DefaultBrightness   = 50
)

// MaxPacket is the peak transfer size the link must accept: one opcode byte
// plus an RGB triple per pixel at the maximum topology, rounded up to a
// 64-byte transfer-alignment boundary.
const MaxPacket = (1 + MaxPixels*3 + 63) / 64 * 64

// Command opcodes (packet byte 0).
const (
	OpSetPixel      = 0x01 // index (2B BE), R, G, B
	OpSetBrightness = 0x02 // level (1B)
	OpShow          = 0x03 // no payload
	OpClear         = 0x04 // no payload
	OpSetRange      = 0x05 // start (2B BE), count (1B), count RGB triples
	OpSetAll        = 0x06 // one RGB triple per logical pixel
	OpConfig        = 0x07 // strips (1B), leds/strip (2B BE), optional debug flag
	OpPing          = 0xFF // no payload
)
