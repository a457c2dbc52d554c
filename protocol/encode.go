package protocol

import "fmt"

// Packet builders for the host side of the link. Multi-byte fields are
// big-endian, matching the decoder. Each returned slice is one complete
// transaction.

// EncodePing builds a liveness probe.
func EncodePing() []byte { return []byte{OpPing} }

// EncodeShow builds a render trigger.
func EncodeShow() []byte { return []byte{OpShow} }

// EncodeClear builds a clear-and-render command.
func EncodeClear() []byte { return []byte{OpClear} }

// EncodeSetBrightness builds a global brightness update.
func EncodeSetBrightness(level uint8) []byte {
	return []byte{OpSetBrightness, level}
}

// EncodeSetPixel builds a single-pixel write at a logical index.
func EncodeSetPixel(logical uint16, c Color) []byte {
	return []byte{OpSetPixel, byte(logical >> 8), byte(logical), c.R, c.G, c.B}
}

// EncodeSetRange builds a consecutive-pixel write starting at a logical
// index. The wire format carries the count in one byte, so at most 255
// pixels fit in one transaction.
func EncodeSetRange(start uint16, colors []Color) ([]byte, error) {
	if len(colors) == 0 {
		return nil, fmt.Errorf("set range: no pixels")
	}
	if len(colors) > 0xFF {
		return nil, fmt.Errorf("set range: %d pixels exceeds the 255 per-packet limit", len(colors))
	}
	pkt := make([]byte, 0, 4+len(colors)*3)
	pkt = append(pkt, OpSetRange, byte(start>>8), byte(start), byte(len(colors)))
	for _, c := range colors {
		pkt = append(pkt, c.R, c.G, c.B)
	}
	return pkt, nil
}

// EncodeSetAll builds a full-frame write and render. colors must carry one
// entry per logical pixel of the device's active topology.
func EncodeSetAll(colors []Color) ([]byte, error) {
	if len(colors) == 0 || len(colors) > MaxPixels {
		return nil, fmt.Errorf("set all: %d pixels outside 1..%d", len(colors), MaxPixels)
	}
	pkt := make([]byte, 0, 1+len(colors)*3)
	pkt = append(pkt, OpSetAll)
	for _, c := range colors {
		pkt = append(pkt, c.R, c.G, c.B)
	}
	return pkt, nil
}

// EncodeConfig builds a topology change.
func EncodeConfig(strips uint8, ledsPerStrip uint16) []byte {
	return []byte{OpConfig, strips, byte(ledsPerStrip >> 8), byte(ledsPerStrip)}
}

// EncodeConfigDebug builds a topology change carrying the optional
// debug-logging flag byte.
func EncodeConfigDebug(strips uint8, ledsPerStrip uint16, debug bool) []byte {
	flag := byte(0)
	if debug {
		flag = 1
	}
	return append(EncodeConfig(strips, ledsPerStrip), flag)
}
