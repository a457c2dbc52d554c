package protocol

import (
	"bytes"
	"testing"
)

func TestEncodeFixedPackets(t *testing.T) {
	cases := []struct {
		name string
		got  []byte
		want []byte
	}{
		{"ping", EncodePing(), []byte{0xFF}},
		{"show", EncodeShow(), []byte{0x03}},
		{"clear", EncodeClear(), []byte{0x04}},
		{"brightness", EncodeSetBrightness(128), []byte{0x02, 128}},
		{"pixel", EncodeSetPixel(0x0105, Color{R: 1, G: 2, B: 3}), []byte{0x01, 0x01, 0x05, 1, 2, 3}},
		{"config", EncodeConfig(3, 300), []byte{0x07, 3, 0x01, 0x2C}},
		{"config+debug", EncodeConfigDebug(3, 300, true), []byte{0x07, 3, 0x01, 0x2C, 1}},
	}
	for _, c := range cases {
		if !bytes.Equal(c.got, c.want) {
			t.Errorf("%s = % x, want % x", c.name, c.got, c.want)
		}
	}
}

func TestEncodeSetRange(t *testing.T) {
	pkt, err := EncodeSetRange(0x0102, []Color{{R: 1, G: 2, B: 3}, {R: 4, G: 5, B: 6}})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x05, 0x01, 0x02, 2, 1, 2, 3, 4, 5, 6}
	if !bytes.Equal(pkt, want) {
		t.Errorf("packet = % x, want % x", pkt, want)
	}

	if _, err := EncodeSetRange(0, nil); err == nil {
		t.Error("empty range must error")
	}
	if _, err := EncodeSetRange(0, make([]Color, 256)); err == nil {
		t.Error("count beyond one byte must error")
	}
}

func TestEncodeSetAllLength(t *testing.T) {
	pkt, err := EncodeSetAll(make([]Color, 30))
	if err != nil {
		t.Fatal(err)
	}
	if len(pkt) != 1+30*3 {
		t.Errorf("length = %d, want %d", len(pkt), 1+30*3)
	}
	if pkt[0] != OpSetAll {
		t.Errorf("opcode = %#x", pkt[0])
	}
	if _, err := EncodeSetAll(make([]Color, MaxPixels+1)); err == nil {
		t.Error("frame beyond capacity must error")
	}
}
