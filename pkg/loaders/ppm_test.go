package loaders

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestReadPPM_ASCII(t *testing.T) {
	data := "P3\n# a comment\n2 1\n255\n255 0 0   0 128 255\n"
	tex, err := ReadPPM(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadPPM failed: %v", err)
	}
	if tex.Width() != 2 || tex.Height() != 1 {
		t.Fatalf("Expected 2x1, got %dx%d", tex.Width(), tex.Height())
	}
	if got := tex.Texel(0, 0); got != [3]uint8{255, 0, 0} {
		t.Errorf("Texel(0,0) = %v", got)
	}
	if got := tex.Texel(1, 0); got != [3]uint8{0, 128, 255} {
		t.Errorf("Texel(1,0) = %v", got)
	}
}

func TestReadPPM_Binary(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("P6 1 2 255\n")
	buf.Write([]byte{10, 20, 30, 32, 200, 9})

	tex, err := ReadPPM(&buf)
	if err != nil {
		t.Fatalf("ReadPPM failed: %v", err)
	}
	// First data byte must not be mistaken for header whitespace
	if got := tex.Texel(0, 0); got != [3]uint8{10, 20, 30} {
		t.Errorf("Texel(0,0) = %v", got)
	}
	if got := tex.Texel(0, 1); got != [3]uint8{32, 200, 9} {
		t.Errorf("Texel(0,1) = %v", got)
	}
}

func TestReadPPM_MaxValueScaling(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want [3]uint8
	}{
		{"ascii maxval 15", []byte("P3 1 1 15 15 0 5"), [3]uint8{255, 0, 85}},
		{"binary maxval 65535", append([]byte("P6 1 1 65535\n"), 0xff, 0xff, 0x00, 0x00, 0x80, 0x00), [3]uint8{255, 0, 127}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex, err := ReadPPM(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("ReadPPM failed: %v", err)
			}
			if got := tex.Texel(0, 0); got != tt.want {
				t.Errorf("Texel(0,0) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadPPM_Errors(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		unsupported bool
	}{
		{"bitmap magic", "P1 1 1 1", true},
		{"empty", "", false},
		{"zero width", "P3 0 1 255", false},
		{"sample above maxval", "P3 1 1 100 101 0 0", false},
		{"truncated ascii", "P3 1 1 255 1 2", false},
		{"truncated binary", "P6 2 1 255\nabc", false},
		{"maxval too large", "P3 1 1 70000 0 0 0", false},
		{"oversized binary", "P6 100000 100000 255\n", false},
		{"oversized height", "P3 1 9000 255 0 0 0", false},
		{"dimension overflows int", "P6 99999999999999999999 1 255\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadPPM(strings.NewReader(tt.data))
			if err == nil {
				t.Fatal("Expected an error")
			}
			if tt.unsupported && !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
			}
		})
	}
}
