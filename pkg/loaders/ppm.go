package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"unicode"

	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// maxPPMDimension bounds each side of a PPM texture
const maxPPMDimension = 8192

// LoadPPM loads a P3 (ASCII) or P6 (binary) PPM file as a texture
func LoadPPM(filename string) (*material.ImageTexture, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PPM file: %w", err)
	}
	defer file.Close()

	return ReadPPM(file)
}

// ReadPPM decodes a P3 or P6 image. Samples are rescaled from the header's
// maximum value to 0-255.
func ReadPPM(r io.Reader) (*material.ImageTexture, error) {
	reader := bufio.NewReader(r)

	magic, err := readPPMToken(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read PPM magic number: %w", err)
	}
	if magic != "P3" && magic != "P6" {
		return nil, fmt.Errorf("PPM magic number %q: %w", magic, ErrUnsupportedFormat)
	}

	var header [3]int
	names := [3]string{"width", "height", "maximum value"}
	for i := range header {
		token, err := readPPMToken(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read PPM %s: %w", names[i], err)
		}
		header[i], err = strconv.Atoi(token)
		if err != nil || header[i] <= 0 {
			return nil, fmt.Errorf("invalid PPM %s %q", names[i], token)
		}
	}
	width, height, maxValue := header[0], header[1], header[2]
	if width > maxPPMDimension || height > maxPPMDimension {
		return nil, fmt.Errorf("PPM size %dx%d exceeds %d pixels per side", width, height, maxPPMDimension)
	}
	if maxValue > 65535 {
		return nil, fmt.Errorf("invalid PPM maximum value %d", maxValue)
	}

	samples := width * height * 3
	pixels := make([]uint8, samples)

	if magic == "P3" {
		for i := range pixels {
			token, err := readPPMToken(reader)
			if err != nil {
				return nil, fmt.Errorf("failed to read PPM sample %d of %d: %w", i+1, samples, err)
			}
			v, err := strconv.Atoi(token)
			if err != nil || v < 0 || v > maxValue {
				return nil, fmt.Errorf("invalid PPM sample %q", token)
			}
			pixels[i] = scaleSample(v, maxValue)
		}
		return material.NewImageTexture(width, height, pixels), nil
	}

	// readPPMToken consumed the single whitespace byte that ends the header
	bytesPerSample := 1
	if maxValue > 255 {
		bytesPerSample = 2
	}
	raw := make([]byte, samples*bytesPerSample)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return nil, fmt.Errorf("failed to read PPM data: %w", err)
	}
	for i := range pixels {
		v := int(raw[i])
		if bytesPerSample == 2 {
			v = int(raw[2*i])<<8 | int(raw[2*i+1])
		}
		pixels[i] = scaleSample(min(v, maxValue), maxValue)
	}

	return material.NewImageTexture(width, height, pixels), nil
}

func scaleSample(v, maxValue int) uint8 {
	if maxValue == 255 {
		return uint8(v)
	}
	return uint8(v * 255 / maxValue)
}

// readPPMToken returns the next whitespace-delimited token, skipping
// comments that run from '#' to the end of the line
func readPPMToken(reader *bufio.Reader) (string, error) {
	var token []byte
	for {
		b, err := reader.ReadByte()
		if err != nil {
			if err == io.EOF && len(token) > 0 {
				return string(token), nil
			}
			if err == io.EOF {
				return "", io.ErrUnexpectedEOF
			}
			return "", err
		}

		switch {
		case b == '#' && len(token) == 0:
			if _, err := reader.ReadString('\n'); err != nil && err != io.EOF {
				return "", err
			}
		case unicode.IsSpace(rune(b)):
			if len(token) > 0 {
				return string(token), nil
			}
		default:
			token = append(token, b)
		}
	}
}
