package color

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is an 8-bit sRGB color, the quantized form every hex string maps to.
type Color struct {
	R, G, B uint8
}

// FormatError reports a malformed hex color string.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid hex color %q: %s", e.Input, e.Reason)
}

// ParseHex parses a hex color string like "#eb6f92" into a Color.
// The leading # is optional and digits are case-insensitive.
func ParseHex(s string) (Color, error) {
	digits := strings.TrimPrefix(s, "#")
	if len(digits) != 6 {
		return Color{}, &FormatError{Input: s, Reason: "must be 6 hex digits"}
	}
	for i := 0; i < len(digits); i++ {
		if !isHexDigit(digits[i]) {
			return Color{}, &FormatError{Input: s, Reason: fmt.Sprintf("non-hex character %q", digits[i])}
		}
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return Color{}, &FormatError{Input: s, Reason: err.Error()}
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// Hex returns the color as a hex string with leading #, e.g. "#eb6f92".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGB returns the color as gamma-encoded channels in [0, 1].
func (c Color) RGB() RGB {
	return RGB{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// Quantize clips each channel to [0, 1] and rounds it to the nearest 8-bit value.
func (c RGB) Quantize() Color {
	return Color{R: quantize(c.R), G: quantize(c.G), B: quantize(c.B)}
}

func quantize(v float64) uint8 {
	q := math.Round(255.0 * v)
	if q < 0 || math.IsNaN(q) {
		return 0
	}
	if q > 255 {
		return 255
	}
	return uint8(q)
}

// HexToRGB parses a batch of hex strings. The first malformed entry aborts
// the whole batch.
func HexToRGB(hexes []string) ([]RGB, error) {
	out := make([]RGB, len(hexes))
	for i, h := range hexes {
		c, err := ParseHex(h)
		if err != nil {
			return nil, err
		}
		out[i] = c.RGB()
	}
	return out, nil
}

// RGBToHex quantizes a batch of sRGB colors to lowercase "#rrggbb" strings.
func RGBToHex(colors []RGB) []string {
	out := make([]string, len(colors))
	for i, c := range colors {
		out[i] = c.Quantize().Hex()
	}
	return out
}
