package palette

import (
	"fmt"
	"strconv"
	"strings"
)

// RGB is an 8-bit per channel color.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// ParseHex decodes "#RRGGBB" (the leading '#' is optional).
func ParseHex(hex string) (RGB, error) {
	normalized := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(normalized) != 6 {
		return RGB{}, fmt.Errorf("palette: invalid hex color %q", hex)
	}
	v, err := strconv.ParseUint(normalized, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("palette: invalid hex color %q", hex)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Hex encodes the color as upper-case "#RRGGBB".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Triple returns the channels as ints, the shape ExtendScript RGBColor expects.
func (c RGB) Triple() [3]int {
	return [3]int{int(c.R), int(c.G), int(c.B)}
}
