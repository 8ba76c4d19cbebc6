package canvas

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// A Color is an RGBA color with 8 bits per channel. Alpha is not
// premultiplied.
type Color [4]uint8

// White is the color of a fresh canvas.
var White = Color{255, 255, 255, 255}

// Dist returns the Euclidean distance between two colors, treating all four
// channels as independent coordinates.
func (c Color) Dist(o Color) float64 {
	var sum float64
	for i := range c {
		d := float64(c[i]) - float64(o[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// String returns the color as "[r, g, b, a]".
func (c Color) String() string {
	return fmt.Sprintf("[%d, %d, %d, %d]", c[0], c[1], c[2], c[3])
}

// ParseHex parses a color in "#rrggbb" or "#rrggbbaa" form. Colors without an
// alpha channel are opaque.
func ParseHex(s string) (Color, error) {
	alpha := uint8(255)
	if len(s) == 9 && strings.HasPrefix(s, "#") {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid alpha in color %q: %w", s, err)
		}
		alpha = uint8(a)
		s = s[:7]
	}
	hc, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := hc.RGB255()
	return Color{r, g, b, alpha}, nil
}

// UnmarshalJSON accepts either an array of four channel values or a hex
// string.
func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := ParseHex(s)
		if err != nil {
			return err
		}
		*c = v
		return nil
	}
	var ch []int
	if err := json.Unmarshal(data, &ch); err != nil {
		return fmt.Errorf("color must be a hex string or an array: %w", err)
	}
	if len(ch) != 4 {
		return fmt.Errorf("color has %d channels, expected 4", len(ch))
	}
	for i, v := range ch {
		if v < 0 || 255 < v {
			return fmt.Errorf("color channel %d out of range: %d", i, v)
		}
		c[i] = uint8(v)
	}
	return nil
}

// MarshalJSON writes the color as an array of four channel values.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{int(c[0]), int(c[1]), int(c[2]), int(c[3])})
}
