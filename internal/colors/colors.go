// Package colors generates and parses the display colors of people and
// categories.
package colors

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Fallback is used for names without a registered color.
const Fallback = "#cccccc"

// Random returns a fresh color as HSL(random hue, 70%, 60%) in hex form.
func Random() string {
	return FromHue(rand.Float64() * 360)
}

// FromHue returns HSL(hue, 70%, 60%) in hex form.
func FromHue(hue float64) string {
	return colorful.Hsl(hue, 0.70, 0.60).Clamped().Hex()
}

// Parse accepts "#rgb", "#rrggbb" or a legacy "hsl(h, s%, l%)" string.
func Parse(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), "hsl(") {
		var h, sat, l float64
		inner := strings.TrimSuffix(s[4:], ")")
		inner = strings.NewReplacer("%", "", ",", " ").Replace(inner)
		if _, err := fmt.Sscanf(inner, "%f %f %f", &h, &sat, &l); err != nil {
			return colorful.Color{}, fmt.Errorf("invalid hsl color %q: %w", s, err)
		}
		return colorful.Hsl(h, sat/100, l/100).Clamped(), nil
	}
	if len(s) == 4 && s[0] == '#' {
		s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}

// Valid reports whether Parse accepts s.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Hex renders any accepted color string as #rrggbb, falling back to
// Fallback for unparsable input.
func Hex(s string) string {
	c, err := Parse(s)
	if err != nil {
		return Fallback
	}
	return c.Hex()
}
