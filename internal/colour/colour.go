// Package colour holds the colour model shared by the controller's
// interface: parsing and validating hex values, deriving readable
// foregrounds for swatches, and the built-in saved colours list.
package colour

import (
	"fmt"
	"strconv"
	"strings"
)

// Colour is a named RGB colour. Hex is always normalised to "#RRGGBB"
// with uppercase digits.
type Colour struct {
	Name string
	Hex  string
}

// Parse validates a hex value and returns a normalised Colour. The leading
// "#" is optional and digits may be in either case.
func Parse(name, hex string) (Colour, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(trimmed) != 6 {
		return Colour{}, fmt.Errorf("invalid colour %q: expected 6 hex digits", hex)
	}
	for _, r := range trimmed {
		if !isHexDigit(r) {
			return Colour{}, fmt.Errorf("invalid colour %q: %q is not a hex digit", hex, r)
		}
	}
	return Colour{
		Name: strings.TrimSpace(name),
		Hex:  "#" + strings.ToUpper(trimmed),
	}, nil
}

func isHexDigit(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'f':
		return true
	case r >= 'A' && r <= 'F':
		return true
	}
	return false
}

// RGB returns the red, green and blue components.
func (c Colour) RGB() (r, g, b uint8) {
	r = hexByte(c.Hex[1:3])
	g = hexByte(c.Hex[3:5])
	b = hexByte(c.Hex[5:7])
	return r, g, b
}

func hexByte(s string) uint8 {
	v, _ := strconv.ParseUint(s, 16, 8)
	return uint8(v)
}

// Luminance returns the perceived brightness of the colour in the range
// 0 (black) to 1 (white), using the ITU-R BT.601 weights.
func (c Colour) Luminance() float64 {
	r, g, b := c.RGB()
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
}

// ContrastHex returns black or white, whichever is readable on top of
// this colour. Used as the foreground when rendering swatches.
func (c Colour) ContrastHex() string {
	if c.Luminance() > 0.5 {
		return "#000000"
	}
	return "#FFFFFF"
}

// String implements fmt.Stringer.
func (c Colour) String() string {
	if c.Name == "" {
		return c.Hex
	}
	return c.Name + " " + c.Hex
}

// Defaults returns the saved colours every session starts with. The slice
// is freshly allocated so callers may edit it freely.
func Defaults() []Colour {
	return []Colour{
		{Name: "White", Hex: "#FFFFFF"},
		{Name: "Red", Hex: "#FF0000"},
		{Name: "Orange", Hex: "#FFA500"},
		{Name: "Yellow", Hex: "#FFFF00"},
		{Name: "Signature Green", Hex: "#00FF00"},
		{Name: "Aqua", Hex: "#00FFFF"},
		{Name: "Blue", Hex: "#0000FF"},
		{Name: "Purple", Hex: "#8000FF"},
		{Name: "Pink", Hex: "#FF00FF"},
		{Name: "Grey", Hex: "#808080"},
		{Name: "Black", Hex: "#000000"},
	}
}
