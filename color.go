package scenic

import "image/color"

// RGBA is a straight-alpha color with components in [0, 1].
// Colors stay straight (non-premultiplied) on the CPU side; the cover
// shader premultiplies at output and blending runs premultiplied.
type RGBA struct {
	R, G, B, A float64
}

// RGB creates an opaque color.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// Hex parses a hex color string. Accepted forms are "RGB", "RGBA",
// "RRGGBB" and "RRGGBBAA", with an optional leading '#'. Malformed
// input yields opaque black.
func Hex(s string) RGBA {
	if s != "" && s[0] == '#' {
		s = s[1:]
	}

	var r, g, b uint32
	a := uint32(255)

	switch len(s) {
	case 3:
		parseHexByte(s[0:1], &r)
		parseHexByte(s[1:2], &g)
		parseHexByte(s[2:3], &b)
		r, g, b = r*17, g*17, b*17
	case 4:
		parseHexByte(s[0:1], &r)
		parseHexByte(s[1:2], &g)
		parseHexByte(s[2:3], &b)
		parseHexByte(s[3:4], &a)
		r, g, b, a = r*17, g*17, b*17, a*17
	case 6:
		parseHexByte(s[0:2], &r)
		parseHexByte(s[2:4], &g)
		parseHexByte(s[4:6], &b)
	case 8:
		parseHexByte(s[0:2], &r)
		parseHexByte(s[2:4], &g)
		parseHexByte(s[4:6], &b)
		parseHexByte(s[6:8], &a)
	default:
		return RGBA{A: 1}
	}

	return RGBA{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}
}

func parseHexByte(s string, val *uint32) {
	*val = 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		*val *= 16
		switch {
		case '0' <= c && c <= '9':
			*val += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			*val += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			*val += uint32(c - 'A' + 10)
		default:
			return
		}
	}
}

// WithAlpha returns c with its alpha replaced by a.
func (c RGBA) WithAlpha(a float64) RGBA {
	return RGBA{R: c.R, G: c.G, B: c.B, A: a}
}

// MulAlpha returns c with its alpha scaled by k. Group opacity applies
// to paints this way during traversal.
func (c RGBA) MulAlpha(k float64) RGBA {
	return RGBA{R: c.R, G: c.G, B: c.B, A: c.A * k}
}

// Lerp linearly interpolates between c and other.
func (c RGBA) Lerp(other RGBA, t float64) RGBA {
	return RGBA{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
		A: c.A + (other.A-c.A)*t,
	}
}

// Color converts to the standard library color.Color.
func (c RGBA) Color() color.Color {
	return color.NRGBA{
		R: uint8(clamp01(c.R)*255 + 0.5),
		G: uint8(clamp01(c.G)*255 + 0.5),
		B: uint8(clamp01(c.B)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

// FromColor converts a standard library color.Color to RGBA.
func FromColor(c color.Color) RGBA {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return RGBA{}
	}
	// c.RGBA is alpha-premultiplied; divide it back out.
	af := float64(a) / 65535
	return RGBA{
		R: float64(r) / float64(a),
		G: float64(g) / float64(a),
		B: float64(b) / float64(a),
		A: af,
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Common colors.
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(1, 1, 1)
	Transparent = RGBA{}
)
