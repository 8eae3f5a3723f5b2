package molecule

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ParseColor parses a CSS color string. Supported forms are hex
// (#rgb, #rrggbb, #rrggbbaa), CSS color names ("brown", "steelblue",
// "transparent"), and rgb()/rgba() functional notation with 0-255 channels
// and a 0-1 alpha.
func ParseColor(s string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "":
		return Color{}, fmt.Errorf("%w: empty color", ErrInvalidArgument)
	case v == "transparent":
		return Color{}, nil
	case strings.HasPrefix(v, "#"):
		return parseHexColor(v)
	case strings.HasPrefix(v, "rgb"):
		return parseFuncColor(v)
	}
	if c, ok := colornames.Map[v]; ok {
		return Color{
			R: float64(c.R) / 255,
			G: float64(c.G) / 255,
			B: float64(c.B) / 255,
			A: float64(c.A) / 255,
		}, nil
	}
	return Color{}, fmt.Errorf("%w: unknown color %q", ErrInvalidArgument, s)
}

// MustParseColor is like ParseColor but panics on error. Intended for
// package-level color literals.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parseHexColor(v string) (Color, error) {
	alpha := 1.0
	if len(v) == 9 {
		a, err := strconv.ParseUint(v[7:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: bad alpha in %q", ErrInvalidArgument, v)
		}
		alpha = float64(a) / 255
		v = v[:7]
	}
	c, err := colorful.Hex(v)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return Color{R: c.R, G: c.G, B: c.B, A: alpha}, nil
}

// parseFuncColor handles rgb(r, g, b) and rgba(r, g, b, a).
func parseFuncColor(v string) (Color, error) {
	open := strings.IndexByte(v, '(')
	if open < 0 || !strings.HasSuffix(v, ")") {
		return Color{}, fmt.Errorf("%w: malformed color %q", ErrInvalidArgument, v)
	}
	name := strings.TrimSpace(v[:open])
	parts := strings.Split(v[open+1:len(v)-1], ",")

	want := 3
	if name == "rgba" {
		want = 4
	} else if name != "rgb" {
		return Color{}, fmt.Errorf("%w: unsupported color function %q", ErrInvalidArgument, name)
	}
	if len(parts) != want {
		return Color{}, fmt.Errorf("%w: %s expects %d components, got %d", ErrInvalidArgument, name, want, len(parts))
	}

	var ch [4]float64
	ch[3] = 1
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Color{}, fmt.Errorf("%w: component %d of %q: %v", ErrInvalidArgument, i, v, err)
		}
		if i < 3 {
			f /= 255
		}
		ch[i] = clamp01(f)
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}
