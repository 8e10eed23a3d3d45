package color

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Color is a fixture color with an alpha (intensity) channel. Channels are
// nominally in [0, 1]; encoders clamp. A non-zero W takes priority over RGB
// on fixtures that only support one or the other.
type Color struct {
	A float64 `json:"a" yaml:"a"`
	R float64 `json:"r" yaml:"r"`
	G float64 `json:"g" yaml:"g"`
	B float64 `json:"b" yaml:"b"`
	W float64 `json:"w" yaml:"w"`
}

func ARGBW(a, r, g, b, w float64) Color { return Color{A: a, R: r, G: g, B: b, W: w} }
func ARGB(a, r, g, b float64) Color     { return Color{A: a, R: r, G: g, B: b} }
func RGBW(r, g, b, w float64) Color     { return Color{A: 1, R: r, G: g, B: b, W: w} }
func RGB(r, g, b float64) Color         { return Color{A: 1, R: r, G: g, B: b} }
func AW(a, w float64) Color             { return Color{A: a, W: w} }
func W(w float64) Color                 { return Color{A: 1, W: w} }

// HSV builds an RGB color from hue, saturation and value in [0, 1].
func HSV(h, s, v float64) Color {
	k := func(off float64) float64 {
		x := fract(h+off)*6 - 3
		return v * mix(1, clamp(math.Abs(x)-1, 0, 1), s)
	}
	return RGB(k(1), k(2.0/3), k(1.0/3))
}

var (
	Off      = Color{}
	White    = W(1)
	RGBWhite = RGB(1, 1, 1)
	Red      = RGB(1, 0, 0)
	Orange   = RGB(1, 0.251, 0)
	Yellow   = RGB(1, 1, 0)
	Pea      = RGB(0.533, 1, 0)
	Lime     = RGB(0, 1, 0)
	Mint     = RGB(0, 1, 0.267)
	Cyan     = RGB(0, 0.8, 1)
	Blue     = RGB(0, 0, 1)
	Violet   = RGB(0.533, 0, 1)
	Magenta  = RGB(1, 0, 1)
	Pink     = RGB(1, 0.38, 0.8)
)

var named = map[string]Color{
	"off":     Off,
	"white":   White,
	"rgb":     RGBWhite,
	"red":     Red,
	"orange":  Orange,
	"yellow":  Yellow,
	"pea":     Pea,
	"lime":    Lime,
	"mint":    Mint,
	"cyan":    Cyan,
	"blue":    Blue,
	"violet":  Violet,
	"magenta": Magenta,
	"pink":    Pink,
}

// Named looks up one of the palette constants by its lowercase name.
func Named(name string) (Color, error) {
	c, ok := named[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Color{}, fmt.Errorf("color: unknown name %q", name)
	}
	return c, nil
}

// Names returns the palette names in sorted order.
func Names() []string {
	out := make([]string, 0, len(named))
	for k := range named {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Alpha returns c with its alpha replaced.
func (c Color) Alpha(a float64) Color {
	c.A = a
	return c
}

// AMul returns c with its alpha scaled by fr. Color channels are untouched.
func (c Color) AMul(fr float64) Color {
	c.A *= fr
	return c
}

func (c Color) IsWhite() bool {
	return c == White || c == RGBWhite
}

// PadRGB converts c for a pad surface LED. The palette whites report
// white=true so the caller can use the surface's native white; anything
// else is alpha-scaled RGB in the 7-bit MIDI range.
func (c Color) PadRGB() (white bool, r, g, b uint8) {
	if c.IsWhite() {
		return true, 0, 0, 0
	}
	return false, midi7(c.R * c.A), midi7(c.G * c.A), midi7(c.B * c.A)
}

// Bytes returns c as alpha-scaled 8-bit RGB. A pure white channel renders
// as grey at the same level.
func (c Color) Bytes() (r, g, b uint8) {
	if c.W > 0 {
		w := byte8(c.W * c.A)
		return w, w, w
	}
	return byte8(c.R * c.A), byte8(c.G * c.A), byte8(c.B * c.A)
}

func (c Color) String() string {
	for _, k := range Names() {
		if named[k] == c {
			return k
		}
	}
	return fmt.Sprintf("argbw(%.3g,%.3g,%.3g,%.3g,%.3g)", c.A, c.R, c.G, c.B, c.W)
}

func midi7(x float64) uint8 { return uint8(clamp(x, 0, 1) * 127) }
func byte8(x float64) uint8 { return uint8(clamp(x, 0, 1) * 255) }

func fract(x float64) float64 { return x - math.Floor(x) }

func mix(a, b, t float64) float64 { return a + (b-a)*t }

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
