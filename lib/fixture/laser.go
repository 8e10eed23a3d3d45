package fixture

import (
	"fmt"
	"sort"

	"lightwave/lib/dmx"
)

const LaserSize = 10

// LaserColor is the fixture's color channel byte.
type LaserColor byte

var mixCodes = [7]byte{0, 10, 20, 28, 38, 50, 58}

// LaserRGB selects a combination of the red, green and blue diodes.
func LaserRGB(r, g, b bool) LaserColor {
	switch {
	case r && g && b:
		return 64
	case r && g:
		return 86
	case r && b:
		return 122
	case g && b:
		return 104
	case r:
		return 76
	case g:
		return 98
	case b:
		return 116
	}
	return 0
}

// LaserMix selects one of the fixture's seven multicolor programs.
func LaserMix(i int) LaserColor {
	i %= len(mixCodes)
	if i < 0 {
		i += len(mixCodes)
	}
	return LaserColor(mixCodes[i])
}

var (
	LaserRed   = LaserRGB(true, false, false)
	LaserGreen = LaserRGB(false, true, false)
	LaserBlue  = LaserRGB(false, false, true)
	LaserWhite = LaserRGB(true, true, true)
)

// LaserStroke draws the pattern either solid or dotted; Fr is the fill
// fraction.
type LaserStroke struct {
	Dots bool
	Fr   float64
}

func Solid(fr float64) LaserStroke { return LaserStroke{Fr: fr} }
func Dots(fr float64) LaserStroke  { return LaserStroke{Dots: true, Fr: fr} }

func (s LaserStroke) Byte() byte {
	if s.Dots {
		return dmx.LerpByte(1-s.Fr, 128, 255)
	}
	return dmx.LerpByte(1-s.Fr, 0, 127)
}

// LaserPattern is the fixture's built-in pattern code.
type LaserPattern byte

const (
	PatternSquare       LaserPattern = 0
	PatternSquareWide   LaserPattern = 232
	PatternSquareXWide  LaserPattern = 255
	PatternSquareBlock  LaserPattern = 224
	PatternCircle       LaserPattern = 6
	PatternCircleWide   LaserPattern = 82
	PatternCircleDash   LaserPattern = 138
	PatternCircleQuad   LaserPattern = 144
	PatternCircleCircle LaserPattern = 146
	PatternCircleSquare LaserPattern = 162
	PatternCircleX      LaserPattern = 26
	PatternCircleY      LaserPattern = 32
	PatternLineX        LaserPattern = 12
	PatternLineY        LaserPattern = 16
	PatternLineXY       LaserPattern = 22
	PatternLineDX       LaserPattern = 46
	PatternLineDY       LaserPattern = 52
	PatternLine2X       LaserPattern = 56
	PatternLine2Y       LaserPattern = 62
	PatternLinePenta    LaserPattern = 172
	PatternLineStair    LaserPattern = 182
	PatternTri          LaserPattern = 36
	PatternTriX         LaserPattern = 42
	PatternTriY         LaserPattern = 100
	PatternTri3d        LaserPattern = 152
	PatternTriTri       LaserPattern = 168
	PatternTriCircle    LaserPattern = 214
	PatternTriWing      LaserPattern = 218
	PatternTriArch      LaserPattern = 224
	PatternPenta        LaserPattern = 186
	PatternSquig1       LaserPattern = 66
	PatternSquig2       LaserPattern = 72
	PatternThree        LaserPattern = 94
	PatternTwo          LaserPattern = 112
	PatternOne          LaserPattern = 116
	PatternMusic        LaserPattern = 76
	PatternTree         LaserPattern = 86
	PatternStar         LaserPattern = 104
	PatternSin          LaserPattern = 108
	PatternHeart        LaserPattern = 122
	PatternElephant     LaserPattern = 126
	PatternApple        LaserPattern = 132
	PatternPlus         LaserPattern = 156
	PatternPlusOval     LaserPattern = 194
	PatternPlusArrow    LaserPattern = 196
	PatternPlusDia      LaserPattern = 250
	PatternArrow        LaserPattern = 204
	PatternArrowInvert  LaserPattern = 228
	PatternHourglass1   LaserPattern = 238
	PatternHourglass2   LaserPattern = 210
)

var patternNames = map[string]LaserPattern{
	"square":        PatternSquare,
	"square_wide":   PatternSquareWide,
	"square_xwide":  PatternSquareXWide,
	"square_block":  PatternSquareBlock,
	"circle":        PatternCircle,
	"circle_wide":   PatternCircleWide,
	"circle_dash":   PatternCircleDash,
	"circle_quad":   PatternCircleQuad,
	"circle_circle": PatternCircleCircle,
	"circle_square": PatternCircleSquare,
	"circle_x":      PatternCircleX,
	"circle_y":      PatternCircleY,
	"line_x":        PatternLineX,
	"line_y":        PatternLineY,
	"line_xy":       PatternLineXY,
	"line_dx":       PatternLineDX,
	"line_dy":       PatternLineDY,
	"line_2x":       PatternLine2X,
	"line_2y":       PatternLine2Y,
	"line_penta":    PatternLinePenta,
	"line_stair":    PatternLineStair,
	"tri":           PatternTri,
	"tri_x":         PatternTriX,
	"tri_y":         PatternTriY,
	"tri_3d":        PatternTri3d,
	"tri_tri":       PatternTriTri,
	"tri_circle":    PatternTriCircle,
	"tri_wing":      PatternTriWing,
	"tri_arch":      PatternTriArch,
	"penta":         PatternPenta,
	"squig1":        PatternSquig1,
	"squig2":        PatternSquig2,
	"three":         PatternThree,
	"two":           PatternTwo,
	"one":           PatternOne,
	"music":         PatternMusic,
	"tree":          PatternTree,
	"star":          PatternStar,
	"sin":           PatternSin,
	"heart":         PatternHeart,
	"elephant":      PatternElephant,
	"apple":         PatternApple,
	"plus":          PatternPlus,
	"plus_oval":     PatternPlusOval,
	"plus_arrow":    PatternPlusArrow,
	"plus_dia":      PatternPlusDia,
	"arrow":         PatternArrow,
	"arrow_invert":  PatternArrowInvert,
	"hourglass1":    PatternHourglass1,
	"hourglass2":    PatternHourglass2,
}

func ParsePattern(name string) (LaserPattern, error) {
	p, ok := patternNames[name]
	if !ok {
		return 0, fmt.Errorf("fixture: unknown laser pattern %q", name)
	}
	return p, nil
}

func PatternNames() []string {
	out := make([]string, 0, len(patternNames))
	for k := range patternNames {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Laser is a pattern laser. Scale is the projected size.
type Laser struct {
	Active  bool
	Pattern LaserPattern
	Color   LaserColor
	Stroke  LaserStroke
	Rotate  float64
	XFlip   float64
	YFlip   float64
	X       float64
	Y       float64
	Scale   float64
}

func DefaultLaser() Laser {
	return Laser{
		Pattern: LaserPattern(0),
		Color:   LaserWhite,
		Stroke:  Solid(1),
	}
}

func (l Laser) Size() int { return LaserSize }

func (l Laser) Encode(buf []byte) {
	b := dmx.Block(buf, LaserSize)
	if l.Active {
		b[0] = 64
	}
	b[1] = byte(l.Pattern)
	b[2] = dmx.LerpByte(l.Rotate, 0, 127)
	b[3] = dmx.LerpByte(l.YFlip, 0, 127)
	b[4] = dmx.LerpByte(l.XFlip, 0, 127)
	b[5] = dmx.LerpByte(l.X, 0, 127)
	b[6] = dmx.LerpByte(l.Y, 0, 127)
	b[7] = dmx.LerpByte(l.Scale, 0, 63)
	b[8] = byte(l.Color)
	b[9] = l.Stroke.Byte()
}
