// Package fixture encodes the state of each supported light into its DMX
// channel block.
package fixture

import (
	"lightwave/lib/color"
	"lightwave/lib/dmx"
)

// rgbw returns the color slots for fixtures where a lit white emitter
// drives every slot.
func rgbw(c color.Color) (r, g, b, w byte) {
	if c.W > 0 {
		v := dmx.Byte(c.W)
		return v, v, v, v
	}
	return dmx.Byte(c.R), dmx.Byte(c.G), dmx.Byte(c.B), 0
}

func putRGB(buf []byte, c color.Color) {
	buf[0], buf[1], buf[2], _ = rgbw(c)
}

func putRGBW(buf []byte, c color.Color) {
	buf[0], buf[1], buf[2], buf[3] = rgbw(c)
}
