package fixture

import (
	"lightwave/lib/color"
	"lightwave/lib/dmx"
)

const BarSize = 7

type Bar struct {
	Color color.Color
}

func (b Bar) Size() int { return BarSize }

// Preset, strobe and mode channels (3-5) are left at zero.
func (b Bar) Encode(buf []byte) {
	out := dmx.Block(buf, BarSize)
	putRGB(out[0:3], b.Color)
	out[6] = dmx.Byte(b.Color.A)
}
