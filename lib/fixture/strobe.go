package fixture

import (
	"lightwave/lib/color"
	"lightwave/lib/dmx"
)

const StrobeSize = 6

type Strobe struct {
	Color color.Color
}

func (s Strobe) Size() int { return StrobeSize }

func (s Strobe) Encode(buf []byte) {
	b := dmx.Block(buf, StrobeSize)
	b[0] = dmx.Byte(s.Color.A)
	putRGB(b[2:5], s.Color)
}
