package fixture

import (
	"lightwave/lib/color"
	"lightwave/lib/dmx"
)

const ParSize = 8

type Par struct {
	Color color.Color
}

func (p Par) Size() int { return ParSize }

func (p Par) Encode(buf []byte) {
	b := dmx.Block(buf, ParSize)
	b[3] = dmx.Byte(p.Color.A)
	b[4] = dmx.Byte(p.Color.R)
	b[5] = dmx.Byte(p.Color.G)
	b[6] = dmx.Byte(p.Color.B)
	b[7] = dmx.Byte(p.Color.W)
}
