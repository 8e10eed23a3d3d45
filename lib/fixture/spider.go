package fixture

import (
	"lightwave/lib/color"
	"lightwave/lib/dmx"
)

const SpiderSize = 15

// Spider is a two-head moving effect. The fixture has a single dimmer
// channel, driven by the first head's alpha.
type Spider struct {
	Color0 color.Color
	Pos0   float64
	Color1 color.Color
	Pos1   float64
}

func (s Spider) Size() int { return SpiderSize }

func (s Spider) Encode(buf []byte) {
	b := dmx.Block(buf, SpiderSize)
	b[0] = dmx.Byte(s.Pos0)
	b[1] = dmx.Byte(s.Pos1)
	b[2] = dmx.Byte(s.Color0.A)
	putRGBW(b[4:8], s.Color0)
	putRGBW(b[8:12], s.Color1)
}
