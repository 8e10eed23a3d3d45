package fixture

import (
	"fmt"
	"strconv"

	"lightwave/lib/color"
	"lightwave/lib/dmx"
)

const BeamSize = 15

type BeamMode byte

const (
	BeamManual     BeamMode = 0
	BeamColorCycle BeamMode = 159
	BeamAuto       BeamMode = 60
)

// BeamRing selects the LED ring effect. Values outside the named set are
// sent to the fixture as-is.
type BeamRing byte

const (
	RingOff         BeamRing = 0
	RingRed         BeamRing = 4
	RingGreen       BeamRing = 22
	RingBlue        BeamRing = 36
	RingYellow      BeamRing = 56
	RingPurple      BeamRing = 74
	RingTeal        BeamRing = 84
	RingWhite       BeamRing = 104
	RingRedYellow   BeamRing = 116
	RingRedPurple   BeamRing = 128
	RingRedWhite    BeamRing = 140
	RingGreenYellow BeamRing = 156
	RingGreenBlue   BeamRing = 176
	RingGreenWhite  BeamRing = 192
	RingBluePurple  BeamRing = 206
	RingBlueTeal    BeamRing = 216
	RingBlueWhite   BeamRing = 242
	RingCycle       BeamRing = 248
)

var ringNames = map[string]BeamRing{
	"off":          RingOff,
	"red":          RingRed,
	"green":        RingGreen,
	"blue":         RingBlue,
	"yellow":       RingYellow,
	"purple":       RingPurple,
	"teal":         RingTeal,
	"white":        RingWhite,
	"red_yellow":   RingRedYellow,
	"red_purple":   RingRedPurple,
	"red_white":    RingRedWhite,
	"green_yellow": RingGreenYellow,
	"green_blue":   RingGreenBlue,
	"green_white":  RingGreenWhite,
	"blue_purple":  RingBluePurple,
	"blue_teal":    RingBlueTeal,
	"blue_white":   RingBlueWhite,
	"cycle":        RingCycle,
}

// ParseRing accepts a ring name or a raw DMX value 0-255.
func ParseRing(name string) (BeamRing, error) {
	if r, ok := ringNames[name]; ok {
		return r, nil
	}
	if n, err := strconv.ParseUint(name, 10, 8); err == nil {
		return BeamRing(n), nil
	}
	return 0, fmt.Errorf("fixture: unknown beam ring %q", name)
}

// Beam is a moving-head beam light. Yaw and pitch are normalized; the yaw
// range is limited to the upper two thirds of the fixture's travel.
type Beam struct {
	Mode  BeamMode
	Pitch float64
	Yaw   float64
	Speed float64
	Color color.Color
	Ring  BeamRing
}

func DefaultBeam() Beam {
	return Beam{
		Mode:  BeamManual,
		Yaw:   2.0 / 3,
		Speed: 1,
		Ring:  RingOff,
	}
}

func (b Beam) Size() int { return BeamSize }

func (b Beam) Encode(buf []byte) {
	out := dmx.Block(buf, BeamSize)
	out[0] = dmx.Byte(dmx.Lerp(dmx.Clamp(b.Yaw), 1.0/3, 1))
	out[2] = dmx.Byte(b.Pitch)
	out[4] = dmx.Byte(1 - b.Speed)
	out[5] = dmx.Byte(b.Color.A)
	putRGBW(out[7:11], b.Color)
	out[12] = byte(b.Mode)
	out[14] = byte(b.Ring)
}
