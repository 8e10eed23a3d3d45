// Package show holds the live show state, the scene table bound to the
// Launchpad grid, and the per-group logic that turns state into fixture
// values each frame.
package show

import (
	"fmt"
	"math"

	"lightwave/lib/color"
	"lightwave/lib/fixture"
	"lightwave/lib/fx"
)

// PhraseBeats is the length of the musical phrase Phi wraps at.
const PhraseBeats = 16

type ColorMode int

const (
	ColorOther ColorMode = iota
	ColorRed
	ColorGreen
	ColorBlue
)

var colorModeNames = map[ColorMode]string{
	ColorOther: "other",
	ColorRed:   "red",
	ColorGreen: "green",
	ColorBlue:  "blue",
}

func (m ColorMode) String() string {
	if n, ok := colorModeNames[m]; ok {
		return n
	}
	return fmt.Sprintf("ColorMode(%d)", int(m))
}

func (m *ColorMode) UnmarshalText(b []byte) error {
	for k, v := range colorModeNames {
		if v == string(b) {
			*m = k
			return nil
		}
	}
	return fmt.Errorf("show: unknown color mode %q", b)
}

// Laser is the laser diode selection matching the mode.
func (m ColorMode) Laser() fixture.LaserColor {
	switch m {
	case ColorRed:
		return fixture.LaserRed
	case ColorGreen:
		return fixture.LaserGreen
	case ColorBlue:
		return fixture.LaserBlue
	}
	return fixture.LaserWhite
}

// Slot picks one of the two color/map pairs.
type Slot int

const (
	Slot0 Slot = iota
	Slot1
)

// State is everything a frame is rendered from. It is owned by the control
// loop goroutine.
type State struct {
	// T0 is the wall-clock time since start; T is show time, which follows
	// T0 or the DJ software depending on the clock source.
	T0     float64
	T      float64
	Phi    float64
	PhiMul float64
	Bpm    float64

	VizPd       fx.Pd
	VizBeat     bool
	VizBeatLast bool
	VizAlpha    float64

	ColorMode ColorMode
	Color0    fx.ColorOp
	Color1    fx.ColorOp
	Map0      fx.ColorMapOp
	Map1      fx.ColorMapOp

	Fr0 float64
	Fr1 float64

	Off   bool
	Alpha float64
}

func NewState() *State {
	return &State{
		PhiMul:   1,
		Bpm:      120,
		VizPd:    fx.P(1, 1),
		VizBeat:  true,
		VizAlpha: 1,
		Color0:   fx.Op(fx.Value{Color: color.White}),
		Color1:   fx.Op(fx.Value{Color: color.White}),
		Map0:     fx.Identity,
		Map1:     fx.Identity,
		Alpha:    1,
	}
}

func (s *State) Snapshot() fx.Snapshot {
	return fx.Snapshot{T: s.T, Phi: s.Phi, Bpm: s.Bpm, PhiMul: s.PhiMul}
}

// Phase is the position within pd at the current frame.
func (s *State) Phase(pd fx.Pd) float64 {
	return s.Snapshot().Phase(pd)
}

// Step counts whole periods of pd since the start of the phrase.
func (s *State) Step(pd fx.Pd) int {
	span := s.Snapshot().Span(pd)
	if span <= 0 {
		return 0
	}
	return int(math.Floor(s.Phi / span))
}

func (s *State) ops(slot Slot) (fx.ColorOp, fx.ColorMapOp) {
	if slot == Slot1 {
		return s.Color1, s.Map1
	}
	return s.Color0, s.Map0
}

// Color evaluates a slot's color op through its map.
func (s *State) Color(slot Slot) color.Color {
	return s.colorAt(slot, s.Snapshot())
}

// ColorPhase evaluates a slot against the snapshot shifted by offset
// periods of pd, so one group can lead or trail another.
func (s *State) ColorPhase(slot Slot, pd fx.Pd, offset float64) color.Color {
	return s.colorAt(slot, s.Snapshot().Shift(pd, offset))
}

func (s *State) colorAt(slot Slot, snap fx.Snapshot) color.Color {
	op, m := s.ops(slot)
	return m.Apply(snap, op.Apply(snap))
}

// BindColor replaces a slot's color op, starting any one-shot effects now.
func (s *State) BindColor(slot Slot, op fx.ColorOp) {
	op = op.Activate(s.Snapshot())
	if slot == Slot1 {
		s.Color1 = op
	} else {
		s.Color0 = op
	}
}

// BindMap replaces a slot's map, starting any one-shot effects now.
func (s *State) BindMap(slot Slot, m fx.ColorMapOp) {
	m = m.Activate(s.Snapshot())
	if slot == Slot1 {
		s.Map1 = m
	} else {
		s.Map0 = m
	}
}

// VizSeconds is the visualizer period in seconds.
func (s *State) VizSeconds() float64 {
	if s.Bpm <= 0 {
		return 0
	}
	return 60 / s.Bpm * s.VizPd.Fr() * s.PhiMul
}

// VizBeatEdge reports whether the visualizer beat square wave rose since
// the previous call. It only fires while VizBeat is set.
func (s *State) VizBeatEdge() bool {
	if !s.VizBeat {
		return false
	}
	high := s.Phase(s.VizPd) < 0.5
	edge := high && !s.VizBeatLast
	s.VizBeatLast = high
	return edge
}

// Dimmer is the global brightness applied after every group has rendered.
func (s *State) Dimmer() float64 {
	if s.Off {
		return 0
	}
	return s.Alpha
}
