package show

import (
	"math"

	"lightwave/lib/color"
	"lightwave/lib/fixture"
	"lightwave/lib/fx"
	"lightwave/lib/rig"
)

// Mode names shared by several groups.
const (
	ModeColor0 = "color0"
	ModeColor1 = "color1"
	ModeOff    = "off"
	ModeNone   = "none"
	ModeStrobe = "strobe"
)

const (
	ParSpotlight   = "spotlight"
	ParUpDown      = "up_down"
	ParStrobeAlt1  = "strobe_alt1"
	ParStrobeRoll1 = "strobe_roll1"

	BeamRoll = "roll"

	BeamWaveY     = "wave_y"
	BeamSpreadOut = "spread_out"
	BeamSpreadIn  = "spread_in"
	BeamOut       = "out"
	BeamCross     = "cross"
	BeamSquare    = "square"

	SpiderUp        = "up"
	SpiderAlternate = "alternate"
	SpiderWave      = "wave"
	SpiderSnap      = "snap"

	LaserWaveY  = "wave_y"
	LaserRotate = "rotate"
)

var (
	parColors      = []string{ModeColor0, ModeColor1, ModeOff, ParSpotlight, ParUpDown, ParStrobeAlt1, ParStrobeRoll1}
	beamColors     = []string{ModeColor0, ModeColor1, ModeOff, BeamRoll}
	beamPatterns   = []string{ModeNone, BeamWaveY, BeamSpreadOut, BeamSpreadIn, BeamOut, BeamCross, BeamSquare}
	flashColors    = []string{ModeOff, ModeColor0, ModeStrobe}
	spiderColors   = []string{ModeColor0, ModeColor1, ModeOff}
	spiderPatterns = []string{ModeNone, SpiderUp, SpiderAlternate, SpiderWave, SpiderSnap}
	laserPositions = []string{ModeNone, LaserWaveY, LaserRotate}
)

// gate reports whether a strobe of the given duty is lit for pd shifted by
// offset periods.
func gate(s *State, pd fx.Pd, offset, duty float64) bool {
	return s.Snapshot().Shift(pd, offset).Phase(pd) < duty
}

func slotColor(s *State, kind string) color.Color {
	switch kind {
	case ModeColor0:
		return s.Color(Slot0)
	case ModeColor1:
		return s.Color(Slot1)
	}
	return color.Off
}

func sine(p float64) float64 { return math.Sin(2 * math.Pi * p) }

type Pars struct {
	Color Mode
}

func (p *Pars) Reset() { p.Color = mode(ModeColor0) }

func (p *Pars) Render(s *State, l *rig.Lights) {
	for i := range l.Pars {
		l.Pars[i].Color = p.color(s, i)
	}
}

func (p *Pars) color(s *State, i int) color.Color {
	m := p.Color
	switch m.Kind {
	case ParSpotlight:
		if i == rig.NumPars/2-1 || i == rig.NumPars/2 {
			return s.Color(Slot1)
		}
		return color.Off
	case ParUpDown:
		if i%2 == 0 {
			return s.Color(Slot0)
		}
		return s.Color(Slot1)
	case ParStrobeAlt1:
		off := 0.5 * float64(i%2)
		if gate(s, m.Pd, off, m.Duty) {
			return s.ColorPhase(Slot1, m.Pd, off)
		}
		return color.Off
	case ParStrobeRoll1:
		off := -m.Offset * float64(i)
		if gate(s, m.Pd, off, m.Duty) {
			return s.ColorPhase(Slot1, m.Pd, off)
		}
		return color.Off
	}
	return slotColor(s, m.Kind)
}

type Beams struct {
	Color   Mode
	Pattern Mode
	Ring    fixture.BeamRing
}

func (b *Beams) Reset() {
	b.Color = mode(ModeColor0)
	b.Pattern = mode(ModeNone)
	b.Ring = fixture.RingOff
}

func (b *Beams) Render(s *State, l *rig.Lights) {
	for i := range l.Beams {
		beam := &l.Beams[i]
		beam.Color = b.color(s, i)
		beam.Speed = 1 - dmxFr(s.Fr0)
		beam.Ring = b.Ring
		b.aim(s, i, beam)
	}
}

func (b *Beams) color(s *State, i int) color.Color {
	m := b.Color
	if m.Kind == BeamRoll {
		off := -m.Offset * float64(i)
		if gate(s, m.Pd, off, m.Duty) {
			return s.ColorPhase(Slot1, m.Pd, off).AMul(m.Alpha)
		}
		return color.Off
	}
	return slotColor(s, m.Kind)
}

// spread is a beam's position relative to the center of the row, -1.5 to
// 1.5.
func spread(i int) float64 { return float64(i) - float64(rig.NumBeams-1)/2 }

func (b *Beams) aim(s *State, i int, beam *fixture.Beam) {
	const center = 2.0 / 3
	m := b.Pattern
	switch m.Kind {
	case BeamWaveY:
		off := float64(i) / rig.NumBeams
		beam.Pitch = 0.5 + 0.25*sine(s.Snapshot().Shift(m.Pd, off).Phase(m.Pd))
	case BeamSpreadOut:
		beam.Yaw = center + 0.1*spread(i)
		beam.Pitch = 0.25
	case BeamSpreadIn:
		beam.Yaw = center - 0.1*spread(i)
		beam.Pitch = 0.25
	case BeamOut:
		beam.Pitch = 0.5
	case BeamCross:
		if i%2 == 0 {
			beam.Yaw = center + 0.15
		} else {
			beam.Yaw = center - 0.15
		}
		beam.Pitch = 0.35
	case BeamSquare:
		if pmod(s.Step(m.Pd)+i, 2) == 0 {
			beam.Pitch = 0.2
		} else {
			beam.Pitch = 0.6
		}
	}
}

func dmxFr(x float64) float64 { return min(max(x, 0), 1) }

func pmod(a, n int) int { return (a%n + n) % n }

// flash renders the off/color0/strobe modes shared by bars and the strobe.
func flash(s *State, m Mode) color.Color {
	switch m.Kind {
	case ModeColor0:
		return s.Color(Slot0)
	case ModeStrobe:
		if gate(s, m.Pd, 0, m.Duty) {
			return s.Color(Slot0).AMul(m.Alpha)
		}
	}
	return color.Off
}

type Bars struct {
	Color Mode
}

func (b *Bars) Reset() { b.Color = mode(ModeOff) }

func (b *Bars) Render(s *State, l *rig.Lights) {
	c := flash(s, b.Color)
	for i := range l.Bars {
		l.Bars[i].Color = c
	}
}

type Strobes struct {
	Color Mode
}

func (st *Strobes) Reset() { st.Color = mode(ModeOff) }

func (st *Strobes) Render(s *State, l *rig.Lights) {
	l.Strobe.Color = flash(s, st.Color)
}

type Spiders struct {
	Color   Mode
	Pattern Mode
}

func (sp *Spiders) Reset() {
	sp.Color = mode(ModeColor0)
	sp.Pattern = mode(ModeNone)
}

var snapStops = [4]float64{0, 2.0 / 3, 1.0 / 3, 1}

func (sp *Spiders) Render(s *State, l *rig.Lights) {
	c := slotColor(s, sp.Color.Kind)
	m := sp.Pattern
	for j := range l.Spiders {
		spider := &l.Spiders[j]
		spider.Color0, spider.Color1 = c, c
		switch m.Kind {
		case ModeNone:
			spider.Pos0, spider.Pos1 = 0.5, 0.5
		case SpiderUp:
			spider.Pos0, spider.Pos1 = 0, 0
		case SpiderAlternate:
			p := float64(pmod(s.Step(m.Pd)+j, 2))
			spider.Pos0, spider.Pos1 = p, 1-p
		case SpiderWave:
			w := sine(s.Snapshot().Shift(m.Pd, 0.5*float64(j)).Phase(m.Pd))
			spider.Pos0, spider.Pos1 = 0.5+0.5*w, 0.5-0.5*w
		case SpiderSnap:
			k := s.Step(m.Pd) + j
			spider.Pos0 = snapStops[pmod(k, len(snapStops))]
			spider.Pos1 = snapStops[pmod(k+2, len(snapStops))]
		}
	}
}

// Lasers keeps its selection across scene resets; only Show.Init clears it.
type Lasers struct {
	Active  bool
	Pattern fixture.LaserPattern
	Color   fixture.LaserColor
	Pos     Mode
}

func (lz *Lasers) Reset() {
	lz.Active = false
	lz.Pattern = fixture.PatternSquare
	lz.Color = fixture.LaserWhite
	lz.Pos = mode(ModeNone)
}

// Render keeps the laser dark while the global dimmer is at zero.
func (lz *Lasers) Render(s *State, l *rig.Lights) {
	out := fixture.DefaultLaser()
	out.Active = lz.Active && s.Dimmer() > 0
	out.Pattern = lz.Pattern
	out.Color = lz.Color
	out.Scale = dmxFr(s.Fr1)
	m := lz.Pos
	switch m.Kind {
	case LaserWaveY:
		out.Y = 0.5 + 0.5*sine(s.Phase(m.Pd))
	case LaserRotate:
		out.Rotate = s.Phase(m.Pd)
	}
	l.Laser = out
}
