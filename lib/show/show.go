package show

import (
	"log/slog"

	"lightwave/lib/fx"
	"lightwave/lib/launchpad"
	"lightwave/lib/rig"
)

// Show is the show state with every logic unit that reads or writes it.
type Show struct {
	State *State
	Table *Table

	Time    Time
	Pads    Pads
	Pars    Pars
	Beams   Beams
	Bars    Bars
	Strobes Strobes
	Spiders Spiders
	Lasers  Lasers

	log     *slog.Logger
	current *Scene
}

func New(t *Table, log *slog.Logger) *Show {
	if log == nil {
		log = slog.Default()
	}
	sh := &Show{Table: t, log: log.With("component", "show")}
	sh.Init()
	return sh
}

// Init returns everything, lasers and pad highlights included, to the
// power-on state. The clock source is kept.
func (sh *Show) Init() {
	sh.State = NewState()
	sh.Pads.Reset()
	sh.Lasers.Reset()
	sh.Reset()
	sh.current = nil
}

// Reset restores each fixture group's default mode and the visualizer
// settings. Bound effects, colors and fader values are kept.
func (sh *Show) Reset() {
	sh.Pars.Reset()
	sh.Beams.Reset()
	sh.Bars.Reset()
	sh.Strobes.Reset()
	sh.Spiders.Reset()

	s := sh.State
	s.VizPd = fx.P(1, 1)
	s.VizBeat = true
	s.VizAlpha = 1
}

// Press applies the scene bound to a grid pad.
func (sh *Show) Press(c launchpad.Coord) (*Scene, bool) {
	sc, ok := sh.Table.At(c)
	if !ok {
		return nil, false
	}
	sh.Apply(sc)
	return sc, true
}

func (sh *Show) Apply(sc *Scene) {
	s := sh.State
	if sc.Reset {
		sh.Reset()
	}
	if sc.ColorMode != nil {
		s.ColorMode = *sc.ColorMode
	}
	if sc.Color0 != nil {
		s.BindColor(Slot0, sc.Color0.Op())
	}
	if sc.Color1 != nil {
		s.BindColor(Slot1, sc.Color1.Op())
	}
	if sc.Map0 != nil {
		s.BindMap(Slot0, sc.Map0.Map())
	}
	if sc.Map1 != nil {
		s.BindMap(Slot1, sc.Map1.Map())
	}

	if g := sc.Pars; g != nil {
		setMode(&sh.Pars.Color, g.Color)
	}
	if g := sc.Beams; g != nil {
		setMode(&sh.Beams.Color, g.Color)
		setMode(&sh.Beams.Pattern, g.Pattern)
		if g.Ring != "" {
			sh.Beams.Ring = sc.ring
		}
	}
	if g := sc.Bars; g != nil {
		setMode(&sh.Bars.Color, g.Color)
	}
	if g := sc.Strobes; g != nil {
		setMode(&sh.Strobes.Color, g.Color)
	}
	if g := sc.Spiders; g != nil {
		setMode(&sh.Spiders.Color, g.Color)
		setMode(&sh.Spiders.Pattern, g.Pattern)
	}

	if lz := sc.Laser; lz != nil {
		if lz.Active != nil {
			sh.Lasers.Active = *lz.Active
		}
		if lz.Pattern != "" {
			sh.Lasers.Pattern = sc.pattern
		}
		setMode(&sh.Lasers.Pos, lz.Pos)
		sh.Lasers.Color = s.ColorMode.Laser()
	}

	if v := sc.Viz; v != nil {
		if v.Pd != nil {
			s.VizPd = *v.Pd
		}
		if v.Beat != nil {
			s.VizBeat = *v.Beat
		}
		if v.Alpha != nil {
			s.VizAlpha = *v.Alpha
		}
	}

	sh.Pads.Select(sc)
	sh.current = sc
	sh.log.Debug("scene", "name", sc.Name, "at", sc.Coord())
}

func setMode(dst *Mode, m *Mode) {
	if m != nil {
		*dst = *m
	}
}

// Current is the most recently applied scene, or nil.
func (sh *Show) Current() *Scene { return sh.current }

// Render fills l from the current state, one group at a time.
func (sh *Show) Render(l *rig.Lights) {
	s := sh.State
	sh.Pars.Render(s, l)
	sh.Beams.Render(s, l)
	sh.Bars.Render(s, l)
	sh.Strobes.Render(s, l)
	sh.Spiders.Render(s, l)
	sh.Lasers.Render(s, l)
}

// Output draws the grid, side and top LEDs.
func (sh *Show) Output(leds PadLEDs) {
	sh.Pads.Output(sh.State, sh.Table, leds)
	sh.Time.Output(sh.State, leds)
}
