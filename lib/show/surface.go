package show

import (
	"fmt"
	"math"

	"lightwave/lib/color"
	"lightwave/lib/launchpad"
	"lightwave/lib/osc"
)

// PadLEDs is the part of the Launchpad output the show draws on.
type PadLEDs interface {
	Set(c launchpad.Coord, col color.Color)
	SetSide(row int, col color.Color)
	SetTop(i int, col color.Color)
}

type ClockSource int

const (
	// ClockStatic derives time and phase from the wall clock and the beat
	// clock's tempo.
	ClockStatic ClockSource = iota
	// ClockOSC follows time, phase and tempo sent by the DJ software.
	ClockOSC
)

func (c ClockSource) String() string {
	if c == ClockOSC {
		return "osc"
	}
	return "static"
}

// OSC addresses followed in ClockOSC mode.
const (
	AddrTime    = "/vdj/time"
	AddrPhase16 = "/vdj/phase16"
	AddrBpm     = "/vdj/bpm"
)

// PhiMuls are the tempo multipliers on the first four top-row buttons.
var PhiMuls = [4]float64{0.5, 1, 2, 4}

// Time owns the clock source and the top-row tempo multiplier.
type Time struct {
	Source ClockSource
}

// Advance moves show time to t0 seconds. In ClockStatic mode the phase is
// derived from bpm; in ClockOSC mode only T0 changes.
func (tm *Time) Advance(s *State, t0, bpm float64) {
	s.T0 = t0
	if tm.Source != ClockStatic {
		return
	}
	s.T = t0
	s.Bpm = bpm
	s.Phi = math.Mod(t0*bpm/60, PhraseBeats)
}

// Follow applies a DJ software message. It reports whether the message was
// used; a clock message with a missing or invalid value is an error.
func (tm *Time) Follow(s *State, m osc.Message) (bool, error) {
	if tm.Source != ClockOSC {
		return false, nil
	}
	switch m.Addr {
	case AddrTime, AddrPhase16, AddrBpm:
	default:
		return false, nil
	}
	v, ok := m.Float(0)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return false, fmt.Errorf("show: %s needs a number, got %v", m.Addr, m.Args)
	}
	switch m.Addr {
	case AddrTime:
		s.T = v
	case AddrPhase16:
		s.Phi = v * PhraseBeats
	case AddrBpm:
		if v <= 0 {
			return false, fmt.Errorf("show: invalid tempo %v", v)
		}
		s.Bpm = v
	}
	return true, nil
}

func (tm *Time) Toggle() {
	if tm.Source == ClockStatic {
		tm.Source = ClockOSC
	} else {
		tm.Source = ClockStatic
	}
}

// Top handles a top-row press.
func (tm *Time) Top(s *State, i int) {
	if i >= 0 && i < len(PhiMuls) {
		s.PhiMul = PhiMuls[i]
	}
}

func (tm *Time) Output(s *State, leds PadLEDs) {
	for i, m := range PhiMuls {
		c := color.Off
		if s.PhiMul == m {
			c = color.Orange
		}
		leds.SetTop(i, c)
	}
}

// Pads tracks which scene of each highlight group is active and the
// current bar for the side-column metronome.
type Pads struct {
	active map[string]launchpad.Coord
	bar    uint16
}

func (p *Pads) Reset() {
	p.active = make(map[string]launchpad.Coord)
}

func (p *Pads) Select(sc *Scene) {
	if p.active == nil {
		p.Reset()
	}
	p.active[sc.Group] = sc.Coord()
}

// Active reports whether sc is the selected scene of its group.
func (p *Pads) Active(sc *Scene) bool {
	c, ok := p.active[sc.Group]
	return ok && c == sc.Coord()
}

// Bar records a bar index from the beat clock.
func (p *Pads) Bar(n uint16) { p.bar = n }

const idleAlpha = 0.15

// Output draws every bound scene, bright when active, and lights the side
// button for the current bar within an eight-bar phrase.
func (p *Pads) Output(s *State, t *Table, leds PadLEDs) {
	snap := s.Snapshot()
	for _, sc := range t.Scenes {
		c := hint(sc, s)
		if !p.Active(sc) {
			if c.IsWhite() {
				c = color.RGBWhite
			}
			c = c.Alpha(idleAlpha)
		}
		leds.Set(sc.Coord(), c)
	}
	live := s.Color0.Apply(snap).Alpha(1)
	for row := range launchpad.GridSize {
		c := color.Off
		if row == int(p.bar%launchpad.GridSize) {
			c = live
		}
		leds.SetSide(row, c)
	}
}

// hint is the pad color for a scene: its own color when it sets a fixed
// one, else the live primary color.
func hint(sc *Scene, s *State) color.Color {
	if sc.Color0 != nil {
		return sc.Color0.Op().Apply(s.Snapshot()).Alpha(1)
	}
	if sc.Laser != nil {
		return s.ColorMode.padColor()
	}
	return s.Color0.Apply(s.Snapshot()).Alpha(1)
}

func (m ColorMode) padColor() color.Color {
	switch m {
	case ColorRed:
		return color.Red
	case ColorGreen:
		return color.Lime
	case ColorBlue:
		return color.Blue
	}
	return color.White
}
