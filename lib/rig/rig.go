// Package rig holds the venue's full set of fixtures and writes them into a
// DMX universe.
package rig

import (
	"fmt"
	"sort"

	"lightwave/lib/color"
	"lightwave/lib/dmx"
	"lightwave/lib/fixture"
)

const (
	NumPars    = 10
	NumBeams   = 4
	NumBars    = 2
	NumSpiders = 2
)

// Lights is one frame of fixture state. The zero value is not useful; use
// New, which applies each fixture's defaults.
type Lights struct {
	Pars    [NumPars]fixture.Par
	Beams   [NumBeams]fixture.Beam
	Strobe  fixture.Strobe
	Bars    [NumBars]fixture.Bar
	Laser   fixture.Laser
	Spiders [NumSpiders]fixture.Spider
}

func New() *Lights {
	l := &Lights{Laser: fixture.DefaultLaser()}
	for i := range l.Beams {
		l.Beams[i] = fixture.DefaultBeam()
	}
	return l
}

// All sets the primary color of every fixture, including both spider heads.
func (l *Lights) All(c color.Color) *Lights {
	for i := range l.Pars {
		l.Pars[i].Color = c
	}
	for i := range l.Beams {
		l.Beams[i].Color = c
	}
	for i := range l.Bars {
		l.Bars[i].Color = c
	}
	l.Strobe.Color = c
	for i := range l.Spiders {
		l.Spiders[i].Color0 = c
		l.Spiders[i].Color1 = c
	}
	return l
}

// Brightness scales every fixture's alpha by fr.
func (l *Lights) Brightness(fr float64) {
	for i := range l.Pars {
		l.Pars[i].Color = l.Pars[i].Color.AMul(fr)
	}
	for i := range l.Beams {
		l.Beams[i].Color = l.Beams[i].Color.AMul(fr)
	}
	for i := range l.Bars {
		l.Bars[i].Color = l.Bars[i].Color.AMul(fr)
	}
	l.Strobe.Color = l.Strobe.Color.AMul(fr)
	for i := range l.Spiders {
		l.Spiders[i].Color0 = l.Spiders[i].Color0.AMul(fr)
		l.Spiders[i].Color1 = l.Spiders[i].Color1.AMul(fr)
	}
}

// Write encodes every fixture at its address in the layout.
func (l *Lights) Write(u *dmx.Universe, lay Layout) {
	for i, p := range l.Pars {
		u.Put(lay.Pars+i*fixture.ParSize, p)
	}
	for i, b := range l.Beams {
		u.Put(lay.Beams+i*fixture.BeamSize, b)
	}
	u.Put(lay.Strobe, l.Strobe)
	for i, b := range l.Bars {
		u.Put(lay.Bars+i*fixture.BarSize, b)
	}
	u.Put(lay.Laser, l.Laser)
	for i, s := range l.Spiders {
		u.Put(lay.Spiders+i*fixture.SpiderSize, s)
	}
}

// Layout gives the 1-based start address of each fixture group. Fixtures
// within a group are packed back to back.
type Layout struct {
	Pars    int `toml:"pars"`
	Beams   int `toml:"beams"`
	Strobe  int `toml:"strobe"`
	Bars    int `toml:"bars"`
	Laser   int `toml:"laser"`
	Spiders int `toml:"spiders"`
}

// VenueLayout is the addressing of the installed rig.
func VenueLayout() Layout {
	return Layout{
		Pars:    1,
		Beams:   81,
		Strobe:  142,
		Bars:    149,
		Laser:   164,
		Spiders: 175,
	}
}

// PackedLayout places every group back to back starting at address 1.
func PackedLayout() Layout {
	var lay Layout
	addr := 1
	for _, g := range lay.groups() {
		*g.start = addr
		addr += g.count * g.size
	}
	return lay
}

type group struct {
	name  string
	start *int
	count int
	size  int
}

func (lay *Layout) groups() []group {
	return []group{
		{"pars", &lay.Pars, NumPars, fixture.ParSize},
		{"beams", &lay.Beams, NumBeams, fixture.BeamSize},
		{"strobe", &lay.Strobe, 1, fixture.StrobeSize},
		{"bars", &lay.Bars, NumBars, fixture.BarSize},
		{"laser", &lay.Laser, 1, fixture.LaserSize},
		{"spiders", &lay.Spiders, NumSpiders, fixture.SpiderSize},
	}
}

// End returns the highest channel address the layout uses.
func (lay Layout) End() int {
	end := 0
	for _, g := range lay.groups() {
		end = max(end, *g.start+g.count*g.size-1)
	}
	return end
}

// Validate rejects groups that start before channel 1, overlap, or run past
// a universe of the given size.
func (lay Layout) Validate(size int) error {
	gs := lay.groups()
	sort.Slice(gs, func(i, j int) bool { return *gs[i].start < *gs[j].start })
	prevEnd := 0
	prev := ""
	for _, g := range gs {
		start := *g.start
		end := start + g.count*g.size - 1
		if start < 1 {
			return fmt.Errorf("layout: %s starts at %d", g.name, start)
		}
		if start <= prevEnd {
			return fmt.Errorf("layout: %s at %d overlaps %s ending at %d", g.name, start, prev, prevEnd)
		}
		if end > size {
			return fmt.Errorf("layout: %s ends at %d, universe has %d channels", g.name, end, size)
		}
		prevEnd, prev = end, g.name
	}
	return nil
}
