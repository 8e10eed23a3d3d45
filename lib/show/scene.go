package show

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"lightwave/lib/fixture"
	"lightwave/lib/fx"
	"lightwave/lib/launchpad"
)

//go:embed scenes.yaml
var defaultScenes []byte

// GroupScene is the highlight group for scenes that don't name one.
const GroupScene = "scene"

// Group selects modes for one fixture group. Groups without motion leave
// Pattern unset.
type Group struct {
	Color   *Mode `yaml:"color"`
	Pattern *Mode `yaml:"pattern"`
	// Ring is the beam LED ring effect, a name or a raw byte.
	Ring string `yaml:"ring"`
}

type LaserScene struct {
	Active  *bool  `yaml:"active"`
	Pattern string `yaml:"pattern"`
	Pos     *Mode  `yaml:"pos"`
}

type Viz struct {
	Pd    *fx.Pd   `yaml:"pd"`
	Beat  *bool    `yaml:"beat"`
	Alpha *float64 `yaml:"alpha"`
	// SendBeat fires one visualizer beat when the scene is pressed.
	SendBeat bool `yaml:"send_beat"`
}

// Scene is one grid button. Unset fields leave the current state alone.
type Scene struct {
	At    [2]int `yaml:"at"`
	Name  string `yaml:"name"`
	Group string `yaml:"group"`
	Reset bool   `yaml:"reset"`

	ColorMode *ColorMode `yaml:"color_mode"`
	Color0    *Effect    `yaml:"color0"`
	Color1    *Effect    `yaml:"color1"`
	Map0      *Effect    `yaml:"map0"`
	Map1      *Effect    `yaml:"map1"`

	Pars    *Group      `yaml:"pars"`
	Beams   *Group      `yaml:"beams"`
	Bars    *Group      `yaml:"bars"`
	Strobes *Group      `yaml:"strobes"`
	Spiders *Group      `yaml:"spiders"`
	Laser   *LaserScene `yaml:"laser"`
	Viz     *Viz        `yaml:"viz"`

	pattern fixture.LaserPattern
	ring    fixture.BeamRing
}

func (sc *Scene) Coord() launchpad.Coord {
	return launchpad.Coord{X: sc.At[0], Y: sc.At[1]}
}

// Stages are the visualizer stage names bound to the Launch Control
// focus and control button rows.
type Stages struct {
	Focus   []string `yaml:"focus"`
	Control []string `yaml:"control"`
}

type Table struct {
	Scenes []*Scene `yaml:"scenes"`
	Stages Stages   `yaml:"stages"`

	byCoord map[launchpad.Coord]*Scene
}

// Default returns the scene table compiled into the binary.
func Default() (*Table, error) {
	return Parse(defaultScenes)
}

func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene table: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse decodes and validates a scene table. Unknown fields are errors.
func Parse(data []byte) (*Table, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var t Table
	if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse scene table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks every scene and builds the coordinate index.
func (t *Table) Validate() error {
	t.byCoord = make(map[launchpad.Coord]*Scene, len(t.Scenes))
	for _, sc := range t.Scenes {
		c := sc.Coord()
		if !c.Valid() {
			return fmt.Errorf("scene %q: position %v is off the grid", sc.Name, c)
		}
		if prev, ok := t.byCoord[c]; ok {
			return fmt.Errorf("scene %q: position %v already used by %q", sc.Name, c, prev.Name)
		}
		if sc.Group == "" {
			sc.Group = GroupScene
		}
		if err := sc.validate(); err != nil {
			return fmt.Errorf("scene %q at %v: %w", sc.Name, c, err)
		}
		t.byCoord[c] = sc
	}
	if len(t.Stages.Focus) > 8 || len(t.Stages.Control) > 8 {
		return fmt.Errorf("stages: at most 8 names per button row")
	}
	return nil
}

type modeCheck struct {
	where string
	m     *Mode
	kinds []string
}

func (sc *Scene) validate() error {
	var checks []modeCheck
	if g := sc.Pars; g != nil {
		checks = append(checks, modeCheck{"pars.color", g.Color, parColors})
	}
	if g := sc.Beams; g != nil {
		checks = append(checks,
			modeCheck{"beams.color", g.Color, beamColors},
			modeCheck{"beams.pattern", g.Pattern, beamPatterns})
		if g.Ring != "" {
			r, err := fixture.ParseRing(g.Ring)
			if err != nil {
				return fmt.Errorf("beams.ring: %w", err)
			}
			sc.ring = r
		}
	}
	if g := sc.Bars; g != nil {
		checks = append(checks, modeCheck{"bars.color", g.Color, flashColors})
	}
	if g := sc.Strobes; g != nil {
		checks = append(checks, modeCheck{"strobes.color", g.Color, flashColors})
	}
	if g := sc.Spiders; g != nil {
		checks = append(checks,
			modeCheck{"spiders.color", g.Color, spiderColors},
			modeCheck{"spiders.pattern", g.Pattern, spiderPatterns})
	}
	for _, c := range checks {
		if err := checkMode(c.where, c.m, c.kinds...); err != nil {
			return err
		}
	}
	for _, g := range []struct {
		name string
		g    *Group
	}{{"pars", sc.Pars}, {"bars", sc.Bars}, {"strobes", sc.Strobes}} {
		if g.g != nil && g.g.Pattern != nil {
			return fmt.Errorf("%s: group has no pattern", g.name)
		}
	}
	for _, g := range []struct {
		name string
		g    *Group
	}{{"pars", sc.Pars}, {"bars", sc.Bars}, {"strobes", sc.Strobes}, {"spiders", sc.Spiders}} {
		if g.g != nil && g.g.Ring != "" {
			return fmt.Errorf("%s: group has no ring", g.name)
		}
	}

	if lz := sc.Laser; lz != nil {
		if lz.Pattern != "" {
			p, err := fixture.ParsePattern(lz.Pattern)
			if err != nil {
				return err
			}
			sc.pattern = p
		}
		if err := checkMode("laser.pos", lz.Pos, laserPositions...); err != nil {
			return err
		}
	}
	if v := sc.Viz; v != nil && v.Alpha != nil && (*v.Alpha < 0 || *v.Alpha > 1) {
		return fmt.Errorf("viz.alpha %g out of range", *v.Alpha)
	}
	return nil
}

// At returns the scene bound to a grid position.
func (t *Table) At(c launchpad.Coord) (*Scene, bool) {
	sc, ok := t.byCoord[c]
	return sc, ok
}

// Sorted returns the scenes ordered top to bottom, left to right.
func (t *Table) Sorted() []*Scene {
	out := append([]*Scene(nil), t.Scenes...)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].At, out[j].At
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		return a[0] < b[0]
	})
	return out
}

// Stage returns the stage name for a focus (control=false) or control
// button, if one is bound.
func (t *Table) Stage(control bool, i int) (string, bool) {
	names := t.Stages.Focus
	if control {
		names = t.Stages.Control
	}
	if i < 0 || i >= len(names) || names[i] == "" {
		return "", false
	}
	return names[i], true
}
