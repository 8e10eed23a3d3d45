package show

import (
	"strings"
	"testing"

	"lightwave/lib/fixture"
	"lightwave/lib/fx"
	"lightwave/lib/launchpad"
)

func TestDefaultTable(t *testing.T) {
	tbl, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	// rows 0-6 are full; the laser row only uses its right half
	if got, want := len(tbl.Scenes), 7*8+4; got != want {
		t.Errorf("got %d scenes, want %d", got, want)
	}
	if name, ok := tbl.Stage(false, 2); !ok || name != "tiles" {
		t.Errorf("focus stage 2 = %q, %v", name, ok)
	}
	if name, ok := tbl.Stage(true, 4); !ok || name != "stars" {
		t.Errorf("control stage 4 = %q, %v", name, ok)
	}
	if _, ok := tbl.Stage(true, 5); ok {
		t.Error("control stage 5 should be unbound")
	}

	sc, ok := tbl.At(launchpad.Coord{X: 2, Y: 6})
	if !ok || sc.Name != "white roll" {
		t.Fatalf("scene at (2,6) = %+v", sc)
	}
	if sc.Beams.Color.Kind != BeamRoll || sc.Beams.Color.Duty != 0.1 || sc.Beams.Color.Alpha != 1 {
		t.Errorf("roll mode = %+v", *sc.Beams.Color)
	}
	if sc.Beams.Pattern.Kind != BeamSquare || sc.Beams.Pattern.Pd != fx.P(1, 1) {
		t.Errorf("square mode = %+v", *sc.Beams.Pattern)
	}

	sc, _ = tbl.At(launchpad.Coord{X: 7, Y: 7})
	if sc.pattern != fixture.PatternTriWing {
		t.Errorf("laser pattern = %d", sc.pattern)
	}
}

func TestEffectDecoding(t *testing.T) {
	tbl, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		x, y int
		slot string
		want string
	}{
		{0, 0, "map0", "once(1/4, ramp(1/4))"},
		{0, 3, "map0", "sin(8/1, 0.2, 0.15)"},
		{0, 3, "map1", "off"},
		{0, 6, "map1", "white > pulse_short(2/1, 0.8..0)"},
		{2, 5, "map0", "strobe(1/4, 0.5, 0..1)"},
		{4, 5, "map1", "tri(2/1, 0..1)"},
		{7, 4, "map1", "id"},
		{6, 2, "color0", "rainbow(16/1)"},
		{1, 1, "color1", "blue"},
	}
	for _, tt := range tests {
		sc, ok := tbl.At(launchpad.Coord{X: tt.x, Y: tt.y})
		if !ok {
			t.Fatalf("no scene at (%d,%d)", tt.x, tt.y)
		}
		var e *Effect
		switch tt.slot {
		case "map0":
			e = sc.Map0
		case "map1":
			e = sc.Map1
		case "color0":
			e = sc.Color0
		case "color1":
			e = sc.Color1
		}
		if e == nil {
			t.Errorf("(%d,%d) %s unset", tt.x, tt.y, tt.slot)
			continue
		}
		if got := e.String(); got != tt.want {
			t.Errorf("(%d,%d) %s = %q, want %q", tt.x, tt.y, tt.slot, got, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", "scenes:\n  - {at: [0, 0], colour0: red}\n", "colour0"},
		{"off grid", "scenes:\n  - {at: [8, 0], name: x}\n", "off the grid"},
		{"duplicate", "scenes:\n  - {at: [1, 1], name: a}\n  - {at: [1, 1], name: b}\n", "already used"},
		{"bad color", "scenes:\n  - {at: [0, 0], color0: chartreuse}\n", "chartreuse"},
		{"bad effect", "scenes:\n  - {at: [0, 0], map0: {wobble: 1/1}}\n", "wobble"},
		{"bad effect arg", "scenes:\n  - {at: [0, 0], map0: {sin: {pd: 1/1, amp: 1}}}\n", "amp"},
		{"missing pd", "scenes:\n  - {at: [0, 0], map0: {sin: {depth: 1}}}\n", "missing pd"},
		{"zero pd", "scenes:\n  - {at: [0, 0], map0: {ramp: 1/0}}\n", "zero denominator"},
		{"bad mode", "scenes:\n  - {at: [0, 0], pars: {color: roll}}\n", "pars.color"},
		{"pattern on pars", "scenes:\n  - {at: [0, 0], pars: {pattern: up}}\n", "no pattern"},
		{"bad laser", "scenes:\n  - {at: [0, 0], laser: {pattern: spiral}}\n", "spiral"},
		{"viz alpha", "scenes:\n  - {at: [0, 0], viz: {alpha: 2}}\n", "viz.alpha"},
		{"color mode", "scenes:\n  - {at: [0, 0], color_mode: purple}\n", "purple"},
		{"bad ring", "scenes:\n  - {at: [0, 0], beams: {ring: sparkle}}\n", "beams.ring"},
		{"ring on pars", "scenes:\n  - {at: [0, 0], pars: {ring: red}}\n", "no ring"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	tbl, err := Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tbl.At(launchpad.Coord{}); ok {
		t.Error("empty table has a scene")
	}
}

func TestLoad(t *testing.T) {
	path := t.TempDir() + "/scenes.yaml"
	if _, err := Load(path); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSorted(t *testing.T) {
	tbl, err := Parse([]byte("scenes:\n  - {at: [3, 1], name: c}\n  - {at: [5, 0], name: b}\n  - {at: [0, 0], name: a}\n"))
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, sc := range tbl.Sorted() {
		names = append(names, sc.Name)
	}
	if strings.Join(names, "") != "abc" {
		t.Errorf("order = %v", names)
	}
	if tbl.Scenes[0].Group != GroupScene {
		t.Errorf("default group = %q", tbl.Scenes[0].Group)
	}
}

func TestModeString(t *testing.T) {
	if got := mode(ModeColor1).String(); got != "color1" {
		t.Errorf("got %q", got)
	}
	m := mode(BeamSquare)
	m.Pd = fx.P(2, 1)
	if got := m.String(); got != "square(2/1)" {
		t.Errorf("got %q", got)
	}
}
