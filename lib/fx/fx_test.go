package fx

import (
	"math"
	"testing"

	"lightwave/lib/color"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func sameColor(a, b color.Color) bool {
	return near(a.A, b.A) && near(a.R, b.R) && near(a.G, b.G) && near(a.B, b.B) && near(a.W, b.W)
}

func at(phi float64) Snapshot {
	return Snapshot{Phi: phi, Bpm: 120, PhiMul: 1}
}

func TestPd(t *testing.T) {
	if P(1, 4).Fr() != 0.25 {
		t.Errorf("Fr = %v", P(1, 4).Fr())
	}
	if got := P(1, 4).Mul(2); got != (Pd{2, 4}) {
		t.Errorf("Mul = %v", got)
	}
	if got := P(1, 4).Div(2); got != (Pd{1, 8}) {
		t.Errorf("Div = %v", got)
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero denominator")
		}
	}()
	P(1, 0)
}

func TestParsePd(t *testing.T) {
	tests := map[string]Pd{
		"1/4":   {1, 4},
		" 2/1 ": {2, 1},
		"16":    {16, 1},
	}
	for in, want := range tests {
		got, err := ParsePd(in)
		if err != nil || got != want {
			t.Errorf("ParsePd(%q) = %v, %v", in, got, err)
		}
	}
	for _, bad := range []string{"1/0", "x", "1/", "0/1", "-1/2"} {
		if _, err := ParsePd(bad); err == nil {
			t.Errorf("ParsePd(%q): expected error", bad)
		}
	}
	var p Pd
	if err := p.UnmarshalText([]byte("3/2")); err != nil || p != (Pd{3, 2}) {
		t.Errorf("UnmarshalText = %v, %v", p, err)
	}
}

func TestPhase(t *testing.T) {
	if got := at(4.5).Phase(P(1, 1)); !near(got, 0.5) {
		t.Errorf("phase = %v", got)
	}
	if got := at(3).Phase(P(2, 1)); !near(got, 0.5) {
		t.Errorf("phase = %v", got)
	}
	s := at(3)
	s.PhiMul = 2
	if got := s.Phase(P(1, 1)); !near(got, 0.5) {
		t.Errorf("phase with PhiMul=2 = %v", got)
	}
	if got := at(-0.25).Phase(P(1, 1)); !near(got, 0.75) {
		t.Errorf("negative phase = %v", got)
	}
	if got := at(1).Shift(P(2, 1), 0.25).Phi; !near(got, 1.5) {
		t.Errorf("Shift = %v", got)
	}
}

func TestPeriodicity(t *testing.T) {
	pd := P(1, 2)
	nodes := []Node{
		Sin{Pd: pd, Depth: 0.6, Center: 0.2},
		Tri{Pd: pd, Lo: 0, Hi: 1},
		Pulse{Pd: pd, From: 1, To: 0},
		Pulse{Pd: pd, From: 1, To: 0, Short: true},
		Strobe{Pd: pd, Duty: 0.3, Lo: 0, Hi: 1},
		Ramp{Pd: pd},
		Rainbow{Pd: pd},
	}
	for _, n := range nodes {
		for _, phi := range []float64{0.1, 0.2, 0.37, 0.49} {
			a := Eval(n, at(phi), color.Red)
			b := Eval(n, at(phi+pd.Fr()), color.Red)
			c := Eval(n, at(phi+3*pd.Fr()), color.Red)
			if !sameColor(a, b) || !sameColor(a, c) {
				t.Errorf("%T at %v: %v / %v / %v", n, phi, a, b, c)
			}
		}
	}
}

func TestWaveforms(t *testing.T) {
	pd := P(1, 1)
	tests := []struct {
		name string
		n    Node
		phi  float64
		want float64
	}{
		{"sin center", Sin{pd, 0.4, 0.5}, 0, 0.5},
		{"sin peak", Sin{pd, 0.4, 0.5}, 0.25, 0.7},
		{"sin trough", Sin{pd, 0.4, 0.5}, 0.75, 0.3},
		{"sin clamps", Sin{pd, 0.6, 0.2}, 0.75, 0},
		{"tri start", Tri{pd, 0.2, 1}, 0, 0.2},
		{"tri peak", Tri{pd, 0.2, 1}, 0.5, 1},
		{"pulse mid", Pulse{pd, 1, 0, false}, 0.5, 0.5},
		{"pulse short mid", Pulse{pd, 1, 0, true}, 0.125, 0.5},
		{"pulse short held", Pulse{pd, 1, 0, true}, 0.6, 0},
		{"strobe on", Strobe{pd, 0.25, 0, 1}, 0.1, 1},
		{"strobe off", Strobe{pd, 0.25, 0, 1}, 0.3, 0},
		{"ramp", Ramp{pd}, 0.3, 0.3},
		{"alpha", Alpha{0.1}, 0.3, 0.1},
	}
	for _, tt := range tests {
		got := Eval(tt.n, at(tt.phi), color.Red)
		if !near(got.A, tt.want) {
			t.Errorf("%s: alpha = %v, want %v", tt.name, got.A, tt.want)
		}
		if got.R != 1 || got.G != 0 {
			t.Errorf("%s: changed color channels: %v", tt.name, got)
		}
	}
}

func TestRainbow(t *testing.T) {
	got := Eval(Rainbow{P(4, 1)}, at(0), color.W(1).Alpha(0.5))
	if !near(got.R, 1) || !near(got.G, 0) || !near(got.A, 0.5) {
		t.Errorf("rainbow at 0 = %v", got)
	}
	got = Op(Rainbow{P(4, 1)}).Apply(at(4.0 / 3))
	if !near(got.G, 1) || !near(got.R, 0) || got.A != 1 {
		t.Errorf("rainbow at 1/3 = %v", got)
	}
}

func TestIdentityNodes(t *testing.T) {
	for _, n := range []Node{Off{}, Id{}, nil} {
		if got := Eval(n, at(3), color.Pink); got != color.Pink {
			t.Errorf("%T changed color to %v", n, got)
		}
	}
	if got := Identity.Apply(at(0), color.Mint); got != color.Mint {
		t.Errorf("Identity = %v", got)
	}
}

func TestOnceLatches(t *testing.T) {
	pd := P(1, 1)
	start := Snapshot{T: 10, Bpm: 120, PhiMul: 1}
	m := MapOf(Once{Pd: pd, Inner: Ramp{Pd: pd}}).Activate(start)

	// 120 bpm: one beat is half a second
	for _, dt := range []float64{0, 0.1, 0.25, 0.4, 0.49} {
		s := start
		s.T += dt
		s.Phi = 7.3 // the live phase is ignored while playing
		got := m.Apply(s, color.Red)
		want := Eval(Ramp{Pd: pd}, at(dt*2), color.Red)
		if !sameColor(got, want) {
			t.Errorf("dt=%v: got %v, want %v", dt, got, want)
		}
	}

	var last color.Color
	for i, dt := range []float64{0.5, 0.75, 3, 100} {
		s := start
		s.T += dt
		s.Phi = float64(i) * 0.37
		got := m.Apply(s, color.Red)
		if i > 0 && got != last {
			t.Errorf("dt=%v: latched value changed from %v to %v", dt, last, got)
		}
		last = got
	}
	if last.A != 1 {
		t.Errorf("terminal ramp alpha = %v, want 1", last.A)
	}
}

func TestActivateNested(t *testing.T) {
	pd := P(1, 1)
	m := MapOf(Compose{First: Off{}, Then: Once{Pd: pd, Inner: Ramp{Pd: pd}}})
	m = m.Activate(Snapshot{T: 5})
	c := m.Node.(Compose)
	if c.Then.(Once).Start != 5 {
		t.Errorf("nested once not activated: %+v", c.Then)
	}
}

func TestComposeOrder(t *testing.T) {
	// override to white, then pulse the white
	m := MapOf(Value{Color: color.White}).Compose(MapOf(Pulse{Pd: P(2, 1), From: 0.8, To: 0, Short: true}))
	got := m.Apply(at(0), color.Red)
	if got.W != 1 || got.R != 0 || !near(got.A, 0.8) {
		t.Errorf("got %v, want white at 0.8", got)
	}

	a := MapOf(Alpha{0.5})
	b := MapOf(Value{Color: color.Blue})
	c := MapOf(Alpha{0.5})
	left := a.Compose(b).Compose(c).Apply(at(0), color.Red)
	right := a.Compose(b.Compose(c)).Apply(at(0), color.Red)
	if left != right || left != color.Blue.AMul(0.5) {
		t.Errorf("associativity: %v vs %v", left, right)
	}
}

func TestColorOpThenAndMap(t *testing.T) {
	op := Op(Value{Color: color.Cyan}).Then(MapOf(Alpha{0.25}))
	if got := op.Apply(at(0)); got != color.Cyan.AMul(0.25) {
		t.Errorf("Then = %v", got)
	}
	if got := Op(Value{Color: color.Lime}).Map().Apply(at(0), color.Red); got != color.Lime {
		t.Errorf("Map = %v", got)
	}
	if got := Op(Sin{P(1, 1), 0, 0.5}).Apply(at(0)); got != color.White.AMul(0.5) {
		t.Errorf("waveform op = %v", got)
	}
}

func TestFreeRunningPhase(t *testing.T) {
	t0, bpm := 2.0, 120.0
	phi := math.Mod(t0*bpm/60, 16)
	if phi != 4 {
		t.Errorf("phi = %v, want 4", phi)
	}
}

func TestFormat(t *testing.T) {
	n := Compose{
		First: Value{Color: color.White},
		Then:  Compose{First: Pulse{Pd: P(2, 1), From: 0.8, To: 0, Short: true}, Then: Alpha{0.5}},
	}
	want := "white > pulse_short(2/1, 0.8..0) > alpha(0.5)"
	if got := Format(n); got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
	if got := Format(Once{Pd: P(1, 4), Inner: Ramp{Pd: P(1, 4)}}); got != "once(1/4, ramp(1/4))" {
		t.Errorf("Format once = %q", got)
	}
}
