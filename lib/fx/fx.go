// Package fx is a small algebra of periodic color effects. An effect is a
// tree of nodes evaluated against a timing snapshot; waveform nodes
// modulate the alpha of the color flowing through them.
package fx

import (
	"fmt"
	"math"

	"lightwave/lib/color"
)

// Node is one element of an effect tree.
type Node interface {
	node()
}

type (
	// Value replaces the color.
	Value struct{ Color color.Color }

	// Rainbow cycles the hue once per period, keeping alpha.
	Rainbow struct{ Pd Pd }

	// Sin scales alpha by center + depth/2 * sin(2*pi*phase).
	Sin struct {
		Pd     Pd
		Depth  float64
		Center float64
	}

	// Tri scales alpha by a triangle wave from Lo up to Hi and back.
	Tri struct {
		Pd     Pd
		Lo, Hi float64
	}

	// Pulse scales alpha linearly from From to To over the period. A Short
	// pulse reaches To after the first quarter and holds.
	Pulse struct {
		Pd       Pd
		From, To float64
		Short    bool
	}

	// Strobe scales alpha by Hi for the first Duty of the period, else Lo.
	Strobe struct {
		Pd     Pd
		Duty   float64
		Lo, Hi float64
	}

	// Ramp scales alpha by the phase.
	Ramp struct{ Pd Pd }

	// Once plays Inner for a single period from the time it was bound,
	// then holds Inner's final value.
	Once struct {
		Pd    Pd
		Inner Node
		Start float64
	}

	Off struct{}
	Id  struct{}

	// Alpha scales alpha by a constant.
	Alpha struct{ X float64 }

	// Compose applies First, then Then.
	Compose struct{ First, Then Node }
)

func (Value) node()   {}
func (Rainbow) node() {}
func (Sin) node()     {}
func (Tri) node()     {}
func (Pulse) node()   {}
func (Strobe) node()  {}
func (Ramp) node()    {}
func (Once) node()    {}
func (Off) node()     {}
func (Id) node()      {}
func (Alpha) node()   {}
func (Compose) node() {}

// Eval runs n against base.
func Eval(n Node, s Snapshot, base color.Color) color.Color {
	switch n := n.(type) {
	case nil, Off, Id:
		return base
	case Value:
		return n.Color
	case Rainbow:
		return color.HSV(s.Phase(n.Pd), 1, 1).Alpha(base.A)
	case Sin:
		p := s.Phase(n.Pd)
		return base.AMul(clamp01(n.Center + n.Depth/2*math.Sin(2*math.Pi*p)))
	case Tri:
		p := s.Phase(n.Pd)
		return base.AMul(lerp(n.Lo, n.Hi, 1-math.Abs(2*p-1)))
	case Pulse:
		p := s.Phase(n.Pd)
		if n.Short {
			p = min(p*4, 1)
		}
		return base.AMul(lerp(n.From, n.To, p))
	case Strobe:
		if s.Phase(n.Pd) < n.Duty {
			return base.AMul(n.Hi)
		}
		return base.AMul(n.Lo)
	case Ramp:
		return base.AMul(s.Phase(n.Pd))
	case Once:
		return Eval(n.Inner, n.snapshot(s), base)
	case Alpha:
		return base.AMul(n.X)
	case Compose:
		return Eval(n.Then, s, Eval(n.First, s, base))
	}
	panic(fmt.Sprintf("fx: unknown node %T", n))
}

// Elapsed is how far into its period a Once is at s, in beats.
func (n Once) Elapsed(s Snapshot) float64 {
	return max(0, (s.T-n.Start)*s.Bpm/60)
}

// Done reports whether the Once has played out at s.
func (n Once) Done(s Snapshot) bool {
	return n.Elapsed(s) >= s.Span(n.Pd)
}

func (n Once) snapshot(s Snapshot) Snapshot {
	if n.Done(s) {
		return s.latch()
	}
	s.Phi = n.Elapsed(s)
	return s
}

// activate stamps every Once in the tree with the snapshot time.
func activate(n Node, s Snapshot) Node {
	switch n := n.(type) {
	case Once:
		n.Start = s.T
		n.Inner = activate(n.Inner, s)
		return n
	case Compose:
		n.First = activate(n.First, s)
		n.Then = activate(n.Then, s)
		return n
	}
	return n
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}

// ColorOp produces a color from the timing snapshot.
type ColorOp struct {
	Node Node
}

func Op(n Node) ColorOp { return ColorOp{Node: n} }

// Apply evaluates the op. Waveform nodes act on full-intensity white.
func (o ColorOp) Apply(s Snapshot) color.Color {
	return Eval(o.Node, s, color.White)
}

// Then returns an op that feeds o's color through m.
func (o ColorOp) Then(m ColorMapOp) ColorOp {
	return ColorOp{Node: Compose{First: o.Node, Then: m.Node}}
}

func (o ColorOp) Activate(s Snapshot) ColorOp {
	return ColorOp{Node: activate(o.Node, s)}
}

// Map turns o into a map that overrides its input.
func (o ColorOp) Map() ColorMapOp {
	return ColorMapOp{Node: Compose{First: Value{Color: color.White}, Then: o.Node}}
}

// ColorMapOp transforms a base color.
type ColorMapOp struct {
	Node Node
}

func MapOf(n Node) ColorMapOp { return ColorMapOp{Node: n} }

func (m ColorMapOp) Apply(s Snapshot, base color.Color) color.Color {
	return Eval(m.Node, s, base)
}

// Compose returns a map applying m and then next. Chains nest to the
// right, so a.Compose(b).Compose(c) applies a, b, c in order.
func (m ColorMapOp) Compose(next ColorMapOp) ColorMapOp {
	return ColorMapOp{Node: composeRight(m.Node, next.Node)}
}

func composeRight(first, then Node) Node {
	if c, ok := first.(Compose); ok {
		return Compose{First: c.First, Then: composeRight(c.Then, then)}
	}
	return Compose{First: first, Then: then}
}

func (m ColorMapOp) Activate(s Snapshot) ColorMapOp {
	return ColorMapOp{Node: activate(m.Node, s)}
}

// Identity is the map that leaves colors unchanged.
var Identity = ColorMapOp{Node: Id{}}

// Format renders n in the same notation the scene table uses.
func Format(n Node) string {
	switch n := n.(type) {
	case nil, Id:
		return "id"
	case Off:
		return "off"
	case Value:
		return n.Color.String()
	case Rainbow:
		return fmt.Sprintf("rainbow(%s)", n.Pd)
	case Sin:
		return fmt.Sprintf("sin(%s, %g, %g)", n.Pd, n.Depth, n.Center)
	case Tri:
		return fmt.Sprintf("tri(%s, %g..%g)", n.Pd, n.Lo, n.Hi)
	case Pulse:
		name := "pulse"
		if n.Short {
			name = "pulse_short"
		}
		return fmt.Sprintf("%s(%s, %g..%g)", name, n.Pd, n.From, n.To)
	case Strobe:
		return fmt.Sprintf("strobe(%s, %g, %g..%g)", n.Pd, n.Duty, n.Lo, n.Hi)
	case Ramp:
		return fmt.Sprintf("ramp(%s)", n.Pd)
	case Once:
		return fmt.Sprintf("once(%s, %s)", n.Pd, Format(n.Inner))
	case Alpha:
		return fmt.Sprintf("alpha(%g)", n.X)
	case Compose:
		return Format(n.First) + " > " + Format(n.Then)
	}
	return fmt.Sprintf("%T", n)
}
