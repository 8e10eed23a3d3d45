package show

import (
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"lightwave/lib/color"
	"lightwave/lib/fx"
)

// Effect is an effect tree read from the scene table. A scalar is "off",
// "id" or a palette color; a single-key mapping names a waveform with its
// arguments; a sequence composes its items in order.
//
//	map0: {sin: {pd: 8/1, depth: 0.2, center: 0.15}}
//	map1: [white, {pulse_short: {pd: 2/1, from: 0.8, to: 0}}]
type Effect struct {
	Node fx.Node
}

func (e Effect) String() string { return fx.Format(e.Node) }

func (e Effect) Op() fx.ColorOp     { return fx.Op(e.Node) }
func (e Effect) Map() fx.ColorMapOp { return fx.MapOf(e.Node) }

func (e *Effect) UnmarshalYAML(n *yaml.Node) error {
	node, err := buildNode(n)
	if err != nil {
		return err
	}
	e.Node = node
	return nil
}

func buildNode(n *yaml.Node) (fx.Node, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return scalarNode(n)
	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			return nil, fmt.Errorf("line %d: empty effect chain", n.Line)
		}
		nodes := make([]fx.Node, len(n.Content))
		for i, c := range n.Content {
			node, err := buildNode(c)
			if err != nil {
				return nil, err
			}
			nodes[i] = node
		}
		out := nodes[len(nodes)-1]
		for i := len(nodes) - 2; i >= 0; i-- {
			out = fx.Compose{First: nodes[i], Then: out}
		}
		return out, nil
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return nil, fmt.Errorf("line %d: effect needs exactly one key", n.Line)
		}
		return waveNode(n.Content[0].Value, n.Content[1])
	}
	return nil, fmt.Errorf("line %d: unsupported effect", n.Line)
}

func scalarNode(n *yaml.Node) (fx.Node, error) {
	switch n.Value {
	case "off":
		return fx.Off{}, nil
	case "id":
		return fx.Id{}, nil
	}
	c, err := color.Named(n.Value)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return fx.Value{Color: c}, nil
}

type rangeArgs struct {
	Pd   fx.Pd   `yaml:"pd"`
	From float64 `yaml:"from"`
	To   float64 `yaml:"to"`
}

func waveNode(kind string, v *yaml.Node) (fx.Node, error) {
	wrap := func(err error) error {
		return fmt.Errorf("line %d: %s: %w", v.Line, kind, err)
	}
	switch kind {
	case "value":
		return scalarNode(v)

	case "alpha":
		x, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			return nil, wrap(err)
		}
		return fx.Alpha{X: x}, nil

	case "rainbow", "ramp":
		var pd fx.Pd
		if err := v.Decode(&pd); err != nil {
			return nil, wrap(err)
		}
		if kind == "ramp" {
			return fx.Ramp{Pd: pd}, nil
		}
		return fx.Rainbow{Pd: pd}, nil

	case "sin":
		var a struct {
			Pd     fx.Pd   `yaml:"pd"`
			Depth  float64 `yaml:"depth"`
			Center float64 `yaml:"center"`
		}
		if err := decodeArgs(v, &a, "pd", "depth", "center"); err != nil {
			return nil, wrap(err)
		}
		return fx.Sin{Pd: a.Pd, Depth: a.Depth, Center: a.Center}, checkPd(a.Pd, wrap)

	case "tri":
		var a rangeArgs
		if err := decodeArgs(v, &a, "pd", "from", "to"); err != nil {
			return nil, wrap(err)
		}
		return fx.Tri{Pd: a.Pd, Lo: a.From, Hi: a.To}, checkPd(a.Pd, wrap)

	case "pulse", "pulse_short":
		var a rangeArgs
		if err := decodeArgs(v, &a, "pd", "from", "to"); err != nil {
			return nil, wrap(err)
		}
		return fx.Pulse{Pd: a.Pd, From: a.From, To: a.To, Short: kind == "pulse_short"}, checkPd(a.Pd, wrap)

	case "strobe":
		var a struct {
			Pd   fx.Pd   `yaml:"pd"`
			Duty float64 `yaml:"duty"`
			From float64 `yaml:"from"`
			To   float64 `yaml:"to"`
		}
		if err := decodeArgs(v, &a, "pd", "duty", "from", "to"); err != nil {
			return nil, wrap(err)
		}
		return fx.Strobe{Pd: a.Pd, Duty: a.Duty, Lo: a.From, Hi: a.To}, checkPd(a.Pd, wrap)

	case "once":
		var a struct {
			Pd fx.Pd  `yaml:"pd"`
			Fx Effect `yaml:"fx"`
		}
		if err := decodeArgs(v, &a, "pd", "fx"); err != nil {
			return nil, wrap(err)
		}
		return fx.Once{Pd: a.Pd, Inner: a.Fx.Node}, checkPd(a.Pd, wrap)
	}
	return nil, fmt.Errorf("line %d: unknown effect %q", v.Line, kind)
}

// checkPd catches a period that was left out of an argument mapping.
func checkPd(pd fx.Pd, wrap func(error) error) error {
	if pd.D == 0 {
		return wrap(errors.New("missing pd"))
	}
	return nil
}
