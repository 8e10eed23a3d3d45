package show

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"lightwave/lib/fx"
)

// Mode is the behavior selected for a fixture group, with the parameters
// the timed behaviors need. In the scene table it is written either as a
// bare name or as a single-key mapping:
//
//	color: color1
//	pattern: {square: 2/1}
//	color: {roll: {pd: 1/1, duty: 0.1, offset: 0.1}}
type Mode struct {
	Kind   string
	Pd     fx.Pd
	Duty   float64
	Offset float64
	Alpha  float64
}

func mode(kind string) Mode {
	return Mode{Kind: kind, Pd: fx.P(1, 1), Alpha: 1}
}

func (m Mode) String() string {
	switch {
	case m.Duty != 0 || m.Offset != 0:
		return fmt.Sprintf("%s(%s, duty %g, offset %g, alpha %g)", m.Kind, m.Pd, m.Duty, m.Offset, m.Alpha)
	case m.Pd != fx.P(1, 1):
		return fmt.Sprintf("%s(%s)", m.Kind, m.Pd)
	}
	return m.Kind
}

func (m *Mode) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*m = mode(n.Value)
		return nil
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return fmt.Errorf("line %d: mode needs exactly one key", n.Line)
		}
	default:
		return fmt.Errorf("line %d: mode must be a name or a mapping", n.Line)
	}

	out := mode(n.Content[0].Value)
	val := n.Content[1]
	if val.Kind == yaml.ScalarNode {
		if err := val.Decode(&out.Pd); err != nil {
			return fmt.Errorf("line %d: %w", val.Line, err)
		}
		*m = out
		return nil
	}

	var args struct {
		Pd     *fx.Pd   `yaml:"pd"`
		Duty   float64  `yaml:"duty"`
		Offset float64  `yaml:"offset"`
		Alpha  *float64 `yaml:"alpha"`
	}
	if err := decodeArgs(val, &args, "pd", "duty", "offset", "alpha"); err != nil {
		return err
	}
	if args.Pd != nil {
		out.Pd = *args.Pd
	}
	if args.Alpha != nil {
		out.Alpha = *args.Alpha
	}
	out.Duty = args.Duty
	out.Offset = args.Offset
	*m = out
	return nil
}

// decodeArgs decodes a mapping after checking it only uses the given keys.
func decodeArgs(n *yaml.Node, out any, keys ...string) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	for i := 0; i < len(n.Content); i += 2 {
		k := n.Content[i]
		if !slices.Contains(keys, k.Value) {
			return fmt.Errorf("line %d: unknown field %q", k.Line, k.Value)
		}
	}
	return n.Decode(out)
}

func checkMode(where string, m *Mode, kinds ...string) error {
	if m == nil {
		return nil
	}
	if !slices.Contains(kinds, m.Kind) {
		return fmt.Errorf("%s: unknown mode %q (want one of %v)", where, m.Kind, kinds)
	}
	if m.Pd.D == 0 || m.Pd.N <= 0 {
		return fmt.Errorf("%s: invalid period %s", where, m.Pd)
	}
	return nil
}
