package fx

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Pd is a period measured in beats, as the fraction N/D.
type Pd struct {
	N int
	D int
}

// P builds a period. A zero denominator is a programming error.
func P(n, d int) Pd {
	if d == 0 {
		panic("fx: period with zero denominator")
	}
	return Pd{N: n, D: d}
}

func (p Pd) Fr() float64 {
	return float64(p.N) / float64(p.D)
}

func (p Pd) Mul(k int) Pd { return P(p.N*k, p.D) }
func (p Pd) Div(k int) Pd { return P(p.N, p.D*k) }

func (p Pd) String() string {
	return fmt.Sprintf("%d/%d", p.N, p.D)
}

// ParsePd reads "n/d" or a bare integer number of beats.
func ParsePd(s string) (Pd, error) {
	s = strings.TrimSpace(s)
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return Pd{}, fmt.Errorf("fx: period %q: %w", s, err)
	}
	d := 1
	if found {
		d, err = strconv.Atoi(strings.TrimSpace(den))
		if err != nil {
			return Pd{}, fmt.Errorf("fx: period %q: %w", s, err)
		}
	}
	if d == 0 {
		return Pd{}, fmt.Errorf("fx: period %q has zero denominator", s)
	}
	if n <= 0 || d < 0 {
		return Pd{}, fmt.Errorf("fx: period %q must be positive", s)
	}
	return Pd{N: n, D: d}, nil
}

func (p Pd) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pd) UnmarshalText(b []byte) error {
	v, err := ParsePd(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Snapshot is the timing state effects are evaluated against. It is taken
// once per frame.
type Snapshot struct {
	// T is the elapsed show time in seconds.
	T float64
	// Phi is the musical position in beats, within a 16-beat phrase.
	Phi float64
	Bpm float64
	// PhiMul stretches every period; 2 plays all effects at half speed.
	PhiMul float64

	latched bool
}

func (s Snapshot) mul() float64 {
	if s.PhiMul <= 0 {
		return 1
	}
	return s.PhiMul
}

// Span is the length of pd in beats after PhiMul is applied.
func (s Snapshot) Span(pd Pd) float64 {
	return pd.Fr() * s.mul()
}

// Phase is the position within pd, in [0, 1).
func (s Snapshot) Phase(pd Pd) float64 {
	if s.latched {
		return 1
	}
	span := s.Span(pd)
	if span <= 0 {
		return 0
	}
	p := math.Mod(s.Phi, span)
	if p < 0 {
		p += span
	}
	return p / span
}

// Shift moves the snapshot by offset periods of pd.
func (s Snapshot) Shift(pd Pd, offset float64) Snapshot {
	s.Phi += offset * s.Span(pd)
	return s
}

func (s Snapshot) latch() Snapshot {
	s.latched = true
	return s
}
