package color

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestHSVPrimaries(t *testing.T) {
	tests := []struct {
		h       float64
		r, g, b float64
	}{
		{0, 1, 0, 0},
		{1.0 / 3, 0, 1, 0},
		{2.0 / 3, 0, 0, 1},
		{1.0 / 6, 1, 1, 0},
		{1, 1, 0, 0},
	}
	for _, tt := range tests {
		c := HSV(tt.h, 1, 1)
		if !near(c.R, tt.r) || !near(c.G, tt.g) || !near(c.B, tt.b) {
			t.Errorf("HSV(%v) = %v, want rgb(%v,%v,%v)", tt.h, c, tt.r, tt.g, tt.b)
		}
		if c.A != 1 || c.W != 0 {
			t.Errorf("HSV(%v) alpha/white = %v/%v", tt.h, c.A, c.W)
		}
	}
}

func TestHSVDesaturated(t *testing.T) {
	c := HSV(0.4, 0, 0.5)
	if !near(c.R, 0.5) || !near(c.G, 0.5) || !near(c.B, 0.5) {
		t.Errorf("got %v, want grey 0.5", c)
	}
}

func TestAlphaOps(t *testing.T) {
	c := Red.Alpha(0.5)
	if c.A != 0.5 || c.R != 1 {
		t.Errorf("Alpha: got %v", c)
	}
	c = c.AMul(0.5)
	if c.A != 0.25 || c.R != 1 || c.G != 0 {
		t.Errorf("AMul: got %v", c)
	}
	if Red.A != 1 {
		t.Error("constant mutated")
	}
}

func TestPadRGB(t *testing.T) {
	white, _, _, _ := White.PadRGB()
	if !white {
		t.Error("White should map to native white")
	}
	white, _, _, _ = RGBWhite.PadRGB()
	if !white {
		t.Error("RGBWhite should map to native white")
	}
	white, r, g, b := Red.AMul(0.5).PadRGB()
	if white {
		t.Error("Red reported as white")
	}
	if r != 63 || g != 0 || b != 0 {
		t.Errorf("got %d,%d,%d, want 63,0,0", r, g, b)
	}
	_, r, _, _ = ARGB(2, 1, 0, 0).PadRGB()
	if r != 127 {
		t.Errorf("overrange red = %d, want 127", r)
	}
}

func TestBytes(t *testing.T) {
	r, g, b := W(1).Bytes()
	if r != 255 || g != 255 || b != 255 {
		t.Errorf("white bytes = %d,%d,%d", r, g, b)
	}
	r, g, b = Cyan.Bytes()
	if r != 0 || g != 204 || b != 255 {
		t.Errorf("cyan bytes = %d,%d,%d", r, g, b)
	}
}

func TestNamed(t *testing.T) {
	c, err := Named(" Violet ")
	if err != nil {
		t.Fatal(err)
	}
	if c != Violet {
		t.Errorf("got %v, want violet", c)
	}
	if _, err := Named("chartreuse"); err == nil {
		t.Error("expected error for unknown name")
	}
	if Violet.String() != "violet" {
		t.Errorf("String() = %q", Violet.String())
	}
}
