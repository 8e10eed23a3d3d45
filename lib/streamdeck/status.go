package streamdeck

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strings"

	lwcolor "lightwave/lib/color"
)

// Status is what the panel shows, one value per key.
type Status struct {
	Color0 lwcolor.Color
	Color1 lwcolor.Color
	BPM    float64
	Clock  string
	Alpha  float64
	Off    bool
	Scene  string
}

const (
	KeyColor0 = iota
	KeyColor1
	KeyBPM
	KeyAlpha
	KeyScene
	NumStatusKeys
)

// Key is the rendered content of one key.
type Key struct {
	BG   color.RGBA
	FG   color.RGBA
	Text string
}

var (
	black = color.RGBA{A: 0xff}
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	amber = color.RGBA{R: 0xff, G: 0xa0, A: 0xff}
	red   = color.RGBA{R: 0xc0, A: 0xff}
)

func swatch(c lwcolor.Color, label string) Key {
	r, g, b := c.Bytes()
	bg := color.RGBA{R: r, G: g, B: b, A: 0xff}
	fg := white
	// Rec. 601 luma
	if 299*int(r)+587*int(g)+114*int(b) > 128*1000 {
		fg = black
	}
	return Key{BG: bg, FG: fg, Text: label}
}

// Keys lays out st; width is the number of characters that fit across a
// key.
func (st Status) Keys(width int) [NumStatusKeys]Key {
	var k [NumStatusKeys]Key
	k[KeyColor0] = swatch(st.Color0, "COLOR 0")
	k[KeyColor1] = swatch(st.Color1, "COLOR 1")
	k[KeyBPM] = Key{BG: black, FG: amber, Text: fmt.Sprintf("%.1f\nBPM\n%s", st.BPM, st.Clock)}
	if st.Off {
		k[KeyAlpha] = Key{BG: red, FG: white, Text: "BLACKOUT"}
	} else {
		k[KeyAlpha] = Key{BG: black, FG: white, Text: fmt.Sprintf("%.0f%%\nALPHA", st.Alpha*100)}
	}
	name := st.Scene
	if name == "" {
		name = "-"
	}
	k[KeyScene] = Key{BG: black, FG: white, Text: strings.Join(Wrap(name, width), "\n")}
	return k
}

// KeyWriter is the part of Device the panel draws on.
type KeyWriter interface {
	Model() *Model
	SetKeyImage(key int, img image.Image) error
}

// Panel redraws the status keys from its own goroutine so slow USB writes
// never hold up the caller.
type Panel struct {
	dev     KeyWriter
	log     *slog.Logger
	updates chan Status
	shown   [NumStatusKeys]Key
	drawn   [NumStatusKeys]bool
}

func NewPanel(dev KeyWriter, log *slog.Logger) *Panel {
	if log == nil {
		log = slog.Default()
	}
	return &Panel{
		dev:     dev,
		log:     log.With("component", "streamdeck"),
		updates: make(chan Status, 1),
	}
}

// Update replaces any status not yet drawn. It never blocks.
func (p *Panel) Update(st Status) {
	for {
		select {
		case p.updates <- st:
			return
		default:
		}
		select {
		case <-p.updates:
		default:
		}
	}
}

// Run draws updates until ctx is done.
func (p *Panel) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case st := <-p.updates:
			if err := p.draw(st); err != nil {
				p.log.Warn("draw failed", "error", err)
			}
		}
	}
}

// draw writes every key whose content changed since the last draw.
func (p *Panel) draw(st Status) error {
	m := p.dev.Model()
	if m.Keys < NumStatusKeys {
		return fmt.Errorf("streamdeck: %s has %d keys, need %d", m.Name, m.Keys, NumStatusKeys)
	}
	for i, k := range st.Keys(m.KeySize/7 - 1) {
		if p.drawn[i] && p.shown[i] == k {
			continue
		}
		img := TextImage(m.KeySize, k.BG, k.FG, strings.Split(k.Text, "\n")...)
		if err := p.dev.SetKeyImage(i, img); err != nil {
			p.drawn[i] = false
			return err
		}
		p.shown[i], p.drawn[i] = k, true
	}
	return nil
}
