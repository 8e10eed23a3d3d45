package launchpad

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"lightwave/lib/color"
)

var sysexHeader = []byte{0x00, 0x20, 0x29, 0x02, 0x0C}

const (
	cmdLighting = 0x03
	cmdLayout   = 0x00
	cmdPressure = 0x0B

	layoutProgrammer = 0x7F

	specPalette = 0x00
	specRGB     = 0x03

	// PaletteWhite is the palette entry the surface renders as pure white.
	PaletteWhite = 3
)

type led struct {
	set   bool
	white bool
	rgb   [3]uint8
}

// Output sends LED state to the Launchpad. Pad updates are cached and only
// changed pads are sent on Flush.
type Output struct {
	send    func(msg midi.Message) error
	pending map[uint8]led
	sent    map[uint8]led
}

func NewOutput(port drivers.Out) (*Output, error) {
	send, err := midi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open output port: %w", err)
	}
	return newOutput(send), nil
}

func newOutput(send func(midi.Message) error) *Output {
	return &Output{
		send:    send,
		pending: make(map[uint8]led),
		sent:    make(map[uint8]led),
	}
}

func sysex(cmd byte, data ...byte) midi.Message {
	b := append([]byte{}, sysexHeader...)
	b = append(b, cmd)
	b = append(b, data...)
	return midi.SysEx(b)
}

// Init switches to programmer mode, disables pressure messages and clears
// every LED.
func (o *Output) Init() error {
	if err := o.send(sysex(cmdLayout, layoutProgrammer)); err != nil {
		return err
	}
	if err := o.send(sysex(cmdPressure, 0x02, 0x01)); err != nil {
		return err
	}
	return o.Clear()
}

// Clear turns every grid, side and top LED off.
func (o *Output) Clear() error {
	var data []byte
	for row := 1; row <= 9; row++ {
		for col := 1; col <= 9; col++ {
			idx := uint8(row*10 + col)
			data = append(data, specPalette, idx, 0)
			o.sent[idx] = led{set: true}
		}
	}
	clear(o.pending)
	return o.send(sysex(cmdLighting, data...))
}

// Set queues a grid pad color.
func (o *Output) Set(c Coord, col color.Color) {
	if !c.Valid() {
		return
	}
	o.queue(c.Note(), col)
}

// SetSide queues the color of a side button, row 0 at the top.
func (o *Output) SetSide(row int, col color.Color) {
	if row < 0 || row >= GridSize {
		return
	}
	o.queue(uint8((GridSize-row)*10+9), col)
}

// SetTop queues the color of a top-row button.
func (o *Output) SetTop(i int, col color.Color) {
	if i < 0 || i >= GridSize {
		return
	}
	o.queue(uint8(CCTopFirst+i), col)
}

func (o *Output) queue(idx uint8, col color.Color) {
	white, r, g, b := col.PadRGB()
	o.pending[idx] = led{set: true, white: white, rgb: [3]uint8{r, g, b}}
}

// Flush sends every queued LED that differs from what the surface shows, in
// a single SysEx message.
func (o *Output) Flush() error {
	var data []byte
	for idx, l := range o.pending {
		if o.sent[idx] == l {
			continue
		}
		if l.white {
			data = append(data, specPalette, idx, PaletteWhite)
		} else {
			data = append(data, specRGB, idx, l.rgb[0], l.rgb[1], l.rgb[2])
		}
		o.sent[idx] = l
	}
	clear(o.pending)
	if len(data) == 0 {
		return nil
	}
	return o.send(sysex(cmdLighting, data...))
}
