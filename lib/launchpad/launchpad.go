// Package launchpad drives a Novation Launchpad X in programmer mode.
package launchpad

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

const PortName = "Launchpad X LPX MIDI"

const (
	GridSize = 8

	CCTopFirst = 91
	CCTopLast  = 98
	CCLogo     = 99
)

// Coord addresses a grid pad. (0, 0) is the top-left pad.
type Coord struct {
	X, Y int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

func (c Coord) Valid() bool {
	return c.X >= 0 && c.X < GridSize && c.Y >= 0 && c.Y < GridSize
}

// Note is the programmer-mode note number for the pad.
func (c Coord) Note() uint8 {
	row := GridSize - c.Y
	return uint8(row*10 + c.X + 1)
}

// NoteCoord maps a programmer-mode grid note to its coordinate.
func NoteCoord(note uint8) (Coord, bool) {
	row, col := int(note/10), int(note%10)
	if row < 1 || row > GridSize || col < 1 || col > GridSize {
		return Coord{}, false
	}
	return Coord{X: col - 1, Y: GridSize - row}, true
}

type Event interface {
	String() string
}

// PressEvent is a grid pad press; Velocity is in [0, 1].
type PressEvent struct {
	Coord    Coord
	Velocity float64
}

func (e PressEvent) String() string {
	return fmt.Sprintf("Pad %s pressed %.2f", e.Coord, e.Velocity)
}

type ReleaseEvent struct {
	Coord Coord
}

func (e ReleaseEvent) String() string {
	return fmt.Sprintf("Pad %s released", e.Coord)
}

// SideEvent is one of the scene-launch buttons on the right. Row 0 is the
// top button.
type SideEvent struct {
	Row     int
	Pressed bool
}

func (e SideEvent) String() string {
	return fmt.Sprintf("Side %d %s", e.Row, action(e.Pressed))
}

// TopEvent is one of the round buttons above the grid, 0 at the left.
type TopEvent struct {
	Index   int
	Pressed bool
}

func (e TopEvent) String() string {
	return fmt.Sprintf("Top %d %s", e.Index, action(e.Pressed))
}

type PressureEvent struct {
	Coord    Coord
	Pressure float64
}

func (e PressureEvent) String() string {
	return fmt.Sprintf("Pad %s pressure %.2f", e.Coord, e.Pressure)
}

func action(pressed bool) string {
	if pressed {
		return "pressed"
	}
	return "released"
}

type Decoder struct{}

func (d *Decoder) Decode(msg midi.Message) Event {
	var channel, key, value uint8
	switch {
	case msg.GetNoteOn(&channel, &key, &value):
		return decodeNote(key, value)
	case msg.GetNoteOff(&channel, &key, &value):
		return decodeNote(key, 0)
	case msg.GetControlChange(&channel, &key, &value):
		return decodeCC(key, value)
	case msg.GetPolyAfterTouch(&channel, &key, &value):
		if c, ok := NoteCoord(key); ok {
			return PressureEvent{Coord: c, Pressure: float64(value) / 127}
		}
	}
	return nil
}

func decodeNote(key, velocity uint8) Event {
	if key%10 == 9 {
		return sideEvent(key, velocity)
	}
	c, ok := NoteCoord(key)
	if !ok {
		return nil
	}
	if velocity == 0 {
		return ReleaseEvent{Coord: c}
	}
	return PressEvent{Coord: c, Velocity: float64(velocity) / 127}
}

func decodeCC(cc, value uint8) Event {
	if cc >= CCTopFirst && cc <= CCTopLast {
		return TopEvent{Index: int(cc - CCTopFirst), Pressed: value > 0}
	}
	if cc%10 == 9 {
		return sideEvent(cc, value)
	}
	return nil
}

func sideEvent(key, value uint8) Event {
	row := int(key / 10)
	if row < 1 || row > GridSize {
		return nil
	}
	return SideEvent{Row: GridSize - row, Pressed: value > 0}
}
