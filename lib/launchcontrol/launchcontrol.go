// Package launchcontrol decodes a Novation Launch Control XL on its first
// factory template.
package launchcontrol

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

const PortName = "Launch Control XL"

// Channel is the MIDI channel of factory template 1.
const Channel = 8

const (
	CCSendAFirst  = 13
	CCSendALast   = 20
	CCSendBFirst  = 29
	CCSendBLast   = 36
	CCPanFirst    = 49
	CCPanLast     = 56
	CCSliderFirst = 77
	CCSliderLast  = 84

	CCUp    = 104
	CCDown  = 105
	CCLeft  = 106
	CCRight = 107
)

const (
	NoteDevice = 105
	NoteMute   = 106
	NoteSolo   = 107
	NoteRecord = 108
)

var (
	focusNotes   = [8]uint8{41, 42, 43, 44, 57, 58, 59, 60}
	controlNotes = [8]uint8{73, 74, 75, 76, 89, 90, 91, 92}
)

func FocusNote(i int) uint8   { return focusNotes[i] }
func ControlNote(i int) uint8 { return controlNotes[i] }

type Event interface {
	String() string
}

type KnobRow uint8

const (
	SendA KnobRow = iota
	SendB
	Pan
)

func (r KnobRow) String() string {
	switch r {
	case SendA:
		return "Send A"
	case SendB:
		return "Send B"
	}
	return "Pan"
}

// SliderEvent is a fader move; Value is in [0, 1].
type SliderEvent struct {
	Slider uint8
	Value  float64
}

func (e SliderEvent) String() string {
	return fmt.Sprintf("Slider %d = %.3f", e.Slider, e.Value)
}

// KnobEvent is a knob move; Value is in [0, 1].
type KnobEvent struct {
	Row   KnobRow
	Knob  uint8
	Value float64
}

// Bipolar maps the knob onto [-1, 1] with the detent at 0.
func (e KnobEvent) Bipolar() float64 {
	return e.Value*2 - 1
}

func (e KnobEvent) String() string {
	return fmt.Sprintf("%s %d = %.3f", e.Row, e.Knob, e.Value)
}

// FocusEvent is a track focus button, the upper row below the faders.
type FocusEvent struct {
	Button  uint8
	Pressed bool
}

func (e FocusEvent) String() string {
	return fmt.Sprintf("Focus %d %s", e.Button, action(e.Pressed))
}

// ControlEvent is a track control button, the lower row.
type ControlEvent struct {
	Button  uint8
	Pressed bool
}

func (e ControlEvent) String() string {
	return fmt.Sprintf("Control %d %s", e.Button, action(e.Pressed))
}

type SideButton uint8

const (
	Device SideButton = iota
	Mute
	Solo
	Record
	Up
	Down
	Left
	Right
)

var sideNames = [...]string{"Device", "Mute", "Solo", "Record", "Up", "Down", "Left", "Right"}

func (b SideButton) String() string {
	if int(b) < len(sideNames) {
		return sideNames[b]
	}
	return fmt.Sprintf("Side(%d)", uint8(b))
}

type SideEvent struct {
	Button  SideButton
	Pressed bool
}

func (e SideEvent) String() string {
	return fmt.Sprintf("%s %s", e.Button, action(e.Pressed))
}

func action(pressed bool) string {
	if pressed {
		return "pressed"
	}
	return "released"
}

func unit(v uint8) float64 {
	return float64(v) / 127
}

type Decoder struct{}

func (d *Decoder) Decode(msg midi.Message) Event {
	var channel, key, value uint8
	switch {
	case msg.GetNoteOn(&channel, &key, &value):
		return decodeNote(key, value > 0)
	case msg.GetNoteOff(&channel, &key, &value):
		return decodeNote(key, false)
	case msg.GetControlChange(&channel, &key, &value):
		return decodeCC(key, value)
	}
	return nil
}

func decodeNote(key uint8, pressed bool) Event {
	for i, n := range focusNotes {
		if n == key {
			return FocusEvent{Button: uint8(i), Pressed: pressed}
		}
	}
	for i, n := range controlNotes {
		if n == key {
			return ControlEvent{Button: uint8(i), Pressed: pressed}
		}
	}
	if key >= NoteDevice && key <= NoteRecord {
		return SideEvent{Button: SideButton(key - NoteDevice), Pressed: pressed}
	}
	return nil
}

func decodeCC(controller, value uint8) Event {
	switch {
	case controller >= CCSliderFirst && controller <= CCSliderLast:
		return SliderEvent{Slider: controller - CCSliderFirst, Value: unit(value)}
	case controller >= CCSendAFirst && controller <= CCSendALast:
		return KnobEvent{Row: SendA, Knob: controller - CCSendAFirst, Value: unit(value)}
	case controller >= CCSendBFirst && controller <= CCSendBLast:
		return KnobEvent{Row: SendB, Knob: controller - CCSendBFirst, Value: unit(value)}
	case controller >= CCPanFirst && controller <= CCPanLast:
		return KnobEvent{Row: Pan, Knob: controller - CCPanFirst, Value: unit(value)}
	case controller >= CCUp && controller <= CCRight:
		return SideEvent{Button: Up + SideButton(controller-CCUp), Pressed: value > 0}
	}
	return nil
}
