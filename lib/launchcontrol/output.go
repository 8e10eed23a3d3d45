package launchcontrol

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// LED is a button color: two bits each of red and green brightness.
type LED uint8

func RG(red, green uint8) LED {
	return LED(min(red, 3) | min(green, 3)<<4 | 0x0C)
}

var (
	LEDOff    = RG(0, 0)
	LEDRed    = RG(3, 0)
	LEDGreen  = RG(0, 3)
	LEDAmber  = RG(3, 3)
	LEDYellow = RG(2, 3)
	LEDDim    = RG(1, 0)
)

type Output struct {
	send func(msg midi.Message) error
}

func NewOutput(port drivers.Out) (*Output, error) {
	send, err := midi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open output port: %w", err)
	}
	return &Output{send: send}, nil
}

func (o *Output) SetFocus(i int, led LED) error {
	if i < 0 || i >= len(focusNotes) {
		return fmt.Errorf("launchcontrol: focus button %d out of range", i)
	}
	return o.send(midi.NoteOn(Channel, focusNotes[i], uint8(led)))
}

func (o *Output) SetControl(i int, led LED) error {
	if i < 0 || i >= len(controlNotes) {
		return fmt.Errorf("launchcontrol: control button %d out of range", i)
	}
	return o.send(midi.NoteOn(Channel, controlNotes[i], uint8(led)))
}

// SetSide lights Device, Mute, Solo or Record. The arrow buttons have
// single-color LEDs and are driven by CC.
func (o *Output) SetSide(b SideButton, led LED) error {
	if b <= Record {
		return o.send(midi.NoteOn(Channel, NoteDevice+uint8(b), uint8(led)))
	}
	return o.send(midi.ControlChange(Channel, CCUp+uint8(b-Up), uint8(led)))
}

// Reset turns every LED off.
func (o *Output) Reset() error {
	return o.send(midi.ControlChange(Channel, 0, 0))
}
