package launchcontrol

import (
	"bytes"
	"testing"

	"gitlab.com/gomidi/midi/v2"
)

func TestDecode(t *testing.T) {
	d := &Decoder{}
	tests := []struct {
		msg  midi.Message
		want Event
	}{
		{midi.ControlChange(Channel, 77, 127), SliderEvent{Slider: 0, Value: 1}},
		{midi.ControlChange(Channel, 79, 0), SliderEvent{Slider: 2, Value: 0}},
		{midi.ControlChange(Channel, 13, 127), KnobEvent{Row: SendA, Knob: 0, Value: 1}},
		{midi.ControlChange(Channel, 36, 0), KnobEvent{Row: SendB, Knob: 7, Value: 0}},
		{midi.ControlChange(Channel, 50, 127), KnobEvent{Row: Pan, Knob: 1, Value: 1}},
		{midi.NoteOn(Channel, 41, 127), FocusEvent{Button: 0, Pressed: true}},
		{midi.NoteOn(Channel, 57, 127), FocusEvent{Button: 4, Pressed: true}},
		{midi.NoteOff(Channel, 60), FocusEvent{Button: 7, Pressed: false}},
		{midi.NoteOn(Channel, 75, 127), ControlEvent{Button: 2, Pressed: true}},
		{midi.NoteOn(Channel, 92, 127), ControlEvent{Button: 7, Pressed: true}},
		{midi.NoteOn(Channel, 106, 127), SideEvent{Button: Mute, Pressed: true}},
		{midi.ControlChange(Channel, 107, 127), SideEvent{Button: Right, Pressed: true}},
		{midi.NoteOn(Channel, 1, 127), nil},
	}
	for _, tt := range tests {
		if got := d.Decode(tt.msg); got != tt.want {
			t.Errorf("Decode(%v) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}

func TestBipolar(t *testing.T) {
	if got := (KnobEvent{Value: 1}).Bipolar(); got != 1 {
		t.Errorf("got %v", got)
	}
	if got := (KnobEvent{Value: 0}).Bipolar(); got != -1 {
		t.Errorf("got %v", got)
	}
}

func TestOutput(t *testing.T) {
	var sent []midi.Message
	o := &Output{send: func(m midi.Message) error {
		sent = append(sent, m)
		return nil
	}}
	if err := o.SetFocus(1, LEDGreen); err != nil {
		t.Fatal(err)
	}
	if err := o.SetSide(Solo, LEDAmber); err != nil {
		t.Fatal(err)
	}
	if err := o.SetControl(9, LEDRed); err == nil {
		t.Error("expected range error")
	}
	want := [][]byte{
		{0x90 | Channel, 42, 0x3C},
		{0x90 | Channel, 107, 0x3F},
	}
	if len(sent) != len(want) {
		t.Fatalf("sent %d messages, want %d", len(sent), len(want))
	}
	for i := range want {
		if !bytes.Equal(sent[i], want[i]) {
			t.Errorf("message %d = % x, want % x", i, []byte(sent[i]), want[i])
		}
	}
}
