package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"lightwave/lib/color"
	"lightwave/lib/launchcontrol"
	"lightwave/lib/launchpad"
	"lightwave/lib/midiport"
)

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func listPorts() {
	ins, outs := midiport.Names()
	fmt.Println("Available MIDI input ports:")
	for _, p := range ins {
		fmt.Printf("  %s\n", p)
	}
	fmt.Println("Available MIDI output ports:")
	for _, p := range outs {
		fmt.Printf("  %s\n", p)
	}
}

// padColor gives each pad its own hue so presses are easy to spot.
func padColor(c launchpad.Coord) color.Color {
	return color.HSV(float64(c.X*launchpad.GridSize+c.Y)/64, 1, 1)
}

func startLaunchpad(name string) (func(), error) {
	in, err := midiport.FindIn(name)
	if err != nil {
		return nil, err
	}
	outPort, err := midiport.FindOut(name)
	if err != nil {
		return nil, err
	}
	out, err := launchpad.NewOutput(outPort)
	if err != nil {
		return nil, err
	}
	if err := out.Init(); err != nil {
		return nil, err
	}

	dec := &launchpad.Decoder{}
	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		event := dec.Decode(msg)
		if event == nil {
			return
		}
		fmt.Println("launchpad:", event)

		switch e := event.(type) {
		case launchpad.PressEvent:
			out.Set(e.Coord, padColor(e.Coord))
		case launchpad.ReleaseEvent:
			out.Set(e.Coord, color.Off)
		case launchpad.SideEvent:
			if e.Pressed {
				out.SetSide(e.Row, color.White)
			} else {
				out.SetSide(e.Row, color.Off)
			}
		case launchpad.TopEvent:
			if e.Pressed {
				out.SetTop(e.Index, color.Red)
			} else {
				out.SetTop(e.Index, color.Off)
			}
		}
		if err := out.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "launchpad: %v\n", err)
		}
	})
	if err != nil {
		return nil, err
	}
	fmt.Printf("Listening on: %s\n", in)
	return func() {
		stop()
		out.Clear()
	}, nil
}

func startLaunchControl(name string) (func(), error) {
	in, err := midiport.FindIn(name)
	if err != nil {
		return nil, err
	}
	outPort, err := midiport.FindOut(name)
	if err != nil {
		return nil, err
	}
	out, err := launchcontrol.NewOutput(outPort)
	if err != nil {
		return nil, err
	}
	if err := out.Reset(); err != nil {
		return nil, err
	}

	dec := &launchcontrol.Decoder{}
	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		event := dec.Decode(msg)
		if event == nil {
			return
		}
		fmt.Println("launch control:", event)

		led := launchcontrol.LEDOff
		switch e := event.(type) {
		case launchcontrol.FocusEvent:
			if e.Pressed {
				led = launchcontrol.LEDAmber
			}
			out.SetFocus(int(e.Button), led)
		case launchcontrol.ControlEvent:
			if e.Pressed {
				led = launchcontrol.LEDGreen
			}
			out.SetControl(int(e.Button), led)
		case launchcontrol.SideEvent:
			if e.Pressed {
				led = launchcontrol.LEDYellow
			}
			out.SetSide(e.Button, led)
		}
	})
	if err != nil {
		return nil, err
	}
	fmt.Printf("Listening on: %s\n", in)
	return func() {
		stop()
		out.Reset()
	}, nil
}

func main() {
	padName := flag.String("launchpad", launchpad.PortName, "Launchpad port name")
	ctrlName := flag.String("launch-control", launchcontrol.PortName, "Launch Control port name")
	flag.Parse()

	defer midi.CloseDriver()

	var stops []func()
	if stop, err := startLaunchpad(*padName); err != nil {
		fmt.Fprintf(os.Stderr, "launchpad: %v\n", err)
	} else {
		stops = append(stops, stop)
	}
	if stop, err := startLaunchControl(*ctrlName); err != nil {
		fmt.Fprintf(os.Stderr, "launch control: %v\n", err)
	} else {
		stops = append(stops, stop)
	}
	if len(stops) == 0 {
		listPorts()
		fail(fmt.Errorf("no surfaces found"))
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	fmt.Println()
	for _, stop := range stops {
		stop()
	}
}
