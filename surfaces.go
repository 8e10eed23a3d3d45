package main

import (
	"fmt"
	"log/slog"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"lightwave/lib/launchcontrol"
	"lightwave/lib/launchpad"
	"lightwave/lib/midiport"
)

const eventQueue = 64

type surface struct {
	stop func()
}

func (s *surface) Close() {
	if s != nil && s.stop != nil {
		s.stop()
	}
}

// ports finds the input and output port matching name.
func ports(name string) (drivers.In, drivers.Out, error) {
	in, err := midiport.FindIn(name)
	if err != nil {
		return nil, nil, err
	}
	out, err := midiport.FindOut(name)
	if err != nil {
		return nil, nil, err
	}
	return in, out, nil
}

// listen delivers each decoded event without blocking the MIDI driver's
// callback; events arriving while the queue is full are dropped.
func listen[E any](in drivers.In, log *slog.Logger, decode func(midi.Message) (E, bool)) (<-chan E, func(), error) {
	ch := make(chan E, eventQueue)
	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		ev, ok := decode(msg)
		if !ok {
			return
		}
		select {
		case ch <- ev:
		default:
			log.Warn("event queue full, dropping", "event", fmt.Sprint(ev))
		}
	})
	if err != nil {
		return nil, nil, fmt.Errorf("listen on %s: %w", in, err)
	}
	return ch, stop, nil
}

// openLaunchpad switches the Launchpad to programmer mode and starts
// reading it. A missing device is logged and yields a nil channel and
// output.
func openLaunchpad(name string, log *slog.Logger) (<-chan launchpad.Event, *launchpad.Output, *surface) {
	log = log.With("surface", "launchpad", "port", name)
	if name == "" {
		return nil, nil, nil
	}
	in, outPort, err := ports(name)
	if err != nil {
		log.Warn("surface unavailable", "error", err)
		return nil, nil, nil
	}
	out, err := launchpad.NewOutput(outPort)
	if err != nil {
		log.Warn("surface unavailable", "error", err)
		return nil, nil, nil
	}
	if err := out.Init(); err != nil {
		log.Warn("programmer mode failed", "error", err)
	}
	var dec launchpad.Decoder
	events, stop, err := listen(in, log, func(msg midi.Message) (launchpad.Event, bool) {
		ev := dec.Decode(msg)
		return ev, ev != nil
	})
	if err != nil {
		log.Warn("surface unavailable", "error", err)
		return nil, nil, nil
	}
	log.Info("surface connected", "in", in.String(), "out", outPort.String())
	return events, out, &surface{stop: stop}
}

func openLaunchControl(name string, log *slog.Logger) (<-chan launchcontrol.Event, *launchcontrol.Output, *surface) {
	log = log.With("surface", "launch_control", "port", name)
	if name == "" {
		return nil, nil, nil
	}
	in, outPort, err := ports(name)
	if err != nil {
		log.Warn("surface unavailable", "error", err)
		return nil, nil, nil
	}
	out, err := launchcontrol.NewOutput(outPort)
	if err != nil {
		log.Warn("surface unavailable", "error", err)
		return nil, nil, nil
	}
	if err := out.Reset(); err != nil {
		log.Warn("reset failed", "error", err)
	}
	var dec launchcontrol.Decoder
	events, stop, err := listen(in, log, func(msg midi.Message) (launchcontrol.Event, bool) {
		ev := dec.Decode(msg)
		return ev, ev != nil
	})
	if err != nil {
		log.Warn("surface unavailable", "error", err)
		return nil, nil, nil
	}
	log.Info("surface connected", "in", in.String(), "out", outPort.String())
	return events, out, &surface{stop: stop}
}
