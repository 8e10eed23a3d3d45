// Package control runs the fixed-rate loop that drains surface and clock
// events into the show, renders a frame and sends it.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lightwave/lib/color"
	"lightwave/lib/dmx"
	"lightwave/lib/launchcontrol"
	"lightwave/lib/launchpad"
	"lightwave/lib/osc"
	"lightwave/lib/rig"
	"lightwave/lib/show"
	"lightwave/lib/streamdeck"
)

const DefaultTick = 5 * time.Millisecond

// Telemetry addresses sent to the visualizer.
const (
	AddrAlpha = "/alpha"
	AddrColor = "/color"
	AddrPd    = "/pd"
	AddrBeat  = "/beat"

	stagePrefix = "/stage/"
	paramPrefix = "/param/"
)

// Sliders on the Launch Control.
const (
	SliderAlpha = 0
	SliderFr0   = 1
	SliderFr1   = 2
)

// Sender transmits one DMX frame.
type Sender interface {
	Send(data []byte) error
}

// PadSink is the Launchpad LED output.
type PadSink interface {
	show.PadLEDs
	Flush() error
}

// CtrlSink lights Launch Control side buttons.
type CtrlSink interface {
	SetSide(b launchcontrol.SideButton, led launchcontrol.LED) error
}

// Telemetry sends OSC to an address.
type Telemetry interface {
	SendTo(addr string, msg osc.Message) error
}

type StatusSink interface {
	Update(st streamdeck.Status)
}

// Tempo is the beat clock's current tempo.
type Tempo interface {
	BPM() float64
}

// Inputs are the event sources drained each tick. A nil channel is a
// surface that is absent.
type Inputs struct {
	Clock <-chan osc.Message
	Bars  <-chan uint16
	Pads  <-chan launchpad.Event
	Ctrl  <-chan launchcontrol.Event
}

// Outputs are where each tick's results go. Nil fields are replaced with
// no-op sinks.
type Outputs struct {
	DMX       Sender
	Pads      PadSink
	Ctrl      CtrlSink
	Telemetry Telemetry
	VizAddr   string
	Status    StatusSink
}

type Options struct {
	Tick   time.Duration
	Size   int
	Layout rig.Layout
	// StatusEvery is how many ticks pass between status updates.
	StatusEvery int
}

type Loop struct {
	show   *show.Show
	tempo  Tempo
	in     Inputs
	out    Outputs
	opts   Options
	log    *slog.Logger
	u      *dmx.Universe
	lights *rig.Lights

	ticks   uint64
	dmxErrs errLimiter
	padErrs errLimiter
	vizErrs errLimiter
}

func New(sh *show.Show, tempo Tempo, in Inputs, out Outputs, opts Options, log *slog.Logger) (*Loop, error) {
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.Size == 0 {
		opts.Size = opts.Layout.End()
	}
	if opts.StatusEvery <= 0 {
		opts.StatusEvery = 20
	}
	if err := opts.Layout.Validate(opts.Size); err != nil {
		return nil, fmt.Errorf("control: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	if out.DMX == nil {
		out.DMX = nopSender{}
	}
	if out.Pads == nil {
		out.Pads = nopPads{}
	}
	if out.Ctrl == nil {
		out.Ctrl = nopCtrl{}
	}
	if out.Telemetry == nil || out.VizAddr == "" {
		out.Telemetry = nopTelemetry{}
	}
	if out.Status == nil {
		out.Status = nopStatus{}
	}
	return &Loop{
		show:   sh,
		tempo:  tempo,
		in:     in,
		out:    out,
		opts:   opts,
		log:    log.With("component", "control"),
		u:      dmx.NewUniverse(opts.Size),
		lights: rig.New(),
	}, nil
}

// Universe is the most recently sent frame.
func (l *Loop) Universe() *dmx.Universe { return l.u }

// Lights is the most recently rendered frame before the global dimmer.
func (l *Loop) Lights() *rig.Lights { return l.lights }

// Run ticks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	l.syncCtrl()
	ticker := time.NewTicker(l.opts.Tick)
	defer ticker.Stop()
	start := time.Now()
	l.log.Info("running", "tick", l.opts.Tick, "channels", l.opts.Size)
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			l.Step(now.Sub(start).Seconds())
		}
	}
}

// Step runs one tick at t0 seconds since start.
func (l *Loop) Step(t0 float64) {
	sh := l.show
	s := sh.State
	sh.Time.Advance(s, t0, l.bpm())

	l.drainClock()
	l.drainPads()
	l.drainCtrl()

	lights := rig.New()
	sh.Render(lights)
	l.lights = lights
	l.telemetry()

	frame := *lights
	frame.Brightness(s.Dimmer())
	l.u.Clear()
	frame.Write(l.u, l.opts.Layout)
	if err := l.out.DMX.Send(l.u.Bytes()); err != nil {
		l.dmxErrs.report(l.log, "dmx send failed", err)
	}

	sh.Output(l.out.Pads)
	if err := l.out.Pads.Flush(); err != nil {
		l.padErrs.report(l.log, "launchpad update failed", err)
	}

	if l.ticks%uint64(l.opts.StatusEvery) == 0 {
		l.out.Status.Update(l.status())
	}
	l.ticks++
}

func (l *Loop) bpm() float64 {
	if l.tempo == nil {
		return l.show.State.Bpm
	}
	return l.tempo.BPM()
}

func (l *Loop) drainClock() {
	sh := l.show
	for {
		select {
		case m, ok := <-l.in.Clock:
			if !ok {
				l.in.Clock = nil
				continue
			}
			if _, err := sh.Time.Follow(sh.State, m); err != nil {
				l.log.Warn("dropping clock message", "error", err)
			}
		case n, ok := <-l.in.Bars:
			if !ok {
				l.in.Bars = nil
				continue
			}
			sh.Pads.Bar(n)
		default:
			return
		}
	}
}

func (l *Loop) drainPads() {
	for {
		select {
		case ev, ok := <-l.in.Pads:
			if !ok {
				l.in.Pads = nil
				continue
			}
			l.pad(ev)
		default:
			return
		}
	}
}

func (l *Loop) pad(ev launchpad.Event) {
	sh := l.show
	switch ev := ev.(type) {
	case launchpad.PressEvent:
		sc, ok := sh.Press(ev.Coord)
		if !ok {
			l.log.Debug("no scene", "pad", ev.Coord)
			return
		}
		if sc.Viz != nil && sc.Viz.SendBeat {
			l.send(osc.NewMessage(AddrBeat))
		}
	case launchpad.TopEvent:
		if ev.Pressed {
			sh.Time.Top(sh.State, ev.Index)
		}
	}
}

func (l *Loop) drainCtrl() {
	for {
		select {
		case ev, ok := <-l.in.Ctrl:
			if !ok {
				l.in.Ctrl = nil
				continue
			}
			l.ctrl(ev)
		default:
			return
		}
	}
}

func (l *Loop) ctrl(ev launchcontrol.Event) {
	sh := l.show
	s := sh.State
	switch ev := ev.(type) {
	case launchcontrol.SliderEvent:
		switch ev.Slider {
		case SliderAlpha:
			s.Alpha = ev.Value
		case SliderFr0:
			s.Fr0 = ev.Value
		case SliderFr1:
			s.Fr1 = ev.Value
		}
	case launchcontrol.FocusEvent:
		if ev.Pressed {
			l.stage(false, int(ev.Button))
		}
	case launchcontrol.ControlEvent:
		if ev.Pressed {
			l.stage(true, int(ev.Button))
		}
	case launchcontrol.KnobEvent:
		if ev.Row == launchcontrol.SendA {
			l.send(osc.NewMessage(fmt.Sprintf("%s%d", paramPrefix, ev.Knob), float32((ev.Bipolar()+1)/2)))
		}
	case launchcontrol.SideEvent:
		if !ev.Pressed {
			return
		}
		switch ev.Button {
		case launchcontrol.Mute:
			s.Off = !s.Off
			l.log.Info("blackout", "off", s.Off)
		case launchcontrol.Solo:
			sh.Time.Toggle()
			l.log.Info("clock source", "source", sh.Time.Source)
		}
		l.syncCtrl()
	}
}

func (l *Loop) stage(control bool, i int) {
	name, ok := l.show.Table.Stage(control, i)
	if !ok {
		return
	}
	l.send(osc.NewMessage(stagePrefix + name))
}

// syncCtrl lights Mute red during blackout and Solo green while following
// the DJ software clock.
func (l *Loop) syncCtrl() {
	mute, solo := launchcontrol.LEDOff, launchcontrol.LEDOff
	if l.show.State.Off {
		mute = launchcontrol.LEDRed
	}
	if l.show.Time.Source == show.ClockOSC {
		solo = launchcontrol.LEDGreen
	}
	if err := l.out.Ctrl.SetSide(launchcontrol.Mute, mute); err != nil {
		l.padErrs.report(l.log, "launch control update failed", err)
		return
	}
	if err := l.out.Ctrl.SetSide(launchcontrol.Solo, solo); err != nil {
		l.padErrs.report(l.log, "launch control update failed", err)
	}
}

func (l *Loop) telemetry() {
	s := l.show.State
	c := s.Color(show.Slot0)
	r, g, b := c.R, c.G, c.B
	if c.IsWhite() {
		r, g, b = 1, 1, 1
	}
	l.send(osc.NewMessage(AddrAlpha, float32(s.Alpha*s.VizAlpha)))
	l.send(osc.NewMessage(AddrColor, float32(r), float32(g), float32(b)))
	l.send(osc.NewMessage(AddrPd, float32(s.VizSeconds())))
	if s.VizBeatEdge() {
		l.send(osc.NewMessage(AddrBeat))
	}
}

func (l *Loop) send(m osc.Message) {
	if err := l.out.Telemetry.SendTo(l.out.VizAddr, m); err != nil {
		l.vizErrs.report(l.log, "telemetry send failed", err)
	}
}

func (l *Loop) status() streamdeck.Status {
	sh := l.show
	s := sh.State
	st := streamdeck.Status{
		Color0: s.Color(show.Slot0).Alpha(1),
		Color1: s.Color(show.Slot1).Alpha(1),
		BPM:    s.Bpm,
		Clock:  sh.Time.Source.String(),
		Alpha:  s.Alpha,
		Off:    s.Off,
	}
	if sc := sh.Current(); sc != nil {
		st.Scene = sc.Name
	}
	return st
}

type nopSender struct{}

func (nopSender) Send([]byte) error { return nil }

type nopPads struct{}

func (nopPads) Set(launchpad.Coord, color.Color) {}
func (nopPads) SetSide(int, color.Color)         {}
func (nopPads) SetTop(int, color.Color)          {}
func (nopPads) Flush() error                     { return nil }

type nopCtrl struct{}

func (nopCtrl) SetSide(launchcontrol.SideButton, launchcontrol.LED) error { return nil }

type nopTelemetry struct{}

func (nopTelemetry) SendTo(string, osc.Message) error { return nil }

type nopStatus struct{}

func (nopStatus) Update(streamdeck.Status) {}
