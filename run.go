package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"lightwave/lib/artnet"
	"lightwave/lib/beat"
	"lightwave/lib/config"
	"lightwave/lib/control"
	"lightwave/lib/e131"
	"lightwave/lib/osc"
	"lightwave/lib/show"
	"lightwave/lib/streamdeck"
)

const subscriberQueue = 256

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the control loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(sigCtx, cfg, ctx.logger())
		},
	}
}

func loadTable(path string) (*show.Table, error) {
	if path == "" {
		return show.Default()
	}
	return show.Load(path)
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	lockPath := cfg.Loop.LockPath()
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another controller is running (lock %s)", lockPath)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Warn("failed to release lock", "error", err)
		}
	}()

	tbl, err := loadTable(cfg.Show.Scenes)
	if err != nil {
		return err
	}

	srv, err := osc.Listen(cfg.OSC.Listen, log)
	if err != nil {
		return err
	}
	defer srv.Close()
	if cfg.OSC.Stream != "" {
		ln, err := net.Listen("tcp", cfg.OSC.Stream)
		if err != nil {
			return fmt.Errorf("osc stream: %w", err)
		}
		go func() {
			if err := srv.ServeStream(ln); err != nil {
				log.Error("osc stream stopped", "error", err)
			}
		}()
	}

	clk := beat.New(beat.Options{
		Quantum:   uint16(cfg.Clock.Quantum),
		BPM:       cfg.Clock.BPM,
		TempoAddr: cfg.Clock.TempoAddr,
		BeatAddr:  cfg.Clock.BeatAddr,
	}, log)
	clk.Start(srv.Subscribe(subscriberQueue))
	defer clk.Close()

	sh := show.New(tbl, log)
	if cfg.Clock.Source == config.ClockOSC {
		sh.Time.Source = show.ClockOSC
	}

	in := control.Inputs{
		Clock: srv.Subscribe(subscriberQueue),
		Bars:  clk.SubscribeDiv(1, 1),
	}
	out := control.Outputs{
		Telemetry: srv,
		VizAddr:   cfg.OSC.VizAddr,
	}

	pads, padOut, padSurface := openLaunchpad(cfg.Surfaces.Launchpad, log)
	defer padSurface.Close()
	in.Pads = pads
	if padOut != nil {
		out.Pads = padOut
		defer padOut.Clear()
	}

	ctrl, ctrlOut, ctrlSurface := openLaunchControl(cfg.Surfaces.LaunchControl, log)
	defer ctrlSurface.Close()
	in.Ctrl = ctrl
	if ctrlOut != nil {
		out.Ctrl = ctrlOut
		defer ctrlOut.Reset()
	}

	sender, closer, err := openSender(cfg, log)
	if err != nil {
		return err
	}
	if sender != nil {
		out.DMX = sender
		defer closer.Close()
	}

	if cfg.Surfaces.StreamDeck {
		if panel, dev := openStreamDeck(log); panel != nil {
			defer dev.Close()
			out.Status = panel
			go panel.Run(ctx)
		}
	}

	loop, err := control.New(sh, clk, in, out, control.Options{
		Tick:   time.Duration(cfg.Loop.TickMS) * time.Millisecond,
		Size:   cfg.DMX.Size,
		Layout: cfg.RigLayout(),
	}, log)
	if err != nil {
		return err
	}
	log.Info("osc listening", "port", srv.Port(), "viz", cfg.OSC.VizAddr)
	return loop.Run(ctx)
}

type frameSender interface {
	control.Sender
	io.Closer
}

func openSender(cfg *config.Config, log *slog.Logger) (control.Sender, io.Closer, error) {
	var s frameSender
	var err error
	d := cfg.DMX
	switch d.Transport {
	case config.TransportE131:
		s, err = e131.NewSender(e131.Options{
			Universe: d.Universe,
			Unicast:  d.Unicast,
			Name:     d.SourceName,
			Priority: byte(d.Priority),
		}, log)
	case config.TransportArtNet:
		s, err = artnet.NewSender(artnet.Options{
			Universe: d.Universe,
			Target:   d.Target,
			Sync:     d.Sync,
		}, log)
	case config.TransportNone:
		log.Warn("dmx output disabled")
		return nil, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown dmx transport %q", d.Transport)
	}
	if err != nil {
		return nil, nil, err
	}
	return s, s, nil
}

func openStreamDeck(log *slog.Logger) (*streamdeck.Panel, *streamdeck.Device) {
	dev, err := streamdeck.Open()
	if errors.Is(err, streamdeck.ErrNoDevice) {
		log.Warn("stream deck not found")
		return nil, nil
	}
	if err != nil {
		log.Warn("stream deck unavailable", "error", err)
		return nil, nil
	}
	if err := dev.ClearAllKeys(); err != nil {
		log.Warn("stream deck clear failed", "error", err)
	}
	log.Info("stream deck connected", "model", dev.Model().Name, "serial", dev.SerialNumber())
	return streamdeck.NewPanel(dev, log), dev
}
