package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"lightwave/lib/dmx"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDMX(); err != nil {
		return err
	}
	if err := c.validateOSC(); err != nil {
		return err
	}
	if err := c.validateClock(); err != nil {
		return err
	}
	if c.Loop.TickMS < 1 || c.Loop.TickMS > 100 {
		return fmt.Errorf("loop.tick_ms must be between 1 and 100, got %d", c.Loop.TickMS)
	}
	return c.validateLogging()
}

func (c *Config) validateDMX() error {
	d := c.DMX
	switch d.Transport {
	case TransportE131:
		if d.Universe == 0 || d.Universe > 63999 {
			return fmt.Errorf("dmx.universe must be between 1 and 63999 for e131, got %d", d.Universe)
		}
		if d.Unicast != "" && net.ParseIP(d.Unicast) == nil {
			return fmt.Errorf("dmx.unicast %q is not an IP address", d.Unicast)
		}
		if d.Priority < 0 || d.Priority > 200 {
			return fmt.Errorf("dmx.priority must be between 0 and 200, got %d", d.Priority)
		}
	case TransportArtNet:
		if d.Universe > 0x7fff {
			return fmt.Errorf("dmx.universe must be at most %d for artnet, got %d", 0x7fff, d.Universe)
		}
		if d.Target != "" && net.ParseIP(d.Target) == nil {
			return fmt.Errorf("dmx.target %q is not an IP address", d.Target)
		}
	case TransportNone:
	default:
		return fmt.Errorf("dmx.transport must be one of e131, artnet, none; got %q", d.Transport)
	}
	if d.Size < 1 || d.Size > dmx.UniverseSize {
		return fmt.Errorf("dmx.size must be between 1 and %d, got %d", dmx.UniverseSize, d.Size)
	}
	switch d.Layout {
	case LayoutVenue, LayoutPacked, LayoutCustom:
	default:
		return fmt.Errorf("dmx.layout must be one of venue, packed, custom; got %q", d.Layout)
	}
	if err := c.RigLayout().Validate(d.Size); err != nil {
		return fmt.Errorf("dmx.%s: %w", d.Layout, err)
	}
	return nil
}

func (c *Config) validateOSC() error {
	if c.OSC.Listen == "" {
		return errors.New("osc.listen must be set")
	}
	if _, _, err := net.SplitHostPort(c.OSC.Listen); err != nil {
		return fmt.Errorf("osc.listen: %w", err)
	}
	if c.OSC.VizAddr != "" {
		if _, _, err := net.SplitHostPort(c.OSC.VizAddr); err != nil {
			return fmt.Errorf("osc.viz_addr: %w", err)
		}
	}
	if c.OSC.Stream != "" {
		if _, _, err := net.SplitHostPort(c.OSC.Stream); err != nil {
			return fmt.Errorf("osc.stream: %w", err)
		}
	}
	return nil
}

func (c *Config) validateClock() error {
	switch c.Clock.Source {
	case ClockStatic, ClockOSC:
	default:
		return fmt.Errorf("clock.source must be static or osc, got %q", c.Clock.Source)
	}
	if c.Clock.BPM <= 0 {
		return errors.New("clock.bpm must be positive")
	}
	if c.Clock.Quantum < 1 || c.Clock.Quantum > 64 {
		return fmt.Errorf("clock.quantum must be between 1 and 64, got %d", c.Clock.Quantum)
	}
	if !strings.HasPrefix(c.Clock.TempoAddr, "/") || !strings.HasPrefix(c.Clock.BeatAddr, "/") {
		return errors.New("clock.tempo_addr and clock.beat_addr must be OSC addresses")
	}
	return nil
}

func (c *Config) validateLogging() error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console or json; got %q", c.Logging.Format)
	}
	return nil
}
