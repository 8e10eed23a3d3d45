// Package config loads the controller's TOML configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"lightwave/lib/rig"
)

//go:embed sample_config.toml
var sampleConfig string

// DMX selects the output transport and where fixtures sit in the universe.
type DMX struct {
	Transport  string     `toml:"transport"`
	Universe   uint16     `toml:"universe"`
	Size       int        `toml:"size"`
	SourceName string     `toml:"source_name"`
	Priority   int        `toml:"priority"`
	Unicast    string     `toml:"unicast"`
	Target     string     `toml:"target"`
	Sync       bool       `toml:"sync"`
	Layout     string     `toml:"layout"`
	Custom     rig.Layout `toml:"custom"`
}

type OSC struct {
	Listen  string `toml:"listen"`
	VizAddr string `toml:"viz_addr"`
	// Stream is a TCP address for SLIP-framed OSC peers; empty disables it.
	Stream string `toml:"stream"`
}

type Clock struct {
	Source    string  `toml:"source"`
	BPM       float64 `toml:"bpm"`
	Quantum   int     `toml:"quantum"`
	TempoAddr string  `toml:"tempo_addr"`
	BeatAddr  string  `toml:"beat_addr"`
}

type Loop struct {
	TickMS int `toml:"tick_ms"`
	// LockFile keeps a second controller off the same outputs. Empty uses
	// lightwave.lock in the temp dir.
	LockFile string `toml:"lock_file"`
}

func (l Loop) LockPath() string {
	if l.LockFile != "" {
		return l.LockFile
	}
	return filepath.Join(os.TempDir(), "lightwave.lock")
}

// Surfaces holds MIDI port name substrings. An empty name disables the
// surface.
type Surfaces struct {
	Launchpad     string `toml:"launchpad"`
	LaunchControl string `toml:"launch_control"`
	StreamDeck    bool   `toml:"stream_deck"`
}

type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Show struct {
	// Scenes is a YAML scene table; empty uses the built-in one.
	Scenes string `toml:"scenes"`
}

type Config struct {
	DMX      DMX      `toml:"dmx"`
	OSC      OSC      `toml:"osc"`
	Clock    Clock    `toml:"clock"`
	Loop     Loop     `toml:"loop"`
	Surfaces Surfaces `toml:"surfaces"`
	Logging  Logging  `toml:"logging"`
	Show     Show     `toml:"show"`
}

// DefaultPath is the config file read when no path is given.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "lightwave", "config.toml")
	}
	return "lightwave.toml"
}

// Load reads and validates the file at path, or DefaultPath if path is
// empty. A missing file yields the defaults; exists reports which case
// applied.
func Load(path string) (cfg *Config, exists bool, err error) {
	if path == "" {
		path = DefaultPath()
	}
	c := Default()

	file, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, false, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		dec := toml.NewDecoder(file)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&c); err != nil {
			return nil, true, fmt.Errorf("parse config %s: %w", path, err)
		}
		exists = true
	}

	if err := c.Validate(); err != nil {
		return nil, exists, err
	}
	return &c, exists, nil
}

// CreateSample writes a commented sample configuration to path. It refuses
// to overwrite an existing file.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	if _, err := f.WriteString(sampleConfig); err != nil {
		f.Close()
		return fmt.Errorf("write config: %w", err)
	}
	return f.Close()
}

// RigLayout is the fixture addressing selected by dmx.layout.
func (c *Config) RigLayout() rig.Layout {
	switch c.DMX.Layout {
	case LayoutPacked:
		return rig.PackedLayout()
	case LayoutCustom:
		return c.DMX.Custom
	}
	return rig.VenueLayout()
}
