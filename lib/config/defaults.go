package config

import (
	"fmt"

	"lightwave/lib/beat"
	"lightwave/lib/osc"
	"lightwave/lib/rig"
)

const (
	TransportE131   = "e131"
	TransportArtNet = "artnet"
	TransportNone   = "none"

	LayoutVenue  = "venue"
	LayoutPacked = "packed"
	LayoutCustom = "custom"

	ClockStatic = "static"
	ClockOSC    = "osc"
)

func Default() Config {
	return Config{
		DMX: DMX{
			Transport:  TransportE131,
			Universe:   1,
			Size:       205,
			SourceName: "lightwave",
			Priority:   100,
			Unicast:    "10.16.4.1",
			Layout:     LayoutVenue,
			Custom:     rig.VenueLayout(),
		},
		OSC: OSC{
			Listen:  fmt.Sprintf(":%d", osc.DefaultPort),
			VizAddr: "127.0.0.1:7778",
		},
		Clock: Clock{
			Source:    ClockStatic,
			BPM:       beat.DefaultBPM,
			Quantum:   beat.DefaultQuantum,
			TempoAddr: beat.DefaultTempoAddr,
			BeatAddr:  beat.DefaultBeatAddr,
		},
		Loop: Loop{TickMS: 5},
		Surfaces: Surfaces{
			Launchpad:     "Launchpad X LPX MIDI",
			LaunchControl: "Launch Control XL",
			StreamDeck:    true,
		},
		Logging: Logging{
			Level:  "info",
			Format: "auto",
		},
	}
}
