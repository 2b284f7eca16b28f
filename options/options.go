package options

import (
	"flag"

	"github.com/richinsley/vcontrol/config"
)

type Options struct {
	ConfigFile  *string
	Help        *bool
	Backend     *string
	Width       *int
	Height      *int
	Windowed    *bool
	Dir         *string
	MIDIDriver  *string // raw, rtmidi, serial or null
	MIDIDevice  *string // hw:C,D[,S] for raw, a port name for rtmidi, path[@baud] for serial
	AudioDriver *string // portaudio, ffmpeg, file or null
	AudioDevice *string // an ffmpeg input, or a WAV/MP3 path for the file driver
	Detector    *string
	Statsview   *string // listen address of the runtime stats server
}

// Register defines the command line flags on fs. Flags left at their zero
// value do not override the configuration.
func Register(fs *flag.FlagSet) *Options {
	return &Options{
		ConfigFile:  fs.String("config", "", "Path to a vcontrol.toml scene file"),
		Help:        fs.Bool("help", false, "Show help message"),
		Backend:     fs.String("backend", "", "Display backend: gl or sdl"),
		Width:       fs.Int("width", 0, "Display width"),
		Height:      fs.Int("height", 0, "Display height"),
		Windowed:    fs.Bool("windowed", false, "Open a window instead of going fullscreen"),
		Dir:         fs.String("dir", "", "Directory holding the channel images"),
		MIDIDriver:  fs.String("midi-driver", "", "MIDI driver: raw, rtmidi, serial or null"),
		MIDIDevice:  fs.String("midi", "", "MIDI device (hw:2,0,0, a port name, or /dev/ttyUSB0@31250)"),
		AudioDriver: fs.String("audio-driver", "", "Audio driver: portaudio, ffmpeg, file or null"),
		AudioDevice: fs.String("audio", "", "Audio input (hw:3,0,0, a device name, or a WAV/MP3 file)"),
		Detector:    fs.String("detector", "", "Audio level detector: first, peak or bass"),
		Statsview:   fs.String("statsview", "", "Serve runtime statistics on this address, e.g. localhost:18066"),
	}
}

// Apply copies every flag that was given over cfg.
func (o *Options) Apply(cfg *config.Config) {
	str := func(dst *string, src *string) {
		if src != nil && *src != "" {
			*dst = *src
		}
	}
	num := func(dst *int, src *int) {
		if src != nil && *src > 0 {
			*dst = *src
		}
	}

	str(&cfg.Display.Backend, o.Backend)
	num(&cfg.Display.Width, o.Width)
	num(&cfg.Display.Height, o.Height)
	if o.Windowed != nil && *o.Windowed {
		cfg.Display.Fullscreen = false
	}
	str(&cfg.Dir, o.Dir)
	str(&cfg.MIDI.Driver, o.MIDIDriver)
	str(&cfg.MIDI.Device, o.MIDIDevice)
	str(&cfg.Audio.Driver, o.AudioDriver)
	str(&cfg.Audio.Device, o.AudioDevice)
	str(&cfg.Audio.Detector, o.Detector)
	str(&cfg.Statsview, o.Statsview)
}
