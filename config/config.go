// Package config loads the vcontrol scene description: the display, the
// channels and which controller drives which cell.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/richinsley/vcontrol/compositor"
	"github.com/richinsley/vcontrol/graphics"
	"github.com/richinsley/vcontrol/inputs"
)

// Config is the decoded vcontrol.toml.
type Config struct {
	Display  Display   `toml:"display"`
	Dir      string    `toml:"dir"`
	Channels []Channel `toml:"channel"`
	MIDI     MIDI      `toml:"midi"`
	Audio    Audio     `toml:"audio"`
	Loop     Loop      `toml:"loop"`
	// Statsview is the listen address of the runtime stats server. Empty
	// disables it.
	Statsview string `toml:"statsview"`
}

type Display struct {
	Backend    string `toml:"backend"`
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Fullscreen bool   `toml:"fullscreen"`
}

// Channel is one image layer. Path is relative to Config.Dir unless absolute.
type Channel struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
	Mode string `toml:"mode"`
}

// Binding routes a MIDI controller slot to a "<channel>.<field>" target.
type Binding struct {
	Slot   int    `toml:"slot"`
	Target string `toml:"target"`
}

type MIDI struct {
	Driver   string    `toml:"driver"`
	Device   string    `toml:"device"`
	Bindings []Binding `toml:"binding"`
}

type Audio struct {
	Driver   string   `toml:"driver"`
	Device   string   `toml:"device"`
	Detector string   `toml:"detector"`
	Targets  []string `toml:"targets"`
}

type Loop struct {
	Cadence int `toml:"cadence"`
	Stride  int `toml:"stride"`
	TickMS  int `toml:"tick_ms"`
}

var (
	backends  = map[string]bool{"gl": true, "sdl": true}
	detectors = map[string]bool{"first": true, "peak": true, "bass": true}
)

// Default returns the stock eight channel rig: five sprites on knobs 0-4
// (vertical) and 16-20 (horizontal), three backgrounds faded by knobs 5-7,
// and the audio level lifting ch1.
func Default() *Config {
	c := &Config{
		Display: Display{Backend: "sdl", Width: 720, Height: 480, Fullscreen: true},
		Dir:     ".",
		MIDI:    MIDI{Driver: "raw", Device: "hw:2,0,0"},
		Audio: Audio{
			Driver:   "ffmpeg",
			Device:   "hw:3,0,0",
			Detector: "first",
			Targets:  []string{"ch1.y_control"},
		},
		Loop: Loop{
			Cadence: compositor.DefaultCadence,
			Stride:  compositor.DefaultStride,
			TickMS:  int(compositor.DefaultTick / time.Millisecond),
		},
	}
	for i := 0; i < 8; i++ {
		mode := "sprite"
		if i >= 5 {
			mode = "background"
		}
		name := fmt.Sprintf("ch%d", i)
		c.Channels = append(c.Channels, Channel{Name: name, Path: name + ".png", Mode: mode})
	}
	for i := 0; i < 5; i++ {
		c.MIDI.Bindings = append(c.MIDI.Bindings,
			Binding{Slot: i, Target: fmt.Sprintf("ch%d.y_offset", i)},
			Binding{Slot: 16 + i, Target: fmt.Sprintf("ch%d.x_offset", i)})
	}
	for i := 5; i < 8; i++ {
		c.MIDI.Bindings = append(c.MIDI.Bindings, Binding{Slot: i, Target: fmt.Sprintf("ch%d.a_offset", i)})
	}
	return c
}

// Load reads a TOML file. Keys missing from the file keep their Default
// values; a file that lists channels replaces the default channel set and
// its MIDI bindings.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var file Config
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse error in %s: unknown key %s", path, undecoded[0])
	}

	c := Default()
	c.merge(&file, md)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c *Config) merge(f *Config, md toml.MetaData) {
	set := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	setInt := func(dst *int, src int) {
		if src != 0 {
			*dst = src
		}
	}

	set(&c.Display.Backend, f.Display.Backend)
	setInt(&c.Display.Width, f.Display.Width)
	setInt(&c.Display.Height, f.Display.Height)
	if md.IsDefined("display", "fullscreen") {
		c.Display.Fullscreen = f.Display.Fullscreen
	}
	set(&c.Dir, f.Dir)
	set(&c.Statsview, f.Statsview)

	if md.IsDefined("channel") {
		c.Channels = f.Channels
		c.MIDI.Bindings = nil
		c.Audio.Targets = nil
	}
	set(&c.MIDI.Driver, f.MIDI.Driver)
	set(&c.MIDI.Device, f.MIDI.Device)
	if md.IsDefined("midi", "binding") {
		c.MIDI.Bindings = f.MIDI.Bindings
	}

	set(&c.Audio.Driver, f.Audio.Driver)
	set(&c.Audio.Device, f.Audio.Device)
	set(&c.Audio.Detector, f.Audio.Detector)
	if md.IsDefined("audio", "targets") {
		c.Audio.Targets = f.Audio.Targets
	}

	setInt(&c.Loop.Cadence, f.Loop.Cadence)
	setInt(&c.Loop.Stride, f.Loop.Stride)
	setInt(&c.Loop.TickMS, f.Loop.TickMS)
}

// Validate checks everything that can be checked without opening devices.
func (c *Config) Validate() error {
	var errs []error
	if !backends[c.Display.Backend] {
		errs = append(errs, fmt.Errorf("unknown display backend %q", c.Display.Backend))
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		errs = append(errs, fmt.Errorf("bad display size %dx%d", c.Display.Width, c.Display.Height))
	}
	if len(c.Channels) == 0 {
		errs = append(errs, errors.New("no channels"))
	}

	reg := compositor.NewRegistry()
	for _, ch := range c.Channels {
		desc, err := ch.descriptor(c.Dir)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, err := reg.Add(compositor.NewChannel(nil, nil, desc, c.Display.Width, c.Display.Height)); err != nil {
			errs = append(errs, err)
		}
	}

	seen := make(map[int]bool)
	for _, b := range c.MIDI.Bindings {
		if b.Slot < 0 || b.Slot >= inputs.MaxSlots {
			errs = append(errs, fmt.Errorf("midi binding %q: %w: %d", b.Target, inputs.ErrSlotRange, b.Slot))
		} else if seen[b.Slot] {
			errs = append(errs, fmt.Errorf("midi slot %d bound twice", b.Slot))
		}
		seen[b.Slot] = true
		if _, err := reg.Resolve(b.Target); err != nil {
			errs = append(errs, fmt.Errorf("midi slot %d: %w", b.Slot, err))
		}
	}
	for _, t := range c.Audio.Targets {
		if _, err := reg.Resolve(t); err != nil {
			errs = append(errs, fmt.Errorf("audio: %w", err))
		}
	}
	if c.Audio.Detector != "" && !detectors[c.Audio.Detector] {
		errs = append(errs, fmt.Errorf("unknown audio detector %q", c.Audio.Detector))
	}

	if c.Loop.Cadence <= 0 || c.Loop.Stride <= 0 || c.Loop.TickMS <= 0 {
		errs = append(errs, fmt.Errorf("loop values must be positive: %+v", c.Loop))
	} else if n := c.Loop.Cadence / c.Loop.Stride; n < len(c.Channels) {
		errs = append(errs, fmt.Errorf("loop cadence %d with stride %d only checks %d of %d channels",
			c.Loop.Cadence, c.Loop.Stride, n, len(c.Channels)))
	}
	return errors.Join(errs...)
}

func (ch Channel) descriptor(dir string) (compositor.Descriptor, error) {
	desc := compositor.Descriptor{Name: ch.Name, Path: ch.Path}
	if ch.Name == "" || ch.Path == "" {
		return desc, fmt.Errorf("channel %q needs a name and a path", ch.Name)
	}
	switch ch.Mode {
	case "sprite", "":
		desc.Mode = compositor.Sprite
	case "background":
		desc.Mode = compositor.Background
	default:
		return desc, fmt.Errorf("channel %s: unknown mode %q", ch.Name, ch.Mode)
	}
	if !filepath.IsAbs(ch.Path) && dir != "" {
		desc.Path = filepath.Join(dir, ch.Path)
	}
	return desc, nil
}

// Options returns the frame loop settings.
func (c *Config) Options() compositor.Options {
	return compositor.Options{
		Cadence: c.Loop.Cadence,
		Stride:  c.Loop.Stride,
		Tick:    time.Duration(c.Loop.TickMS) * time.Millisecond,
	}
}

// Registry creates the configured channels in file order.
func (c *Config) Registry(renderer graphics.Renderer, loader compositor.ImageLoader) (*compositor.Registry, error) {
	reg := compositor.NewRegistry()
	for _, ch := range c.Channels {
		desc, err := ch.descriptor(c.Dir)
		if err != nil {
			return nil, err
		}
		if _, err := reg.Add(compositor.NewChannel(renderer, loader, desc, c.Display.Width, c.Display.Height)); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// BindMIDI routes the configured slots on p to registry cells.
func (c *Config) BindMIDI(reg *compositor.Registry, p *inputs.Polled) error {
	for _, b := range c.MIDI.Bindings {
		h, err := reg.Resolve(b.Target)
		if err != nil {
			return fmt.Errorf("midi slot %d: %w", b.Slot, err)
		}
		if err := p.Bind(b.Slot, h); err != nil {
			return fmt.Errorf("midi binding %q: %w", b.Target, err)
		}
	}
	return nil
}

// BindAudio routes the follower's level to the configured targets.
func (c *Config) BindAudio(reg *compositor.Registry, f *inputs.Follower) error {
	for _, t := range c.Audio.Targets {
		h, err := reg.Resolve(t)
		if err != nil {
			return fmt.Errorf("audio: %w", err)
		}
		f.Bind(h)
	}
	return nil
}
