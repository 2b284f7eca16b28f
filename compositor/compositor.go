package compositor

import (
	"context"
	"log"
	"time"

	"github.com/richinsley/vcontrol/graphics"
)

const (
	DefaultCadence = 80
	DefaultStride  = 10
	DefaultTick    = 30 * time.Millisecond
)

// Drainer is a polled control source. Drain must not block.
type Drainer interface {
	Drain()
}

// Options tune the frame loop. Zero values select the defaults.
type Options struct {
	// Cadence is the length of the reload cycle in ticks.
	Cadence int
	// Stride is the number of ticks between two channels' reload checks, so
	// at most one file is stat'ed per tick.
	Stride int
	// Tick is the pause at the end of every frame.
	Tick time.Duration
}

func (o Options) withDefaults() Options {
	if o.Cadence <= 0 {
		o.Cadence = DefaultCadence
	}
	if o.Stride <= 0 {
		o.Stride = DefaultStride
	}
	if o.Tick <= 0 {
		o.Tick = DefaultTick
	}
	return o
}

// Stats counts the work done by the loop.
type Stats struct {
	Frames    int
	Presented int
	Reloads   int
}

// Compositor drives the channels once per tick.
type Compositor struct {
	display  graphics.Display
	registry *Registry
	polled   Drainer
	opts     Options

	renderOrder []*Channel
	frames      int
	stats       Stats
}

// New creates a compositor over a populated registry. polled may be nil.
func New(display graphics.Display, registry *Registry, polled Drainer, opts Options) *Compositor {
	return &Compositor{
		display:     display,
		registry:    registry,
		polled:      polled,
		opts:        opts.withDefaults(),
		renderOrder: registry.RenderOrder(),
	}
}

// Registry returns the channel registry.
func (c *Compositor) Registry() *Registry {
	return c.registry
}

// Stats returns the counters accumulated so far.
func (c *Compositor) Stats() Stats {
	return c.stats
}

// Step runs one tick without the trailing pause. It returns quit when the
// display asked to close, and redrawn when a frame was presented.
func (c *Compositor) Step() (quit bool, redrawn bool) {
	if c.display.PollQuit() {
		return true, false
	}
	c.stats.Frames++

	// staggered so that at most one channel stats its file per tick
	c.frames = (c.frames + 1) % c.opts.Cadence
	if c.frames%c.opts.Stride == 0 {
		if ch := c.registry.Channel(c.frames / c.opts.Stride); ch != nil {
			if ch.CheckFile() {
				c.stats.Reloads++
			}
		}
	}

	if c.polled != nil {
		c.polled.Drain()
	}

	changed := 0
	for _, ch := range c.registry.Channels() {
		if ch.Prepare() {
			changed++
		}
	}
	if changed == 0 {
		return false, false
	}

	if err := c.display.Clear(); err != nil {
		log.Printf("compositor: clear: %v", err)
	}
	for _, ch := range c.renderOrder {
		ch.Render()
	}
	c.display.Present()
	c.stats.Presented++
	return false, true
}

// Run steps the compositor until the display asks to quit or ctx is
// cancelled. It returns nil on quit and ctx.Err() on cancellation.
func (c *Compositor) Run(ctx context.Context) error {
	timer := time.NewTimer(c.opts.Tick)
	defer timer.Stop()

	for {
		if quit, _ := c.Step(); quit {
			return nil
		}

		timer.Reset(c.opts.Tick)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Close releases every channel's texture.
func (c *Compositor) Close() {
	c.registry.Close()
}
