// Package compositor holds the channel layers and the per-frame loop that
// decides which of them need drawing.
package compositor

import (
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/richinsley/vcontrol/graphics"
)

// Mode selects how a channel is placed on the display.
type Mode int

const (
	// Sprite channels are drawn unscaled at a position derived from the x/y
	// cells, sweeping from fully off one edge to fully off the other.
	Sprite Mode = iota
	// Background channels are anchored at the origin and driven by alpha.
	Background
)

func (m Mode) String() string {
	if m == Background {
		return "background"
	}
	return "sprite"
}

// ImageLoader decodes an image file.
type ImageLoader interface {
	Load(path string) (*graphics.Pixels, error)
}

// Descriptor describes one channel.
type Descriptor struct {
	Name string
	Path string
	Mode Mode
}

// frame is the geometry decided for one frame.
type frame struct {
	skip  bool
	alpha int
	rect  graphics.Rect
}

// Channel is one image layer. All methods except the cell accessors must be
// called from the rendering thread.
type Channel struct {
	renderer graphics.Renderer
	loader   ImageLoader

	name       string
	path       string
	screenW    int
	screenH    int
	background bool

	texture graphics.Texture
	tWidth  int
	tHeight int
	src     graphics.Rect

	cells [numFields]atomic.Int32

	lastMod time.Time

	dst  frame
	last frame
}

// NewChannel creates a channel bound to a renderer and an image path. No
// image is loaded until the first CheckFile.
func NewChannel(renderer graphics.Renderer, loader ImageLoader, desc Descriptor, screenW, screenH int) *Channel {
	ch := &Channel{
		renderer:   renderer,
		loader:     loader,
		name:       desc.Name,
		path:       desc.Path,
		screenW:    screenW,
		screenH:    screenH,
		background: desc.Mode == Background,
	}
	ch.cells[AlphaOffset].Store(0xff)
	return ch
}

func (ch *Channel) Name() string     { return ch.name }
func (ch *Channel) Path() string     { return ch.path }
func (ch *Channel) Background() bool { return ch.background }

// Loaded reports whether the channel currently holds a texture.
func (ch *Channel) Loaded() bool { return ch.texture != nil }

// Cell returns the current value of a control cell.
func (ch *Channel) Cell(f Field) int32 {
	if f < 0 || f >= numFields {
		return 0
	}
	return ch.cells[f].Load()
}

// SetCell stores a value in a control cell.
func (ch *Channel) SetCell(f Field, v int32) {
	if f < 0 || f >= numFields {
		return
	}
	ch.cells[f].Store(v)
}

// Dest returns the destination rectangle, alpha and skip flag computed by the
// most recent Prepare.
func (ch *Channel) Dest() (graphics.Rect, int, bool) {
	return ch.dst.rect, ch.dst.alpha, ch.dst.skip
}

// CheckFile reloads the image if the file's modification time differs from
// the last one seen. The modification time is recorded before decoding, so a
// file that fails to decode is not retried until it is touched again. It
// returns true if a reload was attempted.
func (ch *Channel) CheckFile() bool {
	fi, err := os.Stat(ch.path)
	if err != nil {
		return false
	}
	if fi.ModTime().Equal(ch.lastMod) {
		return false
	}
	ch.lastMod = fi.ModTime()
	ch.load()
	return true
}

func (ch *Channel) load() {
	pix, err := ch.loader.Load(ch.path)
	if err != nil {
		log.Printf("channel: failed to load %s: %v", ch.path, err)
		return
	}
	log.Printf("channel: loaded %s: alpha: %v, w %d, h %d", ch.path, pix.HasAlpha, pix.Width, pix.Height)

	if ch.texture != nil {
		ch.texture.Destroy()
		ch.texture = nil
	}

	if err := pix.Validate(); err != nil {
		log.Printf("channel: failed to create texture for %s: %v", ch.path, err)
		return
	}
	tex, err := ch.renderer.CreateTexture(pix, ch.background)
	if err != nil {
		log.Printf("channel: failed to create texture for %s: %v", ch.path, err)
		return
	}
	ch.texture = tex
	ch.tWidth = pix.Width
	ch.tHeight = pix.Height
	ch.src = graphics.Rect{X: 0, Y: 0, W: int32(pix.Width), H: int32(pix.Height)}
}

// CalcOffset maps a knob value onto a position. Zero means the knob has not
// been touched and collapses to fully off-screen (-size); 1..127 sweeps from
// just off the near edge to max.
func CalcOffset(size, max, controller int) int {
	if controller == 0 {
		return -size
	}
	fc := float64(controller)
	fm := float64(max)
	fs := float64(size)
	return int(float32((fc/127.0)*(fm+fs) - fs))
}

// CalcControl scales a signed 16-bit control sample into a delta of up to
// twice max in either direction.
func CalcControl(max, controller int) int {
	if controller == 0 {
		return 0
	}
	fm := float64(max)
	fc := float64(controller)
	return int(float32((fc / 32768.0) * (fm * 2.0)))
}

// AlphaLevel maps the alpha knob onto an alpha value. A knob at zero is fully
// transparent.
func AlphaLevel(controller int) int {
	if controller == 0 {
		return 0
	}
	return CalcOffset(0, 0xff, controller)
}

func (ch *Channel) skipRender() bool {
	r := ch.dst.rect
	if r.X+r.W < 0 || r.Y+r.H < 0 {
		return true
	}
	if int(r.X) >= ch.screenW || int(r.Y) >= ch.screenH {
		return true
	}
	return ch.background && ch.dst.alpha == 0
}

// Prepare recomputes the destination geometry from the control cells and
// reports whether the channel's contribution to the frame has changed since
// the last Render.
func (ch *Channel) Prepare() bool {
	if ch.texture == nil {
		return false
	}

	if ch.background {
		ch.dst.rect = graphics.Rect{X: 0, Y: 0, W: int32(ch.tWidth), H: int32(ch.tHeight)}
		ch.dst.alpha = AlphaLevel(int(ch.cells[AlphaOffset].Load())) +
			CalcControl(0xff, int(ch.cells[AlphaControl].Load()))
	} else {
		x := CalcOffset(ch.tWidth, ch.screenW, int(ch.cells[XOffset].Load())) +
			CalcControl(ch.screenW, int(ch.cells[XControl].Load()))
		// inverted so that turning the knob up moves the sprite up
		y := CalcOffset(ch.tHeight, ch.screenH, 127-int(ch.cells[YOffset].Load())) +
			CalcControl(ch.screenH, int(ch.cells[YControl].Load()))
		ch.dst.rect = graphics.Rect{X: int32(x), Y: int32(y), W: int32(ch.tWidth), H: int32(ch.tHeight)}
	}

	ch.dst.skip = ch.skipRender()

	if ch.dst.skip && ch.last.skip {
		return false
	}
	return ch.dst.rect != ch.last.rect || ch.dst.alpha != ch.last.alpha
}

// Render draws the channel unless it is skipped, then commits this frame's
// geometry as the baseline for the next Prepare.
func (ch *Channel) Render() {
	if ch.texture == nil {
		return
	}

	if !ch.dst.skip {
		if ch.background {
			if err := ch.texture.SetAlphaMod(clampAlpha(ch.dst.alpha)); err != nil {
				log.Printf("channel: %s: alpha: %v", ch.name, err)
			}
		}
		if err := ch.renderer.Copy(ch.texture, ch.src, ch.dst.rect); err != nil {
			log.Printf("channel: %s: copy: %v", ch.name, err)
		}
	}

	ch.last = ch.dst
}

func clampAlpha(a int) uint8 {
	return uint8(min(max(a, 0), 0xff))
}

// Close releases the texture.
func (ch *Channel) Close() {
	if ch.texture != nil {
		ch.texture.Destroy()
		ch.texture = nil
	}
}
