// Package sdlrenderer implements graphics.Display with the SDL2 accelerated
// renderer.
package sdlrenderer

import (
	"fmt"
	"log"
	"unsafe"

	"github.com/richinsley/vcontrol/graphics"
	"github.com/veandco/go-sdl2/sdl"
)

// channel masks for byte ordered R, G, B, A pixels on a little endian host
const (
	rmask = 0x000000ff
	gmask = 0x0000ff00
	bmask = 0x00ff0000
	amask = 0xff000000
)

// Display is an SDL window and renderer. All methods must be called from
// the main thread.
type Display struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	width    int
	height   int
}

type texture struct {
	tex *sdl.Texture
}

func (t *texture) SetAlphaMod(alpha uint8) error {
	return t.tex.SetAlphaMod(alpha)
}

func (t *texture) Destroy() {
	if t.tex != nil {
		t.tex.Destroy()
		t.tex = nil
	}
}

// New opens a width by height window.
func New(width, height int, fullscreen bool) (*Display, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("sdl: %w", err)
	}

	flags := uint32(sdl.WINDOW_SHOWN)
	if fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN
	}
	window, err := sdl.CreateWindow("vcontrol",
		int32(sdl.WINDOWPOS_UNDEFINED), int32(sdl.WINDOWPOS_UNDEFINED),
		int32(width), int32(height), flags)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("sdl: could not create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, uint32(sdl.RENDERER_ACCELERATED))
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("sdl: could not create renderer: %w", err)
	}
	// the desktop may not honour the requested fullscreen mode
	if err := renderer.SetLogicalSize(int32(width), int32(height)); err != nil {
		log.Printf("sdl: logical size: %v", err)
	}

	if fullscreen {
		sdl.ShowCursor(sdl.DISABLE)
	}

	return &Display{
		window:   window,
		renderer: renderer,
		width:    width,
		height:   height,
	}, nil
}

func toSDL(r graphics.Rect) sdl.Rect {
	return sdl.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

// CreateTexture uploads p through a temporary surface.
func (d *Display) CreateTexture(p *graphics.Pixels, blend bool) (graphics.Texture, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var a uint32
	if p.HasAlpha {
		a = amask
	}
	surface, err := sdl.CreateRGBSurfaceFrom(unsafe.Pointer(&p.Pix[0]),
		int32(p.Width), int32(p.Height), p.BytesPerPixel()*8, p.Stride(),
		rmask, gmask, bmask, a)
	if err != nil {
		return nil, fmt.Errorf("sdl: could not create surface: %w", err)
	}
	defer surface.Free()

	tex, err := d.renderer.CreateTextureFromSurface(surface)
	if err != nil {
		return nil, fmt.Errorf("sdl: could not create texture: %w", err)
	}
	if blend {
		if err := tex.SetBlendMode(sdl.BLENDMODE_BLEND); err != nil {
			tex.Destroy()
			return nil, fmt.Errorf("sdl: blend mode: %w", err)
		}
	}
	return &texture{tex: tex}, nil
}

func (d *Display) Clear() error {
	return d.renderer.Clear()
}

func (d *Display) Copy(t graphics.Texture, src, dst graphics.Rect) error {
	tex, ok := t.(*texture)
	if !ok || tex.tex == nil {
		return fmt.Errorf("sdl: invalid texture %T", t)
	}
	s, r := toSDL(src), toSDL(dst)
	return d.renderer.Copy(tex.tex, &s, &r)
}

func (d *Display) Present() {
	d.renderer.Present()
}

// PollQuit drains the event queue. Closing the window or pressing escape
// quits.
func (d *Display) PollQuit() bool {
	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch ev := event.(type) {
		case *sdl.QuitEvent:
			quit = true
		case *sdl.KeyboardEvent:
			if ev.Type == sdl.KEYDOWN && ev.Keysym.Sym == sdl.K_ESCAPE {
				quit = true
			}
		}
	}
	return quit
}

func (d *Display) Size() (int, int) {
	return d.width, d.height
}

func (d *Display) Shutdown() {
	if err := d.renderer.Destroy(); err != nil {
		log.Printf("sdl: %v", err)
	}
	if err := d.window.Destroy(); err != nil {
		log.Printf("sdl: %v", err)
	}
	sdl.Quit()
}
