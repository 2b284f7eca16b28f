package graphics

import "fmt"

// Rect is a pixel rectangle with its origin at the top left of the display.
type Rect struct {
	X, Y, W, H int32
}

// Pixels is a decoded image ready for upload. Rows are tightly packed: three
// bytes (R, G, B) per pixel without alpha, four (R, G, B, A) with alpha.
type Pixels struct {
	Width    int
	Height   int
	HasAlpha bool
	Pix      []byte
}

// BytesPerPixel returns 4 for images with alpha and 3 otherwise.
func (p *Pixels) BytesPerPixel() int {
	if p.HasAlpha {
		return 4
	}
	return 3
}

// Stride returns the length of one row in bytes.
func (p *Pixels) Stride() int {
	return p.Width * p.BytesPerPixel()
}

// Validate checks the buffer length against the dimensions.
func (p *Pixels) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("invalid image dimensions %dx%d", p.Width, p.Height)
	}
	if len(p.Pix) < p.Stride()*p.Height {
		return fmt.Errorf("pixel buffer too short: %d bytes for %dx%d", len(p.Pix), p.Width, p.Height)
	}
	return nil
}

// Texture is an image resident on the renderer.
type Texture interface {
	// SetAlphaMod sets the alpha multiplier used by subsequent copies.
	SetAlphaMod(alpha uint8) error
	// Destroy releases the texture. The texture must not be used afterwards.
	Destroy()
}

// Renderer accepts textured-rectangle blits. None of its methods are safe
// for concurrent use; they must all be called from the thread that created
// the renderer.
type Renderer interface {
	// CreateTexture uploads pixels. When blend is true the texture is drawn
	// with alpha blending and honours SetAlphaMod.
	CreateTexture(p *Pixels, blend bool) (Texture, error)
	Clear() error
	Copy(t Texture, src, dst Rect) error
	Present()
}

// Display is a Renderer attached to a window.
type Display interface {
	Renderer
	// PollQuit drains pending window events and reports whether the user
	// asked to quit.
	PollQuit() bool
	// Size returns the logical display size in pixels.
	Size() (int, int)
	Shutdown()
}
