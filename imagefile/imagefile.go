// Package imagefile decodes image files into packed RGB or RGBA scanlines.
//
// PNG and JPEG are decoded by the standard library; BMP, TIFF and WebP are
// registered from golang.org/x/image so any of them can be used as a
// channel source.
package imagefile

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/richinsley/vcontrol/graphics"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is a decoded image held as packed scanlines.
type Image struct {
	Width    int
	Height   int
	HasAlpha bool
	Format   string

	stride int
	pix    []byte
}

// Open decodes the image file at path.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imagefile: %w", err)
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("imagefile: decoding %s: %w", path, err)
	}
	return fromImage(src, format), nil
}

func fromImage(src image.Image, format string) *Image {
	b := src.Bounds()
	img := &Image{
		Width:    b.Dx(),
		Height:   b.Dy(),
		HasAlpha: hasAlpha(src),
		Format:   format,
	}

	// non-premultiplied, so the colour bytes survive untouched for
	// translucent pixels
	nrgba, ok := src.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
		xdraw.Draw(nrgba, nrgba.Bounds(), src, b.Min, xdraw.Src)
	}

	if img.HasAlpha {
		img.stride = 4 * img.Width
		img.pix = make([]byte, img.stride*img.Height)
		for y := 0; y < img.Height; y++ {
			copy(img.pix[y*img.stride:], nrgba.Pix[y*nrgba.Stride:y*nrgba.Stride+img.stride])
		}
		return img
	}

	img.stride = 3 * img.Width
	img.pix = make([]byte, img.stride*img.Height)
	for y := 0; y < img.Height; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		out := img.pix[y*img.stride:]
		for x := 0; x < img.Width; x++ {
			out[x*3+0] = row[x*4+0]
			out[x*3+1] = row[x*4+1]
			out[x*3+2] = row[x*4+2]
		}
	}
	return img
}

// hasAlpha reports whether the source carries an alpha channel. PNG files
// with an alpha channel decode as NRGBA; for everything else an image that
// is not fully opaque is treated as having alpha.
func hasAlpha(src image.Image) bool {
	switch src.ColorModel() {
	case color.NRGBAModel, color.NRGBA64Model, color.AlphaModel, color.Alpha16Model:
		return true
	}
	if o, ok := src.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}

// Stride returns the number of bytes in one scanline: 3*Width without alpha
// and 4*Width with alpha.
func (img *Image) Stride() int {
	return img.stride
}

// Scanline returns row i, from 0 to Height-1. The slice aliases the image
// buffer and is invalid after Close.
func (img *Image) Scanline(i int) []byte {
	if img.pix == nil || i < 0 || i >= img.Height {
		return nil
	}
	return img.pix[i*img.stride : (i+1)*img.stride]
}

// Close releases the decoded buffer.
func (img *Image) Close() {
	img.pix = nil
}

// Loader decodes files into graphics.Pixels for upload.
type Loader struct{}

// Load decodes path and copies its scanlines into a packed pixel buffer.
func (Loader) Load(path string) (*graphics.Pixels, error) {
	img, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	p := &graphics.Pixels{
		Width:    img.Width,
		Height:   img.Height,
		HasAlpha: img.HasAlpha,
		Pix:      make([]byte, img.Stride()*img.Height),
	}
	for i := 0; i < img.Height; i++ {
		copy(p.Pix[i*img.Stride():], img.Scanline(i))
	}
	return p, nil
}
