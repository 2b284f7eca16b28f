package compositor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/richinsley/vcontrol/graphics"
)

type fakeTexture struct {
	id        int
	blend     bool
	alpha     uint8
	destroyed bool
}

func (t *fakeTexture) SetAlphaMod(a uint8) error {
	t.alpha = a
	return nil
}

func (t *fakeTexture) Destroy() {
	t.destroyed = true
}

type copyCall struct {
	tex      *fakeTexture
	src, dst graphics.Rect
	alpha    uint8
}

type fakeDisplay struct {
	w, h      int
	quit      bool
	failCreat bool

	textures []*fakeTexture
	copies   []copyCall
	clears   int
	presents int
	polls    int
}

func newFakeDisplay(w, h int) *fakeDisplay {
	return &fakeDisplay{w: w, h: h}
}

func (d *fakeDisplay) CreateTexture(p *graphics.Pixels, blend bool) (graphics.Texture, error) {
	if d.failCreat {
		return nil, errors.New("out of texture memory")
	}
	t := &fakeTexture{id: len(d.textures), blend: blend}
	d.textures = append(d.textures, t)
	return t, nil
}

func (d *fakeDisplay) Clear() error {
	d.clears++
	return nil
}

func (d *fakeDisplay) Copy(t graphics.Texture, src, dst graphics.Rect) error {
	ft := t.(*fakeTexture)
	d.copies = append(d.copies, copyCall{tex: ft, src: src, dst: dst, alpha: ft.alpha})
	return nil
}

func (d *fakeDisplay) Present()         { d.presents++ }
func (d *fakeDisplay) PollQuit() bool   { d.polls++; return d.quit }
func (d *fakeDisplay) Size() (int, int) { return d.w, d.h }
func (d *fakeDisplay) Shutdown()        {}

// fakeLoader returns a fixed-size image for any path and counts decodes.
type fakeLoader struct {
	w, h    int
	alpha   bool
	fail    bool
	decodes map[string]int
}

func newFakeLoader(w, h int) *fakeLoader {
	return &fakeLoader{w: w, h: h, decodes: make(map[string]int)}
}

func (l *fakeLoader) Load(path string) (*graphics.Pixels, error) {
	l.decodes[path]++
	if l.fail {
		return nil, errors.New("corrupt image")
	}
	p := &graphics.Pixels{Width: l.w, Height: l.h, HasAlpha: l.alpha}
	p.Pix = make([]byte, p.Stride()*p.Height)
	return p, nil
}

// touch creates or updates a file and sets its modification time.
func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		if err := os.WriteFile(path, []byte("image"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
}

// loadedChannel returns a channel whose image has already been loaded.
func loadedChannel(t *testing.T, d *fakeDisplay, l *fakeLoader, mode Mode) *Channel {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ch.png")
	touch(t, path, time.Unix(1000, 0))
	ch := NewChannel(d, l, Descriptor{Name: "ch", Path: path, Mode: mode}, d.w, d.h)
	if !ch.CheckFile() || !ch.Loaded() {
		t.Fatalf("channel failed to load")
	}
	return ch
}
