package compositor

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/richinsley/vcontrol/graphics"
)

func TestCalcOffset(t *testing.T) {
	tests := []struct {
		size, max, c int
		want         int
	}{
		{100, 720, 0, -100},
		{100, 720, 127, 720},
		{0, 255, 127, 255},
		{100, 720, 64, 313},
		{50, 480, 63, 212},
		{50, 480, 127, 480},
	}
	for _, tt := range tests {
		if got := CalcOffset(tt.size, tt.max, tt.c); got != tt.want {
			t.Errorf("CalcOffset(%d, %d, %d) = %d, want %d", tt.size, tt.max, tt.c, got, tt.want)
		}
	}
}

func TestCalcOffsetMonotonic(t *testing.T) {
	for _, dims := range [][2]int{{100, 720}, {50, 480}, {0, 255}, {640, 480}} {
		prev := CalcOffset(dims[0], dims[1], 0)
		for c := 1; c <= 127; c++ {
			got := CalcOffset(dims[0], dims[1], c)
			if got < prev {
				t.Fatalf("CalcOffset(%d, %d, %d) = %d, below %d at c-1", dims[0], dims[1], c, got, prev)
			}
			prev = got
		}
	}
}

func TestCalcControl(t *testing.T) {
	tests := []struct {
		max, c int
		want   int
	}{
		{480, 0, 0},
		{480, 16384, 480},
		{480, -16384, -480},
		{255, -32768, -510},
		{720, 327, 14},
	}
	for _, tt := range tests {
		if got := CalcControl(tt.max, tt.c); got != tt.want {
			t.Errorf("CalcControl(%d, %d) = %d, want %d", tt.max, tt.c, got, tt.want)
		}
	}
}

func TestAlphaLevel(t *testing.T) {
	if got := AlphaLevel(0); got != 0 {
		t.Errorf("AlphaLevel(0) = %d, want 0", got)
	}
	if got := AlphaLevel(127); got != 255 {
		t.Errorf("AlphaLevel(127) = %d, want 255", got)
	}
	if got := AlphaLevel(64); got != 128 {
		t.Errorf("AlphaLevel(64) = %d, want 128", got)
	}
	// the power-on default overshoots and is clamped at render time
	if got := AlphaLevel(255); got != 512 {
		t.Errorf("AlphaLevel(255) = %d, want 512", got)
	}
}

func TestCheckFileReloadsOncePerModTime(t *testing.T) {
	d := newFakeDisplay(720, 480)
	l := newFakeLoader(100, 50)
	path := filepath.Join(t.TempDir(), "ch0.png")
	touch(t, path, time.Unix(1000, 0))

	ch := NewChannel(d, l, Descriptor{Name: "ch0", Path: path}, 720, 480)
	if ch.Loaded() {
		t.Fatal("channel loaded before first CheckFile")
	}
	if !ch.CheckFile() {
		t.Fatal("first CheckFile did not reload")
	}
	for i := 0; i < 3; i++ {
		if ch.CheckFile() {
			t.Fatalf("CheckFile %d reloaded an unchanged file", i)
		}
	}
	if got := l.decodes[path]; got != 1 {
		t.Errorf("decodes = %d, want 1", got)
	}

	touch(t, path, time.Unix(2000, 0))
	if !ch.CheckFile() {
		t.Fatal("CheckFile ignored a new modification time")
	}
	if got := l.decodes[path]; got != 2 {
		t.Errorf("decodes = %d, want 2", got)
	}
	if len(d.textures) != 2 {
		t.Fatalf("textures = %d, want 2", len(d.textures))
	}
	if !d.textures[0].destroyed {
		t.Error("old texture was not destroyed")
	}
	if d.textures[1].destroyed {
		t.Error("new texture was destroyed")
	}
}

func TestCheckFileMissing(t *testing.T) {
	d := newFakeDisplay(720, 480)
	l := newFakeLoader(100, 50)
	ch := NewChannel(d, l, Descriptor{Name: "ch0", Path: filepath.Join(t.TempDir(), "none.png")}, 720, 480)
	if ch.CheckFile() {
		t.Error("CheckFile reloaded a missing file")
	}
	if ch.Prepare() {
		t.Error("Prepare reported a change without a texture")
	}
	ch.Render()
	if len(d.copies) != 0 {
		t.Errorf("copies = %d, want 0", len(d.copies))
	}
}

func TestDecodeFailureKeepsTexture(t *testing.T) {
	d := newFakeDisplay(720, 480)
	l := newFakeLoader(100, 50)
	ch := loadedChannel(t, d, l, Sprite)

	l.fail = true
	touch(t, ch.Path(), time.Unix(5000, 0))
	if !ch.CheckFile() {
		t.Fatal("CheckFile did not attempt the reload")
	}
	if !ch.Loaded() {
		t.Fatal("decode failure dropped the texture")
	}
	if d.textures[0].destroyed {
		t.Error("decode failure destroyed the texture")
	}

	// the failed modification time is not retried
	if ch.CheckFile() {
		t.Error("CheckFile retried a file that failed to decode")
	}
}

func TestTextureFailureLeavesNoTexture(t *testing.T) {
	d := newFakeDisplay(720, 480)
	l := newFakeLoader(100, 50)
	ch := loadedChannel(t, d, l, Sprite)

	d.failCreat = true
	touch(t, ch.Path(), time.Unix(5000, 0))
	ch.CheckFile()
	if ch.Loaded() {
		t.Error("channel kept a texture after texture creation failed")
	}
	if !d.textures[0].destroyed {
		t.Error("old texture was not destroyed")
	}
}

func TestSpritePlacement(t *testing.T) {
	d := newFakeDisplay(720, 480)
	l := newFakeLoader(100, 50)
	ch := loadedChannel(t, d, l, Sprite)

	ch.SetCell(XOffset, 64)
	ch.SetCell(YOffset, 64)
	if !ch.Prepare() {
		t.Fatal("Prepare reported no change for a new position")
	}
	rect, _, skip := ch.Dest()
	want := graphics.Rect{X: 313, Y: 212, W: 100, H: 50}
	if rect != want || skip {
		t.Fatalf("Dest() = %+v skip %v, want %+v skip false", rect, skip, want)
	}

	ch.Render()
	if len(d.copies) != 1 {
		t.Fatalf("copies = %d, want 1", len(d.copies))
	}
	c := d.copies[0]
	if c.dst != want {
		t.Errorf("copy dst = %+v, want %+v", c.dst, want)
	}
	if c.src != (graphics.Rect{W: 100, H: 50}) {
		t.Errorf("copy src = %+v, want full texture", c.src)
	}
	if d.textures[0].blend {
		t.Error("sprite texture created with blending")
	}

	// audio control adds to the knob position
	ch.SetCell(YControl, 16384)
	ch.Prepare()
	rect, _, _ = ch.Dest()
	if rect.Y != 212+480 {
		t.Errorf("Y with control = %d, want %d", rect.Y, 212+480)
	}
}

func TestPrepareRenderPrepare(t *testing.T) {
	d := newFakeDisplay(720, 480)
	l := newFakeLoader(100, 50)
	ch := loadedChannel(t, d, l, Sprite)
	ch.SetCell(XOffset, 30)
	ch.SetCell(YOffset, 90)

	if !ch.Prepare() {
		t.Fatal("first Prepare reported no change")
	}
	ch.Render()
	if ch.Prepare() {
		t.Error("Prepare after Render reported a change with unchanged cells")
	}

	ch.SetCell(XOffset, 31)
	if !ch.Prepare() {
		t.Error("Prepare missed an x change")
	}
}

func TestSpriteOffscreenSkips(t *testing.T) {
	d := newFakeDisplay(720, 480)
	l := newFakeLoader(100, 50)
	ch := loadedChannel(t, d, l, Sprite)

	// the default y_offset of 0 puts the sprite just below the display
	if !ch.Prepare() {
		t.Fatal("first Prepare reported no change")
	}
	if _, _, skip := ch.Dest(); !skip {
		t.Fatal("sprite at default position not skipped")
	}
	ch.Render()
	if len(d.copies) != 0 {
		t.Errorf("copies = %d, want 0", len(d.copies))
	}

	// moving around while off-screen is not a change
	ch.SetCell(XOffset, 100)
	if ch.Prepare() {
		t.Error("Prepare reported a change while staying off-screen")
	}

	ch.SetCell(XOffset, 127)
	ch.SetCell(YOffset, 64)
	ch.Prepare()
	if _, _, skip := ch.Dest(); !skip {
		t.Error("sprite at x == width not skipped")
	}
}

func TestBackground(t *testing.T) {
	d := newFakeDisplay(720, 480)
	l := newFakeLoader(200, 100)
	l.alpha = true
	ch := loadedChannel(t, d, l, Background)

	if !d.textures[0].blend {
		t.Error("background texture created without blending")
	}

	if !ch.Prepare() {
		t.Fatal("first Prepare reported no change")
	}
	rect, alpha, skip := ch.Dest()
	if rect != (graphics.Rect{W: 200, H: 100}) || skip {
		t.Fatalf("Dest() = %+v skip %v, want origin-anchored and visible", rect, skip)
	}
	if alpha != 512 {
		t.Errorf("alpha = %d, want 512", alpha)
	}
	ch.Render()
	if got := d.copies[0].alpha; got != 255 {
		t.Errorf("alpha mod = %d, want 255", got)
	}

	ch.SetCell(AlphaOffset, 64)
	if !ch.Prepare() {
		t.Fatal("Prepare missed an alpha change")
	}
	ch.Render()
	if got := d.copies[1].alpha; got != 128 {
		t.Errorf("alpha mod = %d, want 128", got)
	}

	ch.SetCell(AlphaOffset, 0)
	if !ch.Prepare() {
		t.Fatal("Prepare missed the fade out")
	}
	if _, _, skip := ch.Dest(); !skip {
		t.Error("background at alpha 0 not skipped")
	}
	ch.Render()
	if len(d.copies) != 2 {
		t.Errorf("copies = %d, want 2", len(d.copies))
	}

	// negative alpha is not zero, so it is drawn, clamped to transparent
	ch.SetCell(AlphaOffset, 1)
	ch.SetCell(AlphaControl, -32768)
	ch.Prepare()
	ch.Render()
	if len(d.copies) != 3 || d.copies[2].alpha != 0 {
		t.Errorf("negative alpha not clamped to 0")
	}
}

func TestSpriteIgnoresAlpha(t *testing.T) {
	d := newFakeDisplay(720, 480)
	l := newFakeLoader(100, 50)
	ch := loadedChannel(t, d, l, Sprite)
	ch.SetCell(XOffset, 64)
	ch.SetCell(YOffset, 64)
	ch.SetCell(AlphaOffset, 0)

	ch.Prepare()
	if _, _, skip := ch.Dest(); skip {
		t.Error("sprite skipped for alpha 0")
	}
}

func TestCellRange(t *testing.T) {
	d := newFakeDisplay(720, 480)
	ch := NewChannel(d, newFakeLoader(1, 1), Descriptor{Name: "ch0"}, 720, 480)
	if got := ch.Cell(AlphaOffset); got != 0xff {
		t.Errorf("default a_offset = %d, want 255", got)
	}
	ch.SetCell(numFields, 9)
	if got := ch.Cell(numFields); got != 0 {
		t.Errorf("Cell(out of range) = %d, want 0", got)
	}
}
