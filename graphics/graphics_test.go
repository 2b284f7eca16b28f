package graphics

import "testing"

func TestRectNDC(t *testing.T) {
	tests := []struct {
		r    Rect
		want [4]float32
	}{
		{Rect{0, 0, 720, 480}, [4]float32{-1, -1, 2, 2}},
		{Rect{360, 0, 360, 240}, [4]float32{0, 0, 1, 1}},
		{Rect{-72, 480, 72, 48}, [4]float32{-1.2, -1.2, 0.2, 0.2}},
	}
	for _, tt := range tests {
		got := tt.r.NDC(720, 480)
		for i := range got {
			if d := got[i] - tt.want[i]; d > 1e-6 || d < -1e-6 {
				t.Errorf("%+v.NDC() = %v, want %v", tt.r, got, tt.want)
				break
			}
		}
	}
}

func TestRectUV(t *testing.T) {
	got := Rect{0, 0, 100, 50}.UV(100, 50)
	want := [4]float32{0, 1, 1, -1}
	if got != want {
		t.Errorf("UV() = %v, want %v", got, want)
	}
	got = Rect{50, 0, 50, 25}.UV(100, 50)
	want = [4]float32{0.5, 0.5, 0.5, -0.5}
	if got != want {
		t.Errorf("UV() = %v, want %v", got, want)
	}
}

func TestPixelsValidate(t *testing.T) {
	p := &Pixels{Width: 2, Height: 2, Pix: make([]byte, 12)}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	p.HasAlpha = true
	if p.Stride() != 8 {
		t.Errorf("Stride() = %d, want 8", p.Stride())
	}
	if err := p.Validate(); err == nil {
		t.Error("Validate() accepted a short RGBA buffer")
	}
	if err := (&Pixels{}).Validate(); err == nil {
		t.Error("Validate() accepted an empty image")
	}
}
