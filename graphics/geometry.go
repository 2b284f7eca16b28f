package graphics

// NDC maps r, in pixels from the top left of a w by h display, to normalized
// device coordinates as (left, bottom, width, height).
func (r Rect) NDC(w, h int) [4]float32 {
	fw, fh := float32(w), float32(h)
	return [4]float32{
		2*float32(r.X)/fw - 1,
		1 - 2*float32(r.Y+r.H)/fh,
		2 * float32(r.W) / fw,
		2 * float32(r.H) / fh,
	}
}

// UV maps r, in pixels of a w by h texture uploaded top row first, to texture
// coordinates as (u, v, du, dv) starting at the bottom left corner of r.
func (r Rect) UV(w, h int) [4]float32 {
	fw, fh := float32(w), float32(h)
	return [4]float32{
		float32(r.X) / fw,
		float32(r.Y+r.H) / fh,
		float32(r.W) / fw,
		-float32(r.H) / fh,
	}
}
