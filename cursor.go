package gvnc

// Cursor is the pointer shape the server most recently pushed via the
// rich-cursor or X-cursor pseudo-encodings. It is emitted whole each time
// and never mutated in place — a host holding a *Cursor from a prior
// cursor-changed event never sees it change; Go's garbage collector
// frees the old value once the host drops its reference.
type Cursor struct {
	Width, Height int
	HotspotX      int
	HotspotY      int
	// RGBA holds Width*Height*4 bytes, 8 bits per component, row-major,
	// straight (non-premultiplied) alpha.
	RGBA []byte
}

func newCursor(w, h, hx, hy int) *Cursor {
	return &Cursor{
		Width: w, Height: h,
		HotspotX: hx, HotspotY: hy,
		RGBA: make([]byte, w*h*4),
	}
}

func (c *Cursor) setPixel(x, y int, r, g, b, a uint8) {
	i := (y*c.Width + x) * 4
	c.RGBA[i] = r
	c.RGBA[i+1] = g
	c.RGBA[i+2] = b
	c.RGBA[i+3] = a
}
