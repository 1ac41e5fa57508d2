package gvnc

const (
	hextileRaw            = 1 << 0
	hextileBackgroundSet   = 1 << 1
	hextileForegroundSet   = 1 << 2
	hextileAnySubrects     = 1 << 3
	hextileSubrectsColored = 1 << 4
)

// decodeHextile walks 16x16 tiles in row-major order, with
// background/foreground colors persisting across tiles within one
// rectangle until explicitly re-specified.
func (c *Client) decodeHextile(x, y, w, h int) {
	c.mu.Lock()
	fb := c.fb
	c.mu.Unlock()

	var bg, fg uint64
	for ty := y; ty < y+h; ty += 16 {
		th := min(16, y+h-ty)
		for tx := x; tx < x+w; tx += 16 {
			tw := min(16, x+w-tx)
			bg, fg = c.decodeHextileTile(fb, tx, ty, tw, th, bg, fg)
		}
	}
}

func (c *Client) decodeHextileTile(fb *Framebuffer, x, y, w, h int, bg, fg uint64) (uint64, uint64) {
	flags := c.readU8()
	if flags&hextileRaw != 0 {
		rbpp := c.serverFormat.bytesPerPixel()
		rowBytes := w * rbpp
		row := make([]byte, rowBytes)
		for dy := 0; dy < h; dy++ {
			c.readExact(row)
			fb.Blt(row, rowBytes, x, y+dy, w, 1)
		}
		return bg, fg
	}
	if flags&hextileBackgroundSet != 0 {
		bg = c.readPixel()
	}
	if flags&hextileForegroundSet != 0 {
		fg = c.readPixel()
	}
	fb.Fill(bg, x, y, w, h)
	if flags&hextileAnySubrects != 0 {
		count := int(c.readU8())
		for i := 0; i < count; i++ {
			pixel := fg
			if flags&hextileSubrectsColored != 0 {
				pixel = c.readPixel()
			}
			xy := c.readU8()
			wh := c.readU8()
			sx := int(xy >> 4 & 0x0F)
			sy := int(xy & 0x0F)
			sw := int(wh>>4&0x0F) + 1
			sh := int(wh&0x0F) + 1
			fb.Fill(pixel, x+sx, y+sy, sw, sh)
		}
	}
	return bg, fg
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
