package gvnc

// decodeRRE reads a background fill followed by count colour subrects.
func (c *Client) decodeRRE(x, y, w, h int) {
	count := int(c.readU32())
	bg := c.readPixel()

	c.mu.Lock()
	fb := c.fb
	c.mu.Unlock()
	fb.Fill(bg, x, y, w, h)

	for i := 0; i < count; i++ {
		pixel := c.readPixel()
		sx := int(c.readU16())
		sy := int(c.readU16())
		sw := int(c.readU16())
		sh := int(c.readU16())
		fb.Fill(pixel, x+sx, y+sy, sw, sh)
	}
}
