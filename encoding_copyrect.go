package gvnc

// decodeCopyRect reads a source (x,y) and copies a w x h rectangle
// within the framebuffer from there to the destination rectangle.
func (c *Client) decodeCopyRect(x, y, w, h int) {
	srcX := int(c.readU16())
	srcY := int(c.readU16())
	c.mu.Lock()
	fb := c.fb
	c.mu.Unlock()
	fb.CopyRect(srcX, srcY, x, y, w, h)
}
