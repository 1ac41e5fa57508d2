package gvnc

// decodeRaw reads h rows of w server-format pixels, straight into the
// framebuffer when formats match exactly (perfect match), translated row
// by row otherwise.
func (c *Client) decodeRaw(x, y, w, h int) {
	if w == 0 || h == 0 {
		return
	}
	rbpp := c.serverFormat.bytesPerPixel()
	rowBytes := w * rbpp
	row := make([]byte, rowBytes)
	c.mu.Lock()
	fb := c.fb
	c.mu.Unlock()
	for dy := 0; dy < h; dy++ {
		c.readExact(row)
		fb.Blt(row, rowBytes, x, y+dy, w, 1)
	}
}
