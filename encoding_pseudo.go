package gvnc

// decodeDesktopResize rebuilds the framebuffer at a new size. The host
// must not retain a *Framebuffer obtained before a resize.
func (c *Client) decodeDesktopResize(w, h int) {
	c.mu.Lock()
	c.desktopWidth, c.desktopHeight = w, h
	c.fb = NewFramebuffer(w, h, c.serverFormat, c.localFormat)
	c.mu.Unlock()
	c.emitDesktopResize(w, h)
}

// decodeWMVi handles a new pixel format arriving alongside a (possibly
// also new) desktop size.
func (c *Client) decodeWMVi(w, h int) {
	format := unmarshalPixelFormat(c.readN(pixelFormatWireSize))
	c.mu.Lock()
	c.serverFormat = format
	resized := c.desktopWidth != w || c.desktopHeight != h
	c.desktopWidth, c.desktopHeight = w, h
	if resized || c.fb == nil {
		c.fb = NewFramebuffer(w, h, format, c.localFormat)
	} else {
		c.fb.SetRemoteFormat(format)
	}
	c.mu.Unlock()
	c.emitPixelFormatChanged(format)
}

// decodeRichCursor decodes a cursor shape sent in the server's native
// pixel format plus a bitmask, composing an 8-bit RGBA cursor from it.
func (c *Client) decodeRichCursor(hotspotX, hotspotY, w, h int) {
	if w == 0 || h == 0 {
		c.emitCursorChanged(nil)
		c.resendLastUpdateRequest()
		return
	}
	bpp := c.serverFormat.bytesPerPixel()
	pixels := c.readN(w * h * bpp)
	rowBytes := (w + 7) / 8
	mask := c.readN(rowBytes * h)

	cur := newCursor(w, h, hotspotX, hotspotY)
	for yy := 0; yy < h; yy++ {
		for xx := 0; xx < w; xx++ {
			raw := readPixelValue(pixels[(yy*w+xx)*bpp:], c.serverFormat)
			r, g, b := c.serverPixelToRGB8(raw)
			bit := (mask[yy*rowBytes+xx/8] >> uint(7-xx%8)) & 1
			var alpha uint8
			if bit != 0 {
				alpha = 255
			}
			cur.setPixel(xx, yy, r, g, b, alpha)
		}
	}
	c.emitCursorChanged(cur)
	c.resendLastUpdateRequest()
}

// decodeXCursor decodes a cursor shape sent as a 1-bit bitmap with only
// two colours, given as plain 8-bit-per-component RGB rather than the
// server's native pixel format.
func (c *Client) decodeXCursor(hotspotX, hotspotY, w, h int) {
	if w == 0 || h == 0 {
		c.emitCursorChanged(nil)
		c.resendLastUpdateRequest()
		return
	}
	fg := c.readN(3)
	bg := c.readN(3)
	rowBytes := (w + 7) / 8
	data := c.readN(rowBytes * h)
	mask := c.readN(rowBytes * h)

	cur := newCursor(w, h, hotspotX, hotspotY)
	for yy := 0; yy < h; yy++ {
		for xx := 0; xx < w; xx++ {
			mbit := (mask[yy*rowBytes+xx/8] >> uint(7-xx%8)) & 1
			if mbit == 0 {
				cur.setPixel(xx, yy, 0, 0, 0, 0)
				continue
			}
			dbit := (data[yy*rowBytes+xx/8] >> uint(7-xx%8)) & 1
			if dbit != 0 {
				cur.setPixel(xx, yy, fg[0], fg[1], fg[2], 255)
			} else {
				cur.setPixel(xx, yy, bg[0], bg[1], bg[2], 255)
			}
		}
	}
	c.emitCursorChanged(cur)
	c.resendLastUpdateRequest()
}

// decodePointerChange handles the rectangle's x field carrying the new
// absolute-pointer flag.
func (c *Client) decodePointerChange(absoluteFlag int) {
	c.emitPointerModeChanged(absoluteFlag != 0)
	c.resendLastUpdateRequest()
}

// decodeExtKeyEvent records that the server accepts extended key events.
func (c *Client) decodeExtKeyEvent() {
	c.mu.Lock()
	c.extKeyEvent = true
	c.mu.Unlock()
	c.resendLastUpdateRequest()
}

// serverPixelToRGB8 converts a raw server-format pixel value into 8-bit
// RGB components, for the cursor pseudo-encodings (which always compose
// an 8-bit-per-channel RGBA cursor regardless of the server's pixel
// format).
func (c *Client) serverPixelToRGB8(raw uint64) (uint8, uint8, uint8) {
	f := c.serverFormat
	if !f.TrueColour {
		c.mu.Lock()
		cmap := c.fb.ColorMap()
		c.mu.Unlock()
		if entry, ok := cmap.Lookup(uint32(raw)); ok {
			return uint8(entry.R >> 8), uint8(entry.G >> 8), uint8(entry.B >> 8)
		}
		return 0, 0, 0
	}
	r := componentTo8((raw>>uint(f.RedShift))&uint64(f.RedMax), f.RedMax)
	g := componentTo8((raw>>uint(f.GreenShift))&uint64(f.GreenMax), f.GreenMax)
	b := componentTo8((raw>>uint(f.BlueShift))&uint64(f.BlueMax), f.BlueMax)
	return r, g, b
}

func componentTo8(v uint64, max uint16) uint8 {
	if max == 0 {
		return 0
	}
	return uint8(v * 255 / uint64(max))
}
