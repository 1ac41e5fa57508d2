package gvnc

// decodeRectangle dispatches one FramebufferUpdate rectangle to its
// encoding-specific decoder. Pseudo-encodings carry their payload in
// (x,y,w,h) rather than pixel data and never touch the framebuffer's
// pixel store directly.
func (c *Client) decodeRectangle(enc Encoding, x, y, w, h int) {
	switch enc {
	case EncodingRaw:
		c.decodeRaw(x, y, w, h)
		c.metrics.incRectangle(enc)
		c.emitFramebufferUpdate(x, y, w, h)
	case EncodingCopyRect:
		c.decodeCopyRect(x, y, w, h)
		c.metrics.incRectangle(enc)
		c.emitFramebufferUpdate(x, y, w, h)
	case EncodingRRE:
		c.decodeRRE(x, y, w, h)
		c.metrics.incRectangle(enc)
		c.emitFramebufferUpdate(x, y, w, h)
	case EncodingHextile:
		c.decodeHextile(x, y, w, h)
		c.metrics.incRectangle(enc)
		c.emitFramebufferUpdate(x, y, w, h)
	case EncodingZRLE:
		c.decodeZRLE(x, y, w, h)
		c.metrics.incRectangle(enc)
		c.emitFramebufferUpdate(x, y, w, h)
	case EncodingTight:
		c.decodeTight(x, y, w, h)
		c.metrics.incRectangle(enc)
		c.emitFramebufferUpdate(x, y, w, h)
	case EncodingDesktopResize:
		c.decodeDesktopResize(w, h)
	case EncodingWMVi:
		c.decodeWMVi(w, h)
	case EncodingRichCursor:
		c.decodeRichCursor(x, y, w, h)
	case EncodingXCursor:
		c.decodeXCursor(x, y, w, h)
	case EncodingPointerChange:
		c.decodePointerChange(x)
	case EncodingExtKeyEvent:
		c.decodeExtKeyEvent()
	default:
		failf(ErrKindProtocol, "unknown encoding %d", enc)
	}
}

// readPixel reads one server-format pixel.
func (c *Client) readPixel() uint64 {
	buf := c.readN(c.serverFormat.bytesPerPixel())
	return readPixelValue(buf, c.serverFormat)
}

// cpixelIsCompact reports whether the server's pixel format qualifies for
// ZRLE's 3-byte CPIXEL packing. This is deliberately not the naive
// "32bpp truecolour with depth <= 24" reading of the RFB spec: real RFB
// servers decide it by shift position instead, so a format is compact
// when every component sits entirely in the high 3 bytes (each shift >
// 7) or entirely within the low 3 bytes (each component's value never
// exceeds what 3 bytes can hold at its shift).
func cpixelIsCompact(f PixelFormat) bool {
	if f.BitsPerPixel != 32 || !f.TrueColour {
		return false
	}
	fitsInMSB := f.RedShift > 7 && f.GreenShift > 7 && f.BlueShift > 7
	if fitsInMSB {
		return true
	}
	const threeByteLimit = 1 << 24
	fitsInLSB := uint32(f.RedMax)<<f.RedShift < threeByteLimit &&
		uint32(f.GreenMax)<<f.GreenShift < threeByteLimit &&
		uint32(f.BlueMax)<<f.BlueShift < threeByteLimit
	return fitsInLSB
}

// readCPixel reads one ZRLE CPIXEL.
func (c *Client) readCPixel() uint64 {
	if !cpixelIsCompact(c.serverFormat) {
		return c.readPixel()
	}
	buf := c.readN(3)
	return readNBytesAsValue(buf, c.serverFormat.BigEndian)
}

// readTPixel reads one Tight TPIXEL. In the gradient filter, a depth-24
// pixel is also sent as 3 bytes; every other Tight path sends the full
// server pixel size.
func (c *Client) readTPixel(gradient bool) uint64 {
	if gradient && c.serverFormat.Depth == 24 && c.serverFormat.BitsPerPixel == 32 {
		buf := c.readN(3)
		return readNBytesAsValue(buf, c.serverFormat.BigEndian)
	}
	return c.readPixel()
}

func readNBytesAsValue(buf []byte, bigEndian bool) uint64 {
	var v uint64
	if bigEndian {
		for _, b := range buf {
			v = v<<8 | uint64(b)
		}
	} else {
		for i := len(buf) - 1; i >= 0; i-- {
			v = v<<8 | uint64(buf[i])
		}
	}
	return v
}

// compactLength reads a 1..3-byte compact-length integer, as used by
// Tight's basic compression mode.
func (c *Client) compactLength() int {
	b0 := c.readU8()
	n := int(b0 & 0x7F)
	if b0&0x80 == 0 {
		return n
	}
	b1 := c.readU8()
	n |= int(b1&0x7F) << 7
	if b1&0x80 == 0 {
		return n
	}
	b2 := c.readU8()
	n |= int(b2) << 14
	return n
}
