package gvnc

// decodeZRLE reads the whole rectangle as one zlib-compressed blob
// (stream 0, continuous across the connection's lifetime — see
// internal/transport's InflatePool), tiled 64x64.
func (c *Client) decodeZRLE(x, y, w, h int) {
	length := int(c.readU32())
	compressed := c.readN(length)
	if err := c.inflate.Feed(0, compressed); err != nil {
		failf(ErrKindProtocol, "zrle: feeding compressed data: %v", err)
	}

	c.mu.Lock()
	fb := c.fb
	c.mu.Unlock()

	for ty := y; ty < y+h; ty += 64 {
		th := min(64, y+h-ty)
		for tx := x; tx < x+w; tx += 64 {
			tw := min(64, x+w-tx)
			c.decodeZRLETile(fb, tx, ty, tw, th)
		}
	}
}

func (c *Client) decodeZRLETile(fb *Framebuffer, x, y, w, h int) {
	sub := c.zrleReadU8()
	switch {
	case sub == 0:
		for dy := 0; dy < h; dy++ {
			for dx := 0; dx < w; dx++ {
				fb.SetPixelAt(c.zrleReadCPixel(), x+dx, y+dy)
			}
		}
	case sub == 1:
		fb.Fill(c.zrleReadCPixel(), x, y, w, h)
	case sub >= 2 && sub <= 16:
		c.decodeZRLEPackedPalette(fb, x, y, w, h, int(sub))
	case sub == 128:
		c.decodeZRLERunLength(fb, x, y, w, h, nil)
	case sub == 129:
		// Reserved subencoding with undefined payload; log and move on
		// rather than guess semantics.
		c.log.Warnf("zrle: tile subencoding 129 at (%d,%d) is reserved, skipping", x, y)
	case sub >= 17 && sub <= 127:
		failf(ErrKindProtocol, "zrle: unused tile subencoding %d", sub)
	default: // 130..255: palette RLE
		paletteSize := int(sub) - 128
		palette := make([]uint64, paletteSize)
		for i := range palette {
			palette[i] = c.zrleReadCPixel()
		}
		c.decodeZRLERunLength(fb, x, y, w, h, palette)
	}
}

// decodeZRLEPackedPalette handles ZRLE subencodings 2..16: a fixed
// palette followed by per-row bit-packed indices, the accumulator
// resetting at each row boundary.
func (c *Client) decodeZRLEPackedPalette(fb *Framebuffer, x, y, w, h, paletteSize int) {
	palette := make([]uint64, paletteSize)
	for i := range palette {
		palette[i] = c.zrleReadCPixel()
	}
	bitsPerIndex := 4
	switch {
	case paletteSize == 2:
		bitsPerIndex = 1
	case paletteSize <= 4:
		bitsPerIndex = 2
	}
	for dy := 0; dy < h; dy++ {
		br := zrleBitReader{c: c}
		for dx := 0; dx < w; dx++ {
			idx := br.readBits(bitsPerIndex)
			fb.SetPixelAt(palette[idx], x+dx, y+dy)
		}
	}
}

// decodeZRLERunLength handles subencoding 128 (plain RLE, palette==nil)
// and 130..255 (palette RLE).
func (c *Client) decodeZRLERunLength(fb *Framebuffer, x, y, w, h int, palette []uint64) {
	total := w * h
	written := 0
	for written < total {
		var v uint64
		runLen := 1
		if palette == nil {
			v = c.zrleReadCPixel()
			runLen = c.zrleReadRunLength()
		} else {
			idxByte := c.zrleReadU8()
			idx := idxByte & 0x7F
			v = palette[idx]
			if idxByte&0x80 != 0 {
				runLen = c.zrleReadRunLength()
			}
		}
		for i := 0; i < runLen && written < total; i++ {
			dx := written % w
			dy := written / w
			fb.SetPixelAt(v, x+dx, y+dy)
			written++
		}
	}
}

// zrleReadRunLength decodes ZRLE's run-length encoding: any number of
// 0xFF bytes followed by a terminating byte < 0xFF; the run length is the
// sum of all bytes read, plus one.
func (c *Client) zrleReadRunLength() int {
	total := 1
	for {
		b := c.zrleReadU8()
		total += int(b)
		if b != 0xFF {
			break
		}
	}
	return total
}

func (c *Client) zrleReadU8() uint8 {
	buf, err := c.inflate.ReadN(0, 1)
	if err != nil {
		failf(ErrKindProtocol, "zrle: %v", err)
	}
	return buf[0]
}

func (c *Client) zrleReadCPixel() uint64 {
	if !cpixelIsCompact(c.serverFormat) {
		buf, err := c.inflate.ReadN(0, c.serverFormat.bytesPerPixel())
		if err != nil {
			failf(ErrKindProtocol, "zrle: %v", err)
		}
		return readPixelValue(buf, c.serverFormat)
	}
	buf, err := c.inflate.ReadN(0, 3)
	if err != nil {
		failf(ErrKindProtocol, "zrle: %v", err)
	}
	return readNBytesAsValue(buf, c.serverFormat.BigEndian)
}

// zrleBitReader pulls fixed-width, MSB-first bit fields out of the ZRLE
// packed-palette stream, one byte at a time. Every palette width this
// module supports (1, 2, or 4 bits) divides 8 evenly, so a field never
// needs to span two bytes.
type zrleBitReader struct {
	c        *Client
	cur      uint8
	bitPos   uint
	haveByte bool
}

func (r *zrleBitReader) readBits(n int) int {
	if !r.haveByte {
		r.cur = r.c.zrleReadU8()
		r.bitPos = 0
		r.haveByte = true
	}
	shift := 8 - int(r.bitPos) - n
	val := int(r.cur>>uint(shift)) & ((1 << uint(n)) - 1)
	r.bitPos += uint(n)
	if r.bitPos >= 8 {
		r.haveByte = false
	}
	return val
}
