package gvnc

// Framebuffer is the client-side pixel buffer that mirrors the server's
// screen, translated into the client's chosen local pixel format. Its
// blt/fill/copyrect primitives each take a perfect-match fast path when
// the server and local formats agree exactly, modeled on
// bradfitz-rfbgo/rfb.go's pushRGBAScreensThousandsLocked, which coexists
// a format-specific fast path with a general one.
type Framebuffer struct {
	width, height int
	rowstride     int
	buf           []byte

	remote PixelFormat
	local  PixelFormat
	cmap   *ColorMap

	tp translateParams
}

// NewFramebuffer allocates a width x height buffer in localFormat, ready
// to receive pixels described in remoteFormat.
func NewFramebuffer(width, height int, remoteFormat, localFormat PixelFormat) *Framebuffer {
	fb := &Framebuffer{
		width: width, height: height,
		remote: remoteFormat, local: localFormat,
	}
	fb.rowstride = width * localFormat.bytesPerPixel()
	fb.buf = make([]byte, fb.rowstride*height)
	fb.tp = buildTranslateParams(remoteFormat, localFormat)
	return fb
}

func (fb *Framebuffer) Width() int                   { return fb.width }
func (fb *Framebuffer) Height() int                  { return fb.height }
func (fb *Framebuffer) Rowstride() int                { return fb.rowstride }
func (fb *Framebuffer) Buffer() []byte                { return fb.buf }
func (fb *Framebuffer) LocalFormat() PixelFormat       { return fb.local }
func (fb *Framebuffer) RemoteFormat() PixelFormat      { return fb.remote }
func (fb *Framebuffer) ColorMap() *ColorMap            { return fb.cmap }
func (fb *Framebuffer) PerfectFormatMatch() bool       { return fb.tp.perfectMatch }

// SetRemoteFormat installs a new server pixel format (from SetPixelFormat
// negotiation or a WMVi pseudo-encoding) and rebuilds the translation
// table.
func (fb *Framebuffer) SetRemoteFormat(f PixelFormat) {
	fb.remote = f
	fb.tp = buildTranslateParams(fb.remote, fb.local)
}

// SetColorMap replaces the active palette wholesale.
func (fb *Framebuffer) SetColorMap(m *ColorMap) { fb.cmap = m }

func (fb *Framebuffer) localBPP() int { return fb.local.bytesPerPixel() }

func (fb *Framebuffer) offset(x, y int) int { return y*fb.rowstride + x*fb.localBPP() }

// SetPixelAt translates one already-parsed server pixel value into the
// local format at (x,y).
func (fb *Framebuffer) SetPixelAt(raw uint64, x, y int) {
	v := fb.tp.translate(raw, fb.cmap)
	writePixelValue(fb.buf[fb.offset(x, y):], fb.local, v)
}

// Fill paints (x,y,w,h) with one server pixel value, using a memset-style
// row replication when the formats match exactly and a translate-and-fill
// otherwise.
func (fb *Framebuffer) Fill(raw uint64, x, y, w, h int) {
	bpp := fb.localBPP()
	if fb.tp.perfectMatch {
		row := make([]byte, w*bpp)
		writePixelValue(row, fb.local, raw)
		for i := bpp; i < len(row); i *= 2 {
			copy(row[i:], row[:i])
		}
		for dy := 0; dy < h; dy++ {
			copy(fb.buf[fb.offset(x, y+dy):], row)
		}
		return
	}
	v := fb.tp.translate(raw, fb.cmap)
	pixel := make([]byte, bpp)
	writePixelValue(pixel, fb.local, v)
	for dy := 0; dy < h; dy++ {
		o := fb.offset(x, y+dy)
		for dx := 0; dx < w; dx++ {
			copy(fb.buf[o+dx*bpp:], pixel)
		}
	}
}

// Blt copies a rectangle of server-native-format pixels (stride
// srcStride, bytes-per-pixel implied by the remote format) into the
// framebuffer at (x,y), translating each pixel — or doing a straight
// per-row memcpy when the formats match exactly.
func (fb *Framebuffer) Blt(src []byte, srcStride, x, y, w, h int) {
	rbpp := fb.remote.bytesPerPixel()
	lbpp := fb.localBPP()
	if fb.tp.perfectMatch {
		for dy := 0; dy < h; dy++ {
			srcRow := src[dy*srcStride : dy*srcStride+w*rbpp]
			copy(fb.buf[fb.offset(x, y+dy):], srcRow)
		}
		return
	}
	for dy := 0; dy < h; dy++ {
		srcRow := src[dy*srcStride:]
		o := fb.offset(x, y+dy)
		for dx := 0; dx < w; dx++ {
			raw := readPixelValue(srcRow[dx*rbpp:], fb.remote)
			v := fb.tp.translate(raw, fb.cmap)
			writePixelValue(fb.buf[o+dx*lbpp:], fb.local, v)
		}
	}
}

// RGB24Blt blits a source of 3-byte RGB triples (as produced by JPEG
// decode) into the framebuffer, scaling each channel to the remote
// format's component maxes before placing it in the local format.
func (fb *Framebuffer) RGB24Blt(src []byte, srcStride, x, y, w, h int) {
	lbpp := fb.localBPP()
	for dy := 0; dy < h; dy++ {
		srcRow := src[dy*srcStride:]
		o := fb.offset(x, y+dy)
		for dx := 0; dx < w; dx++ {
			r, g, b := srcRow[dx*3], srcRow[dx*3+1], srcRow[dx*3+2]
			v := fb.tp.translateRGB24(r, g, b)
			writePixelValue(fb.buf[o+dx*lbpp:], fb.local, v)
		}
	}
}

// SetRGB24PixelAt is RGB24Blt for a single already-assembled RGB triple,
// used by decode paths (e.g. Tight's gradient filter) that reconstruct
// one pixel at a time rather than a whole contiguous row.
func (fb *Framebuffer) SetRGB24PixelAt(r, g, b uint8, x, y int) {
	v := fb.tp.translateRGB24(r, g, b)
	writePixelValue(fb.buf[fb.offset(x, y):], fb.local, v)
}

// RGBAt reads the pixel at (x,y) back out of the local format and
// returns it as 8-bit-per-channel RGB, scaling each component up from
// the local format's own max value. Used by host code that needs to
// export the framebuffer to a channel-agnostic image format.
func (fb *Framebuffer) RGBAt(x, y int) (r, g, b uint8) {
	v := readPixelValue(fb.buf[fb.offset(x, y):], fb.local)
	unscale := func(raw uint64, shift uint8, max uint16) uint8 {
		if max == 0 {
			return 0
		}
		c := (raw >> shift) & uint64(max)
		return uint8(c * 255 / uint64(max))
	}
	r = unscale(v, fb.local.RedShift, fb.local.RedMax)
	g = unscale(v, fb.local.GreenShift, fb.local.GreenMax)
	b = unscale(v, fb.local.BlueShift, fb.local.BlueMax)
	return r, g, b
}

// CopyRect moves a w x h rectangle from (sx,sy) to (dx,dy) within the
// framebuffer, copying rows in the direction opposite the vertical
// displacement so overlapping source/destination regions don't corrupt
// each other.
func (fb *Framebuffer) CopyRect(sx, sy, dx, dy, w, h int) {
	bpp := fb.localBPP()
	rowBytes := w * bpp
	if dy <= sy {
		for row := 0; row < h; row++ {
			srcOff := fb.offset(sx, sy+row)
			dstOff := fb.offset(dx, dy+row)
			copy(fb.buf[dstOff:dstOff+rowBytes], fb.buf[srcOff:srcOff+rowBytes])
		}
	} else {
		for row := h - 1; row >= 0; row-- {
			srcOff := fb.offset(sx, sy+row)
			dstOff := fb.offset(dx, dy+row)
			copy(fb.buf[dstOff:dstOff+rowBytes], fb.buf[srcOff:srcOff+rowBytes])
		}
	}
}
