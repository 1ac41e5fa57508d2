package gvnc

import (
	"bytes"
	"image"
	"image/jpeg"
)

type tightFilter int

const (
	tightFilterCopy tightFilter = iota
	tightFilterPalette
	tightFilterGradient
)

const (
	tightModeFill = 8
	tightModeJPEG = 9
)

// decodeTight reads a Tight-encoded rectangle: a compression-control byte
// selects a zlib stream reset mask and a mode (fill, JPEG, or basic with
// an optional filter), then dispatches to that mode's payload decode.
func (c *Client) decodeTight(x, y, w, h int) {
	c.mu.Lock()
	fb := c.fb
	c.mu.Unlock()

	ctrl := c.readU8()
	resetMask := ctrl & 0x0F
	for i := 0; i < 4; i++ {
		if resetMask&(1<<uint(i)) != 0 {
			c.inflate.Reset(i + 1)
		}
	}

	mode := ctrl >> 4
	switch {
	case mode == tightModeFill:
		v := c.readTPixel(false)
		fb.Fill(v, x, y, w, h)
	case mode == tightModeJPEG:
		c.decodeTightJPEG(fb, x, y, w, h)
	case mode <= 7:
		streamIdx := int(mode&0x03) + 1
		filter := tightFilterCopy
		if mode&0x04 != 0 {
			switch c.readU8() {
			case 0:
				filter = tightFilterCopy
			case 1:
				filter = tightFilterPalette
			case 2:
				filter = tightFilterGradient
			default:
				failf(ErrKindProtocol, "tight: unknown filter byte")
			}
		}
		c.decodeTightBasic(fb, x, y, w, h, streamIdx, filter)
	default:
		failf(ErrKindProtocol, "tight: unsupported compression-control mode %d", mode)
	}
}

func tightTPixelSize(f PixelFormat, gradient bool) int {
	if gradient && f.BitsPerPixel == 32 && f.Depth == 24 {
		return 3
	}
	return f.bytesPerPixel()
}

func (c *Client) decodeTightBasic(fb *Framebuffer, x, y, w, h, streamIdx int, filter tightFilter) {
	var palette []uint64
	var bitsPerIndex int
	var size int

	switch filter {
	case tightFilterCopy:
		size = w * h * tightTPixelSize(c.serverFormat, false)
	case tightFilterGradient:
		size = w * h * tightTPixelSize(c.serverFormat, true)
	case tightFilterPalette:
		count := int(c.readU8()) + 1
		if count == 1 {
			failf(ErrKindProtocol, "tight: palette size 1 is not permitted")
		}
		palette = make([]uint64, count)
		for i := range palette {
			palette[i] = c.readTPixel(false)
		}
		// Tight packs a 2-entry palette as 1-bit indices; any other count
		// (3..256) sends one full byte per index, not a log2(count)-bit field.
		if count == 2 {
			bitsPerIndex = 1
		} else {
			bitsPerIndex = 8
		}
		rowBytes := (w*bitsPerIndex + 7) / 8
		size = rowBytes * h
	}

	data := c.readTightPayload(streamIdx, size)

	switch filter {
	case tightFilterCopy:
		bpp := tightTPixelSize(c.serverFormat, false)
		for dy := 0; dy < h; dy++ {
			row := data[dy*w*bpp : (dy+1)*w*bpp]
			for dx := 0; dx < w; dx++ {
				v := readNBytesAsValue(row[dx*bpp:dx*bpp+bpp], c.serverFormat.BigEndian)
				fb.SetPixelAt(v, x+dx, y+dy)
			}
		}
	case tightFilterPalette:
		rowBytes := (w*bitsPerIndex + 7) / 8
		for dy := 0; dy < h; dy++ {
			row := data[dy*rowBytes : (dy+1)*rowBytes]
			br := tightBitReader{row: row}
			for dx := 0; dx < w; dx++ {
				idx := br.readBits(bitsPerIndex)
				fb.SetPixelAt(palette[idx], x+dx, y+dy)
			}
		}
	case tightFilterGradient:
		c.decodeTightGradient(fb, x, y, w, h, data)
	}
}

// readTightPayload reads size bytes of (possibly zlib-compressed) tile
// data: zlib-compressed behind a compact-integer length whenever size is
// large enough to be worth compressing (at least 12 bytes uncompressed),
// raw otherwise.
func (c *Client) readTightPayload(streamIdx, size int) []byte {
	if size < 12 {
		return c.readN(size)
	}
	compLen := c.compactLength()
	compressed := c.readN(compLen)
	if err := c.inflate.Feed(streamIdx, compressed); err != nil {
		failf(ErrKindProtocol, "tight: feeding compressed data: %v", err)
	}
	out, err := c.inflate.ReadN(streamIdx, size)
	if err != nil {
		failf(ErrKindProtocol, "tight: inflating: %v", err)
	}
	return out
}

// decodeTightGradient undoes the Tight gradient filter: each component is
// stored as (actual - predicted) mod 256, where predicted is the classic
// left+up-upleft clamp used by TightVNC's "gradient" filter.
func (c *Client) decodeTightGradient(fb *Framebuffer, x, y, w, h int, data []byte) {
	bpp := tightTPixelSize(c.serverFormat, true)
	rowBytes := w * bpp
	prevRow := make([]uint8, w*3)
	for dy := 0; dy < h; dy++ {
		row := data[dy*rowBytes : (dy+1)*rowBytes]
		curRow := make([]uint8, w*3)
		var leftR, leftG, leftB uint8
		for dx := 0; dx < w; dx++ {
			raw := readNBytesAsValue(row[dx*bpp:dx*bpp+bpp], c.serverFormat.BigEndian)
			dr, dg, db := tpixelComponents(raw)
			upR, upG, upB := prevRow[dx*3], prevRow[dx*3+1], prevRow[dx*3+2]
			var upLeftR, upLeftG, upLeftB uint8
			if dx > 0 {
				upLeftR, upLeftG, upLeftB = prevRow[(dx-1)*3], prevRow[(dx-1)*3+1], prevRow[(dx-1)*3+2]
			}
			r := gradientPredict(leftR, upR, upLeftR) + dr
			g := gradientPredict(leftG, upG, upLeftG) + dg
			b := gradientPredict(leftB, upB, upLeftB) + db
			curRow[dx*3], curRow[dx*3+1], curRow[dx*3+2] = r, g, b
			leftR, leftG, leftB = r, g, b
			fb.SetRGB24PixelAt(r, g, b, x+dx, y+dy)
		}
		prevRow = curRow
	}
}

func tpixelComponents(v uint64) (uint8, uint8, uint8) {
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}

func gradientPredict(left, up, upLeft uint8) uint8 {
	p := int(left) + int(up) - int(upLeft)
	if p < 0 {
		p = 0
	} else if p > 255 {
		p = 255
	}
	return uint8(p)
}

func (c *Client) decodeTightJPEG(fb *Framebuffer, x, y, w, h int) {
	length := c.compactLength()
	data := c.readN(length)
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		failf(ErrKindProtocol, "tight: JPEG decode: %v", err)
	}
	rgb := jpegToRGB24(img)
	fb.RGB24Blt(rgb, w*3, x, y, w, h)
}

func jpegToRGB24(img image.Image) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, w*h*3)
	for yy := 0; yy < h; yy++ {
		for xx := 0; xx < w; xx++ {
			r, g, bl, _ := img.At(b.Min.X+xx, b.Min.Y+yy).RGBA()
			i := (yy*w + xx) * 3
			out[i] = uint8(r >> 8)
			out[i+1] = uint8(g >> 8)
			out[i+2] = uint8(bl >> 8)
		}
	}
	return out
}

// tightBitReader unpacks fixed-width, MSB-first bit fields from a single
// byte-aligned row of the Tight palette filter.
type tightBitReader struct {
	row      []byte
	byteIdx  int
	bitPos   uint
}

func (r *tightBitReader) readBits(n int) int {
	cur := r.row[r.byteIdx]
	shift := 8 - int(r.bitPos) - n
	val := int(cur>>uint(shift)) & ((1 << uint(n)) - 1)
	r.bitPos += uint(n)
	if r.bitPos >= 8 {
		r.bitPos = 0
		r.byteIdx++
	}
	return val
}
