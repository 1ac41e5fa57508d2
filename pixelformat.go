package gvnc

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// PixelFormat describes how a truecolour or palettized pixel is laid out
// on the wire or in the framebuffer. It is used for both the server's
// format and the client's chosen local format.
//
// Field shape is ported from bradfitz-rfbgo/rfb.go's PixelFormat struct
// (itself matching hduplooy-gorfb/gorfb.go's independent struct), renamed
// to exported Go identifiers and extended with a Validate method
// enforcing the format's shift/width invariant.
type PixelFormat struct {
	BitsPerPixel uint8
	Depth        uint8
	BigEndian    bool
	TrueColour   bool

	RedMax   uint16
	GreenMax uint16
	BlueMax  uint16

	RedShift   uint8
	GreenShift uint8
	BlueShift  uint8
}

// pixelFormatWireSize is the 16-byte on-wire encoding used by ServerInit,
// SetPixelFormat, and the WMVi pseudo-encoding.
const pixelFormatWireSize = 16

// Validate checks that component max values fit in the given bpp, and
// shift + ceil(log2(max+1)) <= bpp for each component.
func (f PixelFormat) Validate() error {
	switch f.BitsPerPixel {
	case 8, 16, 32, 64:
	default:
		return fmt.Errorf("pixel format: unsupported bits-per-pixel %d", f.BitsPerPixel)
	}
	if f.Depth > f.BitsPerPixel {
		return fmt.Errorf("pixel format: depth %d exceeds bits-per-pixel %d", f.Depth, f.BitsPerPixel)
	}
	if !f.TrueColour {
		return nil
	}
	for _, c := range []struct {
		name  string
		max   uint16
		shift uint8
	}{
		{"red", f.RedMax, f.RedShift},
		{"green", f.GreenMax, f.GreenShift},
		{"blue", f.BlueMax, f.BlueShift},
	} {
		if c.max == 0 {
			continue
		}
		width := bits.Len16(c.max)
		if int(c.shift)+width > int(f.BitsPerPixel) {
			return fmt.Errorf("pixel format: %s shift %d + width %d exceeds bpp %d", c.name, c.shift, width, f.BitsPerPixel)
		}
	}
	return nil
}

// bytesPerPixel is BitsPerPixel/8 (integer division) — RFB only ever uses
// byte-aligned bpp values (8/16/32/64) so this is exact.
func (f PixelFormat) bytesPerPixel() int { return int(f.BitsPerPixel) / 8 }

// marshal encodes f into the 16-byte wire format.
func (f PixelFormat) marshal() []byte {
	buf := make([]byte, pixelFormatWireSize)
	buf[0] = f.BitsPerPixel
	buf[1] = f.Depth
	buf[2] = boolByte(f.BigEndian)
	buf[3] = boolByte(f.TrueColour)
	binary.BigEndian.PutUint16(buf[4:], f.RedMax)
	binary.BigEndian.PutUint16(buf[6:], f.GreenMax)
	binary.BigEndian.PutUint16(buf[8:], f.BlueMax)
	buf[10] = f.RedShift
	buf[11] = f.GreenShift
	buf[12] = f.BlueShift
	// buf[13:16] padding, left zero.
	return buf
}

// unmarshalPixelFormat decodes the 16-byte wire format.
func unmarshalPixelFormat(buf []byte) PixelFormat {
	return PixelFormat{
		BitsPerPixel: buf[0],
		Depth:        buf[1],
		BigEndian:    buf[2] != 0,
		TrueColour:   buf[3] != 0,
		RedMax:       binary.BigEndian.Uint16(buf[4:]),
		GreenMax:     binary.BigEndian.Uint16(buf[6:]),
		BlueMax:      binary.BigEndian.Uint16(buf[8:]),
		RedShift:     buf[10],
		GreenShift:   buf[11],
		BlueShift:    buf[12],
	}
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// hostIsBigEndian is true when the host's native byte order for
// multi-byte values is big-endian. RFB pixel values (as opposed to
// protocol integers, which are always big-endian) take on the
// client-chosen format's own BigEndian flag, so this is only meaningful
// as "does this format's BigEndian flag match the host's actual in-memory
// order", needed for the Framebuffer's perfect-match fast path.
var hostIsBigEndian = binary.NativeEndian.Uint16([]byte{0x00, 0x01}) == 1

// The PixelFormatDepth* values are the precomputed, commonly-requested client pixel
// formats: depth 3/8/15/16/24 truecolour formats for bandwidth-constrained
// links (the server's own format, unchanged, is not listed here).
var (
	PixelFormatDepth24 = PixelFormat{
		BitsPerPixel: 32, Depth: 24, BigEndian: false, TrueColour: true,
		RedMax: 255, GreenMax: 255, BlueMax: 255,
		RedShift: 16, GreenShift: 8, BlueShift: 0,
	}
	PixelFormatDepth16 = PixelFormat{
		BitsPerPixel: 16, Depth: 16, BigEndian: false, TrueColour: true,
		RedMax: 31, GreenMax: 63, BlueMax: 31,
		RedShift: 11, GreenShift: 5, BlueShift: 0,
	}
	PixelFormatDepth15 = PixelFormat{
		BitsPerPixel: 16, Depth: 15, BigEndian: false, TrueColour: true,
		RedMax: 31, GreenMax: 31, BlueMax: 31,
		RedShift: 10, GreenShift: 5, BlueShift: 0,
	}
	PixelFormatDepth8 = PixelFormat{
		BitsPerPixel: 8, Depth: 8, BigEndian: false, TrueColour: true,
		RedMax: 7, GreenMax: 7, BlueMax: 3,
		RedShift: 5, GreenShift: 2, BlueShift: 0,
	}
	// PixelFormatDepth3 covers the degenerate 1-bit-per-component case
	// some very low-bandwidth hosts request.
	PixelFormatDepth3 = PixelFormat{
		BitsPerPixel: 8, Depth: 3, BigEndian: false, TrueColour: true,
		RedMax: 1, GreenMax: 1, BlueMax: 1,
		RedShift: 2, GreenShift: 1, BlueShift: 0,
	}
)

// isBrokenDepth32 reports a known RealVNC server quirk: depth 32 with any
// component max exceeding 255, which makes the server's ZRLE CPIXEL
// packing ambiguous. Clients drop ZRLE from their advertised encoding
// list when this is true.
func (f PixelFormat) isBrokenDepth32() bool {
	return f.Depth == 32 && (f.RedMax > 255 || f.GreenMax > 255 || f.BlueMax > 255)
}
