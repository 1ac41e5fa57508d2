package gvnc

import "math/bits"

// componentParams is the per-component (red/green/blue) translation
// arithmetic derived from a (remote, local) PixelFormat pair:
//
//	mask  = remote.max_c & local.max_c
//	rs_c  starts at remote.shift_c, incremented once per bit by which
//	       remote.max_c exceeds local.max_c
//	ls_c  starts at local.shift_c, incremented once per bit by which
//	       local.max_c exceeds remote.max_c
//
// RFB component max values are always of the form 2^n-1, so "bits by
// which A exceeds B" is exactly bits.Len16(A)-bits.Len16(B) when A>B.
type componentParams struct {
	mask   uint64
	rshift uint
	lshift uint
}

func buildComponentParams(remoteMax, localMax uint16, remoteShift, localShift uint8) componentParams {
	p := componentParams{
		mask:   uint64(remoteMax) & uint64(localMax),
		rshift: uint(remoteShift),
		lshift: uint(localShift),
	}
	if remoteMax > localMax {
		p.rshift += uint(bits.Len16(remoteMax) - bits.Len16(localMax))
	}
	if localMax > remoteMax {
		p.lshift += uint(bits.Len16(localMax) - bits.Len16(remoteMax))
	}
	return p
}

// translateParams is the cached, per-(remote,local)-format-pair
// translation table: computed once on format change rather than per
// pixel, and reused by every SetPixelAt/Fill/Blt call until the format
// changes again. A single cached struct stands in for what a bpp-pair
// dispatch table of function pointers would otherwise need.
type translateParams struct {
	remote PixelFormat
	local  PixelFormat
	red    componentParams
	green  componentParams
	blue   componentParams

	perfectMatch bool
	colorMapped  bool
}

func buildTranslateParams(remote, local PixelFormat) translateParams {
	tp := translateParams{remote: remote, local: local}
	if remote.TrueColour {
		tp.red = buildComponentParams(remote.RedMax, local.RedMax, remote.RedShift, local.RedShift)
		tp.green = buildComponentParams(remote.GreenMax, local.GreenMax, remote.GreenShift, local.GreenShift)
		tp.blue = buildComponentParams(remote.BlueMax, local.BlueMax, remote.BlueShift, local.BlueShift)
	} else {
		tp.colorMapped = true
	}
	tp.perfectMatch = remote == local && local.BigEndian == hostIsBigEndian
	return tp
}

// translate converts one raw server-format pixel value (already parsed
// into a plain uint64 integer in the server's stated byte order — see
// readPixelValue) into the local format's packed representation, using a
// colour map when the remote format is palettized.
func (tp translateParams) translate(raw uint64, cmap *ColorMap) uint64 {
	if tp.colorMapped {
		return tp.translateColorMapped(raw, cmap)
	}
	var out uint64
	out |= ((raw >> tp.red.rshift) & tp.red.mask) << tp.red.lshift
	out |= ((raw >> tp.green.rshift) & tp.green.mask) << tp.green.lshift
	out |= ((raw >> tp.blue.rshift) & tp.blue.mask) << tp.blue.lshift
	return out
}

func (tp translateParams) translateColorMapped(index uint64, cmap *ColorMap) uint64 {
	entry, ok := cmap.Lookup(uint32(index))
	if !ok {
		return 0
	}
	var out uint64
	out |= scale16(entry.R, tp.local.RedMax) << tp.local.RedShift
	out |= scale16(entry.G, tp.local.GreenMax) << tp.local.GreenShift
	out |= scale16(entry.B, tp.local.BlueMax) << tp.local.BlueShift
	return out
}

// translateRGB24 is the RGB24Blt/SetRGB24PixelAt path: an
// 8-bit-per-channel RGB triple (from JPEG decode or the Tight gradient
// filter) is first scaled to the remote format's component maxes, then
// narrowed and placed into the local format as translate does. Only the
// positional part of translate's right shift is skipped, since the scaled
// value is not yet shifted into the remote pixel's bit position.
func (tp translateParams) translateRGB24(r, g, b uint8) uint64 {
	if tp.colorMapped {
		// A palettized remote format never reaches here in practice
		// (Tight JPEG requires truecolour); treat as black rather than
		// guess.
		return 0
	}
	var out uint64
	out |= ((scale8(r, tp.remote.RedMax) >> (tp.red.rshift - uint(tp.remote.RedShift))) & tp.red.mask) << tp.red.lshift
	out |= ((scale8(g, tp.remote.GreenMax) >> (tp.green.rshift - uint(tp.remote.GreenShift))) & tp.green.mask) << tp.green.lshift
	out |= ((scale8(b, tp.remote.BlueMax) >> (tp.blue.rshift - uint(tp.remote.BlueShift))) & tp.blue.mask) << tp.blue.lshift
	return out
}

func scale8(v uint8, max uint16) uint64 {
	return uint64(v) * uint64(max) / 255
}

func scale16(v uint16, max uint16) uint64 {
	return uint64(v) * uint64(max) / 65535
}

// readPixelValue parses bpp/8 bytes from buf into a plain uint64 using
// the format's stated byte order. Once the bytes are interpreted this
// way, ordinary shift/mask arithmetic on the resulting integer is
// order-independent.
func readPixelValue(buf []byte, f PixelFormat) uint64 {
	n := f.bytesPerPixel()
	var v uint64
	if f.BigEndian {
		for i := 0; i < n; i++ {
			v = v<<8 | uint64(buf[i])
		}
	} else {
		for i := n - 1; i >= 0; i-- {
			v = v<<8 | uint64(buf[i])
		}
	}
	return v
}

// writePixelValue encodes v into buf using f's stated byte order.
func writePixelValue(buf []byte, f PixelFormat, v uint64) {
	n := f.bytesPerPixel()
	if f.BigEndian {
		for i := n - 1; i >= 0; i-- {
			buf[i] = byte(v)
			v >>= 8
		}
	} else {
		for i := 0; i < n; i++ {
			buf[i] = byte(v)
			v >>= 8
		}
	}
}
