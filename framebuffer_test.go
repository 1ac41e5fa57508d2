package gvnc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFramebufferPerfectMatch(t *testing.T) {
	fb := NewFramebuffer(4, 3, PixelFormatDepth24, PixelFormatDepth24)
	assert.True(t, fb.PerfectFormatMatch())
	assert.Equal(t, 4, fb.Width())
	assert.Equal(t, 3, fb.Height())
	assert.Equal(t, 4*4, fb.Rowstride())
	require.Len(t, fb.Buffer(), 4*4*3)
}

func TestFramebufferSetPixelAtAndRGBAt(t *testing.T) {
	fb := NewFramebuffer(2, 2, PixelFormatDepth24, PixelFormatDepth24)
	raw := uint64(0x10)<<16 | uint64(0x20)<<8 | uint64(0x30)
	fb.SetPixelAt(raw, 1, 0)
	r, g, b := fb.RGBAt(1, 0)
	assert.Equal(t, uint8(0x10), r)
	assert.Equal(t, uint8(0x20), g)
	assert.Equal(t, uint8(0x30), b)
}

func TestFramebufferFillPerfectMatch(t *testing.T) {
	fb := NewFramebuffer(3, 2, PixelFormatDepth24, PixelFormatDepth24)
	raw := uint64(0xff)<<16 | uint64(0x00)<<8 | uint64(0x00)
	fb.Fill(raw, 0, 0, 3, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			r, g, b := fb.RGBAt(x, y)
			assert.Equal(t, uint8(0xff), r)
			assert.Equal(t, uint8(0), g)
			assert.Equal(t, uint8(0), b)
		}
	}
}

func TestFramebufferBltPerfectMatch(t *testing.T) {
	fb := NewFramebuffer(2, 2, PixelFormatDepth24, PixelFormatDepth24)
	src := make([]byte, 2*2*4)
	writePixelValue(src[0:], PixelFormatDepth24, uint64(0x1)<<16)
	writePixelValue(src[4:], PixelFormatDepth24, uint64(0x2)<<16)
	writePixelValue(src[8:], PixelFormatDepth24, uint64(0x3)<<16)
	writePixelValue(src[12:], PixelFormatDepth24, uint64(0x4)<<16)
	fb.Blt(src, 8, 0, 0, 2, 2)
	r, _, _ := fb.RGBAt(0, 0)
	assert.Equal(t, uint8(1), r)
	r, _, _ = fb.RGBAt(1, 1)
	assert.Equal(t, uint8(4), r)
}

func TestFramebufferCopyRectNonOverlapping(t *testing.T) {
	fb := NewFramebuffer(4, 4, PixelFormatDepth24, PixelFormatDepth24)
	raw := uint64(0xab)<<16 | uint64(0xcd)<<8 | uint64(0xef)
	fb.SetPixelAt(raw, 0, 0)
	fb.CopyRect(0, 0, 2, 2, 1, 1)
	r, g, b := fb.RGBAt(2, 2)
	assert.Equal(t, uint8(0xab), r)
	assert.Equal(t, uint8(0xcd), g)
	assert.Equal(t, uint8(0xef), b)
}

func TestFramebufferCopyRectOverlappingDownward(t *testing.T) {
	fb := NewFramebuffer(1, 4, PixelFormatDepth24, PixelFormatDepth24)
	for y := 0; y < 4; y++ {
		fb.SetPixelAt(uint64(y)<<16, 0, y)
	}
	// shift rows [0,1,2] down into [1,2,3]; overlapping src/dst, dy > sy.
	fb.CopyRect(0, 0, 0, 1, 1, 3)
	for y := 1; y < 4; y++ {
		r, _, _ := fb.RGBAt(0, y)
		assert.Equal(t, uint8(y-1), r, "row %d", y)
	}
}

func TestFramebufferSetColorMap(t *testing.T) {
	fb := NewFramebuffer(1, 1, PixelFormat{TrueColour: false}, PixelFormatDepth24)
	cmap := &ColorMap{Offset: 0, Entries: []RGB16{{R: 65535, G: 0, B: 0}}}
	fb.SetColorMap(cmap)
	assert.Same(t, cmap, fb.ColorMap())
	fb.SetPixelAt(0, 0, 0)
	r, _, _ := fb.RGBAt(0, 0)
	assert.Equal(t, uint8(0xff), r)
}
