package gvnc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildTranslateParamsPerfectMatch(t *testing.T) {
	tp := buildTranslateParams(PixelFormatDepth24, PixelFormatDepth24)
	assert.True(t, tp.perfectMatch)
	assert.False(t, tp.colorMapped)
}

func TestTranslateIdentityFormat(t *testing.T) {
	tp := buildTranslateParams(PixelFormatDepth24, PixelFormatDepth24)
	raw := uint64(0x112233)
	assert.Equal(t, raw, tp.translate(raw, nil))
}

func TestTranslateDownscalesComponents(t *testing.T) {
	// depth24 (8 bits/component) -> depth16 (5/6/5): full-white should stay
	// full-white in every component of the narrower format.
	tp := buildTranslateParams(PixelFormatDepth24, PixelFormatDepth16)
	white24 := uint64(0xff)<<16 | uint64(0xff)<<8 | uint64(0xff)
	got := tp.translate(white24, nil)
	wantR := uint64(PixelFormatDepth16.RedMax) << PixelFormatDepth16.RedShift
	wantG := uint64(PixelFormatDepth16.GreenMax) << PixelFormatDepth16.GreenShift
	wantB := uint64(PixelFormatDepth16.BlueMax) << PixelFormatDepth16.BlueShift
	assert.Equal(t, wantR|wantG|wantB, got)
}

func TestTranslateColorMapped(t *testing.T) {
	tp := buildTranslateParams(PixelFormat{TrueColour: false}, PixelFormatDepth24)
	assert.True(t, tp.colorMapped)
	cmap := &ColorMap{Offset: 0, Entries: []RGB16{{R: 65535, G: 0, B: 0}}}
	got := tp.translateColorMapped(0, cmap)
	assert.Equal(t, uint64(0xff)<<PixelFormatDepth24.RedShift, got)
}

func TestTranslateColorMappedMissingIndexIsBlack(t *testing.T) {
	tp := buildTranslateParams(PixelFormat{TrueColour: false}, PixelFormatDepth24)
	cmap := &ColorMap{Offset: 10, Entries: []RGB16{{R: 1, G: 1, B: 1}}}
	got := tp.translateColorMapped(3, cmap)
	assert.Equal(t, uint64(0), got)
}

func TestTranslateRGB24(t *testing.T) {
	tp := buildTranslateParams(PixelFormatDepth24, PixelFormatDepth24)
	got := tp.translateRGB24(0x11, 0x22, 0x33)
	assert.Equal(t, uint64(0x11)<<16|uint64(0x22)<<8|uint64(0x33), got)
}

func TestReadWritePixelValueRoundTripLittleEndian(t *testing.T) {
	buf := make([]byte, 4)
	writePixelValue(buf, PixelFormatDepth24, 0xaabbccdd)
	got := readPixelValue(buf, PixelFormatDepth24)
	assert.Equal(t, uint64(0xaabbccdd), got)
}

func TestReadWritePixelValueRoundTripBigEndian(t *testing.T) {
	f := PixelFormatDepth16
	f.BigEndian = true
	buf := make([]byte, 2)
	writePixelValue(buf, f, 0x1234)
	assert.Equal(t, []byte{0x12, 0x34}, buf)
	got := readPixelValue(buf, f)
	assert.Equal(t, uint64(0x1234), got)
}

func TestScale8And16(t *testing.T) {
	assert.Equal(t, uint64(31), scale8(255, 31))
	assert.Equal(t, uint64(0), scale8(0, 31))
	assert.Equal(t, uint64(255), scale16(65535, 255))
}
