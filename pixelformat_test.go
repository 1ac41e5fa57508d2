package gvnc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPixelFormatValidateRejectsBadBitsPerPixel(t *testing.T) {
	f := PixelFormatDepth24
	f.BitsPerPixel = 24
	err := f.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported bits-per-pixel")
}

func TestPixelFormatValidateRejectsDepthExceedingBPP(t *testing.T) {
	f := PixelFormatDepth16
	f.Depth = 32
	err := f.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds bits-per-pixel")
}

func TestPixelFormatValidateRejectsShiftOverflow(t *testing.T) {
	f := PixelFormatDepth16
	f.RedShift = 12
	err := f.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds bpp")
}

func TestPixelFormatValidateAcceptsPreferredFormats(t *testing.T) {
	for _, f := range []PixelFormat{
		PixelFormatDepth24, PixelFormatDepth16, PixelFormatDepth15,
		PixelFormatDepth8, PixelFormatDepth3,
	} {
		assert.NoError(t, f.Validate())
	}
}

func TestPixelFormatMarshalRoundTrip(t *testing.T) {
	f := PixelFormatDepth24
	buf := f.marshal()
	require.Len(t, buf, pixelFormatWireSize)
	got := unmarshalPixelFormat(buf)
	assert.Equal(t, f, got)
}

func TestPixelFormatBytesPerPixel(t *testing.T) {
	assert.Equal(t, 4, PixelFormatDepth24.bytesPerPixel())
	assert.Equal(t, 2, PixelFormatDepth16.bytesPerPixel())
	assert.Equal(t, 1, PixelFormatDepth8.bytesPerPixel())
}

func TestIsBrokenDepth32(t *testing.T) {
	broken := PixelFormat{Depth: 32, RedMax: 1023, GreenMax: 1023, BlueMax: 1023}
	assert.True(t, broken.isBrokenDepth32())
	assert.False(t, PixelFormatDepth24.isBrokenDepth32())
}
