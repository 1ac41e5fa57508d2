package gvnc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeRawFillsFramebuffer(t *testing.T) {
	// 2x2 rectangle of depth24 pixels (RedShift 16), each 4 bytes
	// little-endian, red components 1,2,3,4 in row-major order.
	wire := []byte{
		0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x02, 0x00,
		0x00, 0x00, 0x03, 0x00, 0x00, 0x00, 0x04, 0x00,
	}
	stream := newMemStream(wire)
	c := newDecodeTestClient(stream, PixelFormatDepth24, PixelFormatDepth24, 2, 2)

	c.decodeRaw(0, 0, 2, 2)

	r, _, _ := c.fb.RGBAt(0, 0)
	assert.Equal(t, uint8(1), r)
	r, _, _ = c.fb.RGBAt(1, 1)
	assert.Equal(t, uint8(4), r)
}

func TestDecodeRawZeroSizedRectangleIsNoop(t *testing.T) {
	stream := newMemStream(nil)
	c := newDecodeTestClient(stream, PixelFormatDepth24, PixelFormatDepth24, 1, 1)
	assert.NotPanics(t, func() { c.decodeRaw(0, 0, 0, 0) })
}
