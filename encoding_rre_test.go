package gvnc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeRREFillsBackgroundThenSubrects(t *testing.T) {
	var wire []byte
	putU32 := func(v uint32) {
		wire = append(wire, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
	putU16 := func(v uint16) {
		wire = append(wire, byte(v>>8), byte(v))
	}
	putPixel := func(raw uint32) {
		// little-endian depth24 pixel, matching PixelFormatDepth24.
		wire = append(wire, byte(raw), byte(raw>>8), byte(raw>>16), byte(raw>>24))
	}

	putU32(1)                 // one subrectangle
	putPixel(0x000000)        // background: black
	putPixel(uint32(0xff) << 16) // subrect color: red
	putU16(1)                 // sx
	putU16(1)                 // sy
	putU16(2)                 // sw
	putU16(2)                 // sh

	stream := newMemStream(wire)
	c := newDecodeTestClient(stream, PixelFormatDepth24, PixelFormatDepth24, 4, 4)

	c.decodeRRE(0, 0, 4, 4)

	r, _, _ := c.fb.RGBAt(0, 0)
	assert.Equal(t, uint8(0), r, "background corner stays black")
	r, _, _ = c.fb.RGBAt(1, 1)
	assert.Equal(t, uint8(0xff), r, "subrect corner is red")
	r, _, _ = c.fb.RGBAt(2, 2)
	assert.Equal(t, uint8(0xff), r, "subrect extends 2x2")
}
