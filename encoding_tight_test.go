package gvnc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTightTestClient(wire []byte, w, h int) *Client {
	c := &Client{
		stream:       newMemStream(wire),
		serverFormat: PixelFormatDepth24,
	}
	c.fb = NewFramebuffer(w, h, PixelFormatDepth24, PixelFormatDepth24)
	return c
}

func TestDecodeTightFillMode(t *testing.T) {
	ctrl := byte(tightModeFill << 4)
	wire := []byte{ctrl, 0x00, 0x00, 0x2a, 0x00} // TPixel red=0x2a, little-endian depth24
	c := newTightTestClient(wire, 4, 4)

	c.decodeTight(0, 0, 4, 4)

	r, _, _ := c.fb.RGBAt(2, 2)
	assert.Equal(t, uint8(0x2a), r)
}

func TestDecodeTightBasicCopyNoFilter(t *testing.T) {
	ctrl := byte(0) // mode 0: basic, stream 1, no filter byte
	wire := []byte{ctrl, 0x00, 0x00, 0x11, 0x00}
	c := newTightTestClient(wire, 1, 1)

	c.decodeTight(0, 0, 1, 1)

	r, _, _ := c.fb.RGBAt(0, 0)
	assert.Equal(t, uint8(0x11), r)
}

func TestDecodeTightGradientFilter(t *testing.T) {
	ctrl := byte(4 << 4) // mode 4: basic, stream 1, filter byte follows
	wire := []byte{
		ctrl,
		2, // filter byte: gradient
		// TPixel deltas are little-endian 3-byte packs of (dr<<16|dg<<8|db);
		// first pixel wants (dr,dg,db)=(10,20,30), second wants (0,0,0).
		30, 20, 10, 0, 0, 0,
	}
	c := newTightTestClient(wire, 2, 1)

	c.decodeTight(0, 0, 2, 1)

	r, g, b := c.fb.RGBAt(0, 0)
	assert.Equal(t, uint8(10), r)
	assert.Equal(t, uint8(20), g)
	assert.Equal(t, uint8(30), b)

	// second pixel's delta is zero, so it should equal the gradient
	// predictor from its left neighbour (no up/upleft in a single row).
	r2, g2, b2 := c.fb.RGBAt(1, 0)
	assert.Equal(t, r, r2)
	assert.Equal(t, g, g2)
	assert.Equal(t, b, b2)
}

func TestDecodeTightPaletteFilterUsesFullByteIndices(t *testing.T) {
	ctrl := byte(4 << 4) // mode 4: basic, stream 1, filter byte follows
	wire := []byte{
		ctrl,
		1, // filter byte: palette
		2, // count-1 -> palette of 3 entries: one full byte per index
		0x1E, 0x14, 0x0A, 0x00, // palette[0]: R=10 G=20 B=30
		0x3C, 0x32, 0x28, 0x00, // palette[1]: R=40 G=50 B=60
		0x5A, 0x50, 0x46, 0x00, // palette[2]: R=70 G=80 B=90
		1, 2, 0, // one index byte per pixel, not a packed bit field
	}
	c := newTightTestClient(wire, 3, 1)

	c.decodeTight(0, 0, 3, 1)

	r, g, b := c.fb.RGBAt(0, 0)
	assert.Equal(t, uint8(40), r)
	assert.Equal(t, uint8(50), g)
	assert.Equal(t, uint8(60), b)

	r, g, b = c.fb.RGBAt(1, 0)
	assert.Equal(t, uint8(70), r)
	assert.Equal(t, uint8(80), g)
	assert.Equal(t, uint8(90), b)

	r, g, b = c.fb.RGBAt(2, 0)
	assert.Equal(t, uint8(10), r)
	assert.Equal(t, uint8(20), g)
	assert.Equal(t, uint8(30), b)
}

func TestDecodeTightPaletteSizeOneRejected(t *testing.T) {
	ctrl := byte(4 << 4)
	wire := []byte{ctrl, 1, 0} // filter byte: palette; count-1 == 0 -> size 1
	c := newTightTestClient(wire, 2, 2)

	defer func() {
		r := recover()
		ce, ok := r.(*connError)
		require.True(t, ok)
		assert.Equal(t, ErrKindProtocol, ce.ErrorKind())
	}()
	c.decodeTight(0, 0, 2, 2)
}

func TestGradientPredictClampsToByteRange(t *testing.T) {
	assert.Equal(t, uint8(0), gradientPredict(0, 0, 255))
	assert.Equal(t, uint8(255), gradientPredict(255, 255, 0))
	assert.Equal(t, uint8(100), gradientPredict(50, 60, 10))
}

func TestTpixelComponents(t *testing.T) {
	r, g, b := tpixelComponents(uint64(0x112233))
	assert.Equal(t, uint8(0x11), r)
	assert.Equal(t, uint8(0x22), g)
	assert.Equal(t, uint8(0x33), b)
}

func TestTightBitReaderUnpacksMSBFirst(t *testing.T) {
	br := tightBitReader{row: []byte{0b10_11_00_01}}
	assert.Equal(t, 2, br.readBits(2))
	assert.Equal(t, 3, br.readBits(2))
	assert.Equal(t, 0, br.readBits(2))
	assert.Equal(t, 1, br.readBits(2))
}
