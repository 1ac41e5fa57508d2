package gvnc

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwendell/gvnc/internal/transport"
)

// zrleWireFor zlib-compresses payload and prepends the 4-byte big-endian
// length ZRLE puts on the wire ahead of the compressed blob.
func zrleWireFor(t *testing.T, payload []byte) []byte {
	t.Helper()
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	_, err := zw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	wire := make([]byte, 4)
	n := uint32(compressed.Len())
	wire[0], wire[1], wire[2], wire[3] = byte(n>>24), byte(n>>16), byte(n>>8), byte(n)
	return append(wire, compressed.Bytes()...)
}

func newZRLETestClient(wire []byte, w, h int) *Client {
	c := &Client{
		stream:       newMemStream(wire),
		serverFormat: PixelFormatDepth24,
		inflate:      transport.NewInflatePool(),
		log:          logrus.NewEntry(logrus.New()),
	}
	c.fb = NewFramebuffer(w, h, PixelFormatDepth24, PixelFormatDepth24)
	return c
}

func TestDecodeZRLEFillTile(t *testing.T) {
	payload := []byte{1, 0x22, 0x00, 0x00} // sub 1 (fill), CPixel b=0x22 g=0x00 r=0x00 (little-endian: blue byte first)
	c := newZRLETestClient(zrleWireFor(t, payload), 8, 8)

	c.decodeZRLE(0, 0, 8, 8)

	_, _, b := c.fb.RGBAt(3, 3)
	assert.Equal(t, uint8(0x22), b)
}

func TestDecodeZRLERawTile(t *testing.T) {
	var payload []byte
	payload = append(payload, 0) // sub 0: raw
	for i := 0; i < 8*8; i++ {
		payload = append(payload, 0x33, 0x22, 0x11) // little-endian CPixel: b, g, r
	}
	c := newZRLETestClient(zrleWireFor(t, payload), 8, 8)

	c.decodeZRLE(0, 0, 8, 8)

	r, g, b := c.fb.RGBAt(7, 7)
	assert.Equal(t, uint8(0x11), r)
	assert.Equal(t, uint8(0x22), g)
	assert.Equal(t, uint8(0x33), b)
}

func TestDecodeZRLEPlainRunLength(t *testing.T) {
	var payload []byte
	payload = append(payload, 128)          // sub 128: plain RLE
	payload = append(payload, 0x00, 0x00, 0x0a) // CPixel r=0x0a (little-endian: b, g, r)
	payload = append(payload, 63)           // run length byte -> total run = 64 (whole 8x8 tile)
	c := newZRLETestClient(zrleWireFor(t, payload), 8, 8)

	c.decodeZRLE(0, 0, 8, 8)

	r, _, _ := c.fb.RGBAt(0, 0)
	assert.Equal(t, uint8(0x0a), r)
	r, _, _ = c.fb.RGBAt(7, 7)
	assert.Equal(t, uint8(0x0a), r)
}

func TestZRLEReadRunLengthSumsContinuationBytes(t *testing.T) {
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	_, err := zw.Write([]byte{0xFF, 0x02}) // 1 + 255 + 2 = 258
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	c := &Client{inflate: transport.NewInflatePool()}
	require.NoError(t, c.inflate.Feed(0, compressed.Bytes()))

	assert.Equal(t, 258, c.zrleReadRunLength())
}
