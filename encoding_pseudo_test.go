package gvnc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDesktopResizeRebuildsFramebuffer(t *testing.T) {
	var gotW, gotH int
	c := &Client{
		serverFormat: PixelFormatDepth24,
		localFormat:  PixelFormatDepth24,
		handlers: eventHandlers{
			onDesktopResize: func(w, h int) { gotW, gotH = w, h },
		},
	}
	c.fb = NewFramebuffer(2, 2, PixelFormatDepth24, PixelFormatDepth24)

	c.decodeDesktopResize(10, 20)

	assert.Equal(t, 10, c.desktopWidth)
	assert.Equal(t, 20, c.desktopHeight)
	assert.Equal(t, 10, gotW)
	assert.Equal(t, 20, gotH)
	require.NotNil(t, c.fb)
	assert.Equal(t, 10, c.fb.Width())
}

func TestDecodeWMViUpdatesFormatWithoutResize(t *testing.T) {
	c := &Client{
		stream:       newMemStream(PixelFormatDepth16.marshal()),
		serverFormat: PixelFormatDepth24,
		localFormat:  PixelFormatDepth24,
		desktopWidth: 4, desktopHeight: 4,
	}
	c.fb = NewFramebuffer(4, 4, PixelFormatDepth24, PixelFormatDepth24)
	oldFB := c.fb

	c.decodeWMVi(4, 4)

	assert.Equal(t, PixelFormatDepth16, c.serverFormat)
	assert.Same(t, oldFB, c.fb, "same-size WMVi should update the format in place")
}

func TestDecodeWMViRebuildsOnResize(t *testing.T) {
	c := &Client{
		stream:       newMemStream(PixelFormatDepth16.marshal()),
		serverFormat: PixelFormatDepth24,
		localFormat:  PixelFormatDepth24,
		desktopWidth: 4, desktopHeight: 4,
	}
	c.fb = NewFramebuffer(4, 4, PixelFormatDepth24, PixelFormatDepth24)

	c.decodeWMVi(8, 8)

	assert.Equal(t, 8, c.fb.Width())
}

func TestDecodePointerChangeEmitsMode(t *testing.T) {
	var absolute bool
	c := &Client{handlers: eventHandlers{onPointerModeChanged: func(a bool) { absolute = a }}}
	c.decodePointerChange(1)
	assert.True(t, absolute)
	c.decodePointerChange(0)
	assert.False(t, absolute)
}

func TestDecodeExtKeyEventRecordsSupport(t *testing.T) {
	c := &Client{}
	c.decodeExtKeyEvent()
	assert.True(t, c.extKeyEvent)
}

func TestDecodeXCursorComposesRGBA(t *testing.T) {
	var wire []byte
	wire = append(wire, 0xff, 0x00, 0x00) // fg red
	wire = append(wire, 0x00, 0x00, 0xff) // bg blue
	wire = append(wire, 0b10000000)       // data row: bit0 set (pixel 0 is fg)
	wire = append(wire, 0b10000000)       // mask row: bit0 set (pixel 0 visible), pixel 1 transparent

	c := &Client{stream: newMemStream(wire)}
	var cur *Cursor
	c.handlers.onCursorChanged = func(cc *Cursor) { cur = cc }

	c.decodeXCursor(0, 0, 2, 1)

	require.NotNil(t, cur)
	assert.Equal(t, uint8(0xff), cur.RGBA[0])
	assert.Equal(t, uint8(0), cur.RGBA[1])
	assert.Equal(t, uint8(0), cur.RGBA[2])
	assert.Equal(t, uint8(255), cur.RGBA[3], "pixel 0 visible")
	assert.Equal(t, uint8(0), cur.RGBA[4+3], "pixel 1 masked out, alpha 0")
}

func TestDecodeXCursorZeroSizeClearsCursor(t *testing.T) {
	var cleared bool
	c := &Client{handlers: eventHandlers{onCursorChanged: func(cc *Cursor) { cleared = cc == nil }}}
	c.decodeXCursor(0, 0, 0, 0)
	assert.True(t, cleared)
}

func TestComponentTo8(t *testing.T) {
	assert.Equal(t, uint8(255), componentTo8(31, 31))
	assert.Equal(t, uint8(0), componentTo8(0, 31))
	assert.Equal(t, uint8(0), componentTo8(5, 0))
}
