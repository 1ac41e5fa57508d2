package gvnc

import "encoding/binary"

// enqueueSend appends an already-encoded message to the send buffer,
// the one piece of state shared between host goroutines and the engine
// goroutine: writes are append-only and the engine only ever drains the
// buffer when it next reaches the top of its receive-loop iteration or
// is parked in a blocking read, so no lock is needed around the drain
// itself — only around the append, since two goroutines touch the same
// slice.
func (c *Client) enqueueSend(msg []byte) {
	c.sendMu.Lock()
	c.sendBuf = append(c.sendBuf, msg...)
	c.sendMu.Unlock()
	c.sig.Broadcast()
}

// drainSendBuffer takes ownership of whatever has accumulated in the send
// buffer, writes it through the transport, and flushes. Called only from
// the engine goroutine, synchronously at the start of each receive-loop
// iteration.
func (c *Client) drainSendBuffer() {
	c.sendMu.Lock()
	pending := c.sendBuf
	c.sendBuf = nil
	c.sendMu.Unlock()
	if len(pending) > 0 {
		c.writeBytes(pending)
	}
	c.flush()
}

// SetPixelFormat requests format as the new server pixel format. Safe to
// call from any goroutine once the connection is open.
func (c *Client) SetPixelFormat(format PixelFormat) { c.sendSetPixelFormat(format) }

func (c *Client) sendSetPixelFormat(format PixelFormat) {
	buf := make([]byte, 4+pixelFormatWireSize)
	buf[0] = cmdSetPixelFormat
	copy(buf[4:], format.marshal())
	c.enqueueSend(buf)
	c.mu.Lock()
	c.localFormat = format
	c.serverFormat = format
	if c.fb != nil {
		c.fb.local = format
		c.fb.remote = format
		c.fb.rowstride = c.fb.width * format.bytesPerPixel()
		c.fb.buf = make([]byte, c.fb.rowstride*c.fb.height)
		c.fb.tp = buildTranslateParams(format, format)
	}
	c.mu.Unlock()
}

// SetEncodings overrides the advertised encoding preference list and
// re-sends SetEncodings immediately.
func (c *Client) SetEncodings(order []Encoding) {
	c.mu.Lock()
	c.encodingOrder = order
	c.mu.Unlock()
	c.sendSetEncodings()
}

// sendSetEncodings advertises the client's encoding preference list,
// applying the RealVNC depth-32 ZRLE workaround.
func (c *Client) sendSetEncodings() {
	c.mu.Lock()
	order := c.encodingOrder
	dropZRLE := c.serverFormat.isBrokenDepth32()
	c.mu.Unlock()

	list := make([]Encoding, 0, len(order))
	for _, e := range order {
		if dropZRLE && e == EncodingZRLE {
			continue
		}
		list = append(list, e)
	}

	buf := make([]byte, 4+4*len(list))
	buf[0] = cmdSetEncodings
	binary.BigEndian.PutUint16(buf[2:], uint16(len(list)))
	for i, e := range list {
		binary.BigEndian.PutUint32(buf[4+4*i:], uint32(e))
	}
	c.enqueueSend(buf)
}

// FramebufferUpdateRequest sends an explicit update request and remembers
// it for the pseudo-encodings that require a re-send.
func (c *Client) FramebufferUpdateRequest(incremental bool, x, y, w, h int) {
	c.sendFramebufferUpdateRequest(incremental, x, y, w, h)
}

func (c *Client) sendFramebufferUpdateRequest(incremental bool, x, y, w, h int) {
	buf := make([]byte, 10)
	buf[0] = cmdFramebufferUpdateRequest
	buf[1] = boolByte(incremental)
	binary.BigEndian.PutUint16(buf[2:], uint16(x))
	binary.BigEndian.PutUint16(buf[4:], uint16(y))
	binary.BigEndian.PutUint16(buf[6:], uint16(w))
	binary.BigEndian.PutUint16(buf[8:], uint16(h))
	c.enqueueSend(buf)
	c.mu.Lock()
	c.lastUpdateRequest = &updateRequest{incremental: incremental, x: x, y: y, w: w, h: h}
	c.mu.Unlock()
}

// resendLastUpdateRequest re-issues the last FramebufferUpdateRequest,
// used by pseudo-encodings that stop the regular update flow (rich-cursor,
// X-cursor, pointer-change, ext-key-event).
func (c *Client) resendLastUpdateRequest() {
	c.mu.Lock()
	last := c.lastUpdateRequest
	c.mu.Unlock()
	if last == nil {
		return
	}
	c.sendFramebufferUpdateRequest(last.incremental, last.x, last.y, last.w, last.h)
}

// PointerEvent sends a PointerEvent message.
func (c *Client) PointerEvent(buttonMask uint8, x, y int) {
	buf := make([]byte, 6)
	buf[0] = cmdPointerEvent
	buf[1] = buttonMask
	binary.BigEndian.PutUint16(buf[2:], uint16(x))
	binary.BigEndian.PutUint16(buf[4:], uint16(y))
	c.enqueueSend(buf)
}

// KeyEvent sends a KeyEvent message.
func (c *Client) KeyEvent(down bool, keysym uint32) {
	buf := make([]byte, 8)
	buf[0] = cmdKeyEvent
	buf[1] = boolByte(down)
	binary.BigEndian.PutUint32(buf[4:], keysym)
	c.enqueueSend(buf)
}

// ExtendedKeyEvent sends the QEMU extended-key-event client message,
// carrying the raw hardware scancode alongside the X keysym. Only
// meaningful once the server has advertised the ext-key-event
// pseudo-encoding.
func (c *Client) ExtendedKeyEvent(down bool, keysym uint32, scancode uint16) {
	c.mu.Lock()
	supported := c.extKeyEvent
	c.mu.Unlock()
	if !supported {
		c.KeyEvent(down, keysym)
		return
	}
	buf := make([]byte, 12)
	buf[0] = cmdExtendedKeyEvent
	buf[1] = 0 // sub-message: key event
	buf[2] = boolByte(down)
	// buf[3] padding.
	binary.BigEndian.PutUint32(buf[4:], keysym)
	binary.BigEndian.PutUint32(buf[8:], uint32(scancode))
	c.enqueueSend(buf)
}

// ClientCutText pushes clipboard text to the server.
func (c *Client) ClientCutText(text []byte) {
	buf := make([]byte, 8+len(text))
	buf[0] = cmdClientCutText
	binary.BigEndian.PutUint32(buf[4:], uint32(len(text)))
	copy(buf[8:], text)
	c.enqueueSend(buf)
}

// SetShared changes the shared-flag byte used on the next Open/OpenConn;
// it has no effect once INIT has already been sent.
func (c *Client) SetShared(shared bool) {
	c.mu.Lock()
	c.shared = shared
	c.mu.Unlock()
}
