package gvnc

import "context"

// runRunningLoop flushes queued sends, reads one message-type byte,
// dispatches, and repeats until shutdown or a fatal error. Rather than a
// distinct retry-until-cancelled mode, an interrupted read is just an
// ordinary blocking Read on a net.Conn that Shutdown() closes from any
// goroutine — closing the socket is what wakes a goroutine parked in
// that Read.
func (c *Client) runRunningLoop(ctx context.Context) {
	c.setState(stateRunning)
	for {
		select {
		case <-c.shutdownCh:
			failf(ErrKindIO, "shutdown requested")
		case <-ctx.Done():
			failf(ErrKindIO, "context canceled: %w", ctx.Err())
		default:
		}

		c.drainSendBuffer()

		msgType := c.readU8()
		switch msgType {
		case msgFramebufferUpdate:
			c.handleFramebufferUpdate()
		case msgSetColorMapEntries:
			c.handleSetColorMapEntries()
		case msgBell:
			c.emitBell()
		case msgServerCutText:
			c.handleServerCutText()
		default:
			failf(ErrKindProtocol, "unknown server message type %d", msgType)
		}
	}
}

// handleFramebufferUpdate reads the rectangle count and each rectangle's
// header, decoding each one in turn.
func (c *Client) handleFramebufferUpdate() {
	c.readU8() // padding
	count := int(c.readU16())
	for i := 0; i < count; i++ {
		x := int(c.readU16())
		y := int(c.readU16())
		w := int(c.readU16())
		h := int(c.readU16())
		enc := Encoding(c.readS32())
		c.decodeRectangle(enc, x, y, w, h)
	}
}

// handleSetColorMapEntries installs a new palette window on the
// framebuffer.
func (c *Client) handleSetColorMapEntries() {
	c.readU8() // padding
	first := c.readU16()
	count := int(c.readU16())
	entries := make([]RGB16, count)
	for i := range entries {
		entries[i] = RGB16{R: c.readU16(), G: c.readU16(), B: c.readU16()}
	}
	cmap := &ColorMap{Offset: first, Entries: entries}
	c.mu.Lock()
	if c.fb != nil {
		c.fb.SetColorMap(cmap)
	}
	c.mu.Unlock()
}

// handleServerCutText reads a clipboard text payload pushed by the
// server, rejecting one above the length ceiling.
func (c *Client) handleServerCutText() {
	c.readN(3) // padding
	length := c.readU32()
	if length > maxServerCutTextLength {
		failf(ErrKindProtocol, "ServerCutText length %d exceeds maximum %d", length, maxServerCutTextLength)
	}
	text := c.readN(int(length))
	c.emitServerCutText(text)
}
