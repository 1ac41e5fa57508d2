package gvnc

// eventHandlers holds the host callbacks a Client invokes as it
// progresses through the connection lifecycle. Each field is optional; a
// nil handler is simply skipped. The engine calls these synchronously and
// blocks on their return, so a host observes every event in wire order —
// exactly like bradfitz-rfbgo/rfb.go's handlers run synchronously on the
// connection's own goroutine rather than being posted elsewhere.
type eventHandlers struct {
	onConnected    func()
	onInitialized  func(width, height int, name string)
	onDisconnected func(err error)

	onAuthChooseType    func(offered []AuthType) (AuthType, bool)
	onAuthChooseSubType func(parent AuthType, offered []uint32) (uint32, bool)
	onAuthCredential    func(kinds []CredentialKind) error
	onAuthFailure       func(reason string)
	onAuthUnsupported   func(authType AuthType)

	onCursorChanged      func(cur *Cursor)
	onPointerModeChanged func(absolute bool)
	onBell               func()
	onServerCutText      func(text []byte)
	onFramebufferUpdate  func(x, y, w, h int)
	onDesktopResize      func(w, h int)
	onPixelFormatChanged func(f PixelFormat)
}

// CredentialKind names the piece of credential information an auth step
// is blocked waiting for.
type CredentialKind int

const (
	CredentialPassword CredentialKind = iota
	CredentialUsername
	CredentialClientName
)

func (k CredentialKind) String() string {
	switch k {
	case CredentialPassword:
		return "password"
	case CredentialUsername:
		return "username"
	case CredentialClientName:
		return "clientname"
	default:
		return "unknown"
	}
}

func (c *Client) emitConnected() {
	if c.handlers.onConnected != nil {
		c.handlers.onConnected()
	}
}

func (c *Client) emitInitialized() {
	if c.handlers.onInitialized != nil {
		c.handlers.onInitialized(c.desktopWidth, c.desktopHeight, c.desktopName)
	}
}

func (c *Client) emitDisconnected(err error) {
	if c.handlers.onDisconnected != nil {
		c.handlers.onDisconnected(err)
	}
}

func (c *Client) emitAuthFailure(reason string) {
	if c.handlers.onAuthFailure != nil {
		c.handlers.onAuthFailure(reason)
	}
}

func (c *Client) emitAuthUnsupported(t AuthType) {
	if c.handlers.onAuthUnsupported != nil {
		c.handlers.onAuthUnsupported(t)
	}
}

func (c *Client) emitCursorChanged(cur *Cursor) {
	c.mu.Lock()
	c.cursor = cur
	c.mu.Unlock()
	if c.handlers.onCursorChanged != nil {
		c.handlers.onCursorChanged(cur)
	}
}

func (c *Client) emitPointerModeChanged(absolute bool) {
	c.mu.Lock()
	c.pointerAbsolute = absolute
	c.mu.Unlock()
	if c.handlers.onPointerModeChanged != nil {
		c.handlers.onPointerModeChanged(absolute)
	}
}

func (c *Client) emitBell() {
	if c.handlers.onBell != nil {
		c.handlers.onBell()
	}
}

func (c *Client) emitServerCutText(text []byte) {
	if c.handlers.onServerCutText != nil {
		c.handlers.onServerCutText(text)
	}
}

func (c *Client) emitFramebufferUpdate(x, y, w, h int) {
	if c.handlers.onFramebufferUpdate != nil {
		c.handlers.onFramebufferUpdate(x, y, w, h)
	}
}

func (c *Client) emitDesktopResize(w, h int) {
	if c.handlers.onDesktopResize != nil {
		c.handlers.onDesktopResize(w, h)
	}
}

func (c *Client) emitPixelFormatChanged(f PixelFormat) {
	if c.handlers.onPixelFormatChanged != nil {
		c.handlers.onPixelFormatChanged(f)
	}
}
