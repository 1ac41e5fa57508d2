package gvnc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/jwendell/gvnc/internal/transport"
)

// ClientOption configures a Client at construction time, following the
// functional-options pattern common for host-tunable engine
// construction.
type ClientOption func(*Client)

// WithLogger installs a logrus entry the engine logs protocol-level
// events through. Defaults to logrus.StandardLogger(), tagged with the
// connection's conn_id.
func WithLogger(log *logrus.Entry) ClientOption {
	return func(c *Client) { c.log = log }
}

// WithMetricsRegisterer registers the client's Prometheus metrics against
// reg instead of leaving them unregistered (the default — a Client never
// registers against the global registry implicitly).
func WithMetricsRegisterer(reg prometheus.Registerer) ClientOption {
	return func(c *Client) { c.metricsReg = reg }
}

// WithShared sets the shared-flag byte sent during ClientInit; defaults
// to true.
func WithShared(shared bool) ClientOption {
	return func(c *Client) { c.shared = shared }
}

// WithRequestedFormat requests a non-default local pixel format once
// ClientInit completes, via SetPixelFormat.
func WithRequestedFormat(f PixelFormat) ClientOption {
	return func(c *Client) { c.requestedFormat = &f }
}

// WithEncodingOrder overrides the advertised encoding preference order;
// defaults to defaultEncodingOrder.
func WithEncodingOrder(order []Encoding) ClientOption {
	return func(c *Client) { c.encodingOrder = order }
}

// WithAuthPreference overrides the auth-type preference order consulted
// when no AuthChooser is installed; defaults to defaultAuthPreference.
func WithAuthPreference(pref []AuthType) ClientOption {
	return func(c *Client) { c.authPreference = pref }
}

// WithAuthChooser installs a host callback that picks one auth type from
// the server's offered list. When absent, the client picks the first of
// AuthPreference present in the offered set.
func WithAuthChooser(fn func(offered []AuthType) (AuthType, bool)) ClientOption {
	return func(c *Client) { c.handlers.onAuthChooseType = fn }
}

// WithAuthSubChooser installs a host callback that picks a TLS/VeNCrypt
// sub-type from the server's offered list.
func WithAuthSubChooser(fn func(parent AuthType, offered []uint32) (uint32, bool)) ClientOption {
	return func(c *Client) { c.handlers.onAuthChooseSubType = fn }
}

// WithTLSConfig supplies the CA/client-certificate material the TLS and
// VeNCrypt X.509 auth branches use.
func WithTLSConfig(cfg transport.TLSConfig) ClientOption {
	return func(c *Client) { c.tlsConfig = cfg }
}

// WithOnConnected registers a callback fired once the TCP/TLS transport is
// up, before authentication begins.
func WithOnConnected(fn func()) ClientOption {
	return func(c *Client) { c.handlers.onConnected = fn }
}

// WithOnInitialized registers a callback fired once INIT completes,
// reporting the negotiated desktop geometry and name.
func WithOnInitialized(fn func(width, height int, name string)) ClientOption {
	return func(c *Client) { c.handlers.onInitialized = fn }
}

// WithOnDisconnected registers a callback fired exactly once when the
// engine tears down, carrying the terminal error. A host-requested
// Shutdown also ends the engine through an error (ErrKindIO while
// running), so err is non-nil then too.
func WithOnDisconnected(fn func(err error)) ClientOption {
	return func(c *Client) { c.handlers.onDisconnected = fn }
}

// WithOnAuthCredential registers a callback invoked whenever an auth
// branch needs credentials it doesn't have; the host is expected to call
// SetCredential in response, possibly asynchronously.
func WithOnAuthCredential(fn func(kinds []CredentialKind) error) ClientOption {
	return func(c *Client) { c.handlers.onAuthCredential = fn }
}

// WithOnAuthFailure registers a callback fired when the server rejects
// authentication with a reason string.
func WithOnAuthFailure(fn func(reason string)) ClientOption {
	return func(c *Client) { c.handlers.onAuthFailure = fn }
}

// WithOnAuthUnsupported registers a callback fired when the host's auth
// chooser declines every offered auth type.
func WithOnAuthUnsupported(fn func(authType AuthType)) ClientOption {
	return func(c *Client) { c.handlers.onAuthUnsupported = fn }
}

// WithOnCursorChanged registers a callback fired whenever the server
// pushes a new cursor shape via rich-cursor or X-cursor.
func WithOnCursorChanged(fn func(cur *Cursor)) ClientOption {
	return func(c *Client) { c.handlers.onCursorChanged = fn }
}

// WithOnPointerModeChanged registers a callback fired when the server
// toggles absolute/relative pointer mode via the pointer-change
// pseudo-encoding.
func WithOnPointerModeChanged(fn func(absolute bool)) ClientOption {
	return func(c *Client) { c.handlers.onPointerModeChanged = fn }
}

// WithOnBell registers a callback fired on a server Bell message.
func WithOnBell(fn func()) ClientOption {
	return func(c *Client) { c.handlers.onBell = fn }
}

// WithOnServerCutText registers a callback fired when the server pushes
// clipboard text.
func WithOnServerCutText(fn func(text []byte)) ClientOption {
	return func(c *Client) { c.handlers.onServerCutText = fn }
}

// WithOnFramebufferUpdate registers a callback fired once per decoded
// rectangle, after the framebuffer has been updated in place.
func WithOnFramebufferUpdate(fn func(x, y, w, h int)) ClientOption {
	return func(c *Client) { c.handlers.onFramebufferUpdate = fn }
}

// WithOnDesktopResize registers a callback fired on the desktop-size
// pseudo-encoding.
func WithOnDesktopResize(fn func(w, h int)) ClientOption {
	return func(c *Client) { c.handlers.onDesktopResize = fn }
}

// WithOnPixelFormatChanged registers a callback fired on the WMVi
// pseudo-encoding.
func WithOnPixelFormatChanged(fn func(f PixelFormat)) ClientOption {
	return func(c *Client) { c.handlers.onPixelFormatChanged = fn }
}
