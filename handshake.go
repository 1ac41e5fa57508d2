package gvnc

import (
	"context"
	"fmt"

	"github.com/jwendell/gvnc/internal/transport"
)

// runEngine is the Connection Engine's single long-lived goroutine body,
// walking NEW -> OPENING -> ... -> RUNNING -> CLOSED. It favors one
// goroutine with blocking reads and no explicit state table over a
// callback- or coroutine-driven handshake.
func (c *Client) runEngine(ctx context.Context) (retErr error) {
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*connError)
			if !ok {
				panic(r)
			}
			retErr = ce
		}
		c.mu.Lock()
		c.lastErr = retErr
		c.mu.Unlock()
		c.teardown()
		c.setState(stateClosed)
		c.emitDisconnected(retErr)
	}()

	c.emitConnected()
	c.runVersion()
	c.runAuthNegotiation(ctx)
	c.runAuthResult()
	c.runInit()
	c.runRunningLoop(ctx)
	return nil
}

func (c *Client) teardown() {
	if c.stream != nil {
		_ = c.stream.Close()
	} else if c.conn != nil {
		_ = c.conn.Close()
	}
}

// runVersion exchanges the RFB version banner, clamping to the highest
// protocol version this client supports that does not exceed the
// server's offer.
func (c *Client) runVersion() {
	c.setState(stateOpening)
	banner := c.readN(12)
	var maj, min int
	if _, err := fmt.Sscanf(string(banner), "RFB %03d.%03d\n", &maj, &min); err != nil {
		failf(ErrKindProtocol, "malformed version banner %q", banner)
	}
	if maj < 3 || (maj == 3 && min < 3) {
		failf(ErrKindProtocol, "unsupported protocol version %d.%d", maj, min)
	}
	chosen := clampVersion(maj, min)
	c.majorVersion, c.minorVersion = chosen[0], chosen[1]
	reply := fmt.Sprintf("RFB %03d.%03d\n", c.majorVersion, c.minorVersion)
	c.writeBytes([]byte(reply))
	c.flush()
	c.setState(stateVersion)
}

// clampVersion picks the highest entry of supportedVersions not
// exceeding (maj,min).
func clampVersion(maj, min int) [2]int {
	chosen := supportedVersions[0]
	for _, v := range supportedVersions {
		if v[0] < maj || (v[0] == maj && v[1] <= min) {
			chosen = v
		}
	}
	return chosen
}

// runAuthNegotiation reads the server's offered auth types (format
// depends on protocol minor version), picks one, and dispatches to its
// exchange.
func (c *Client) runAuthNegotiation(ctx context.Context) {
	c.setState(stateAuthNegotiation)

	var offered []AuthType
	if c.minorVersion <= 6 {
		offered = []AuthType{AuthType(c.readU32())}
	} else {
		count := c.readU8()
		if count == 0 {
			// Protocol 3.8: count=0 means an error record follows instead
			// of an auth-type list.
			length := c.readU32()
			reason := string(c.readN(clampInt(int(length), maxAuthFailureReason)))
			c.emitAuthFailure(reason)
			failf(ErrKindAuth, "server rejected connection: %s", reason)
		}
		for i := 0; i < int(count); i++ {
			offered = append(offered, AuthType(c.readU8()))
		}
	}

	chosen, ok := c.chooseAuthType(ctx, offered)
	if !ok {
		c.emitAuthUnsupported(AuthInvalid)
		failf(ErrKindAuth, "no acceptable auth type among %v", offered)
	}
	c.authType = chosen
	if c.minorVersion >= 7 {
		c.writeU8(uint8(chosen))
		c.flush()
	}

	c.setState(stateAuthExchange)
	c.runAuthExchange(ctx, chosen)
}

// chooseAuthType asks the host's chooser callback, falling back to the
// first entry of AuthPreference present in offered.
func (c *Client) chooseAuthType(ctx context.Context, offered []AuthType) (AuthType, bool) {
	if c.handlers.onAuthChooseType != nil {
		return c.handlers.onAuthChooseType(offered)
	}
	for _, pref := range c.authPreference {
		for _, o := range offered {
			if o == pref {
				return pref, true
			}
		}
	}
	return AuthInvalid, false
}

// chooseAuthSubType mirrors chooseAuthType for TLS/VeNCrypt sub-type
// selection.
func (c *Client) chooseAuthSubType(parent AuthType, offered []uint32, preference []uint32) (uint32, bool) {
	if c.handlers.onAuthChooseSubType != nil {
		return c.handlers.onAuthChooseSubType(parent, offered)
	}
	for _, pref := range preference {
		for _, o := range offered {
			if o == pref {
				return pref, true
			}
		}
	}
	if len(offered) > 0 {
		return offered[0], true
	}
	return 0, false
}

// runAuthExchange dispatches to the implementation of the chosen auth
// type.
func (c *Client) runAuthExchange(ctx context.Context, t AuthType) {
	switch t {
	case AuthNone:
		c.authNone()
	case AuthVNC:
		c.authVNC(ctx)
	case AuthMSLogon:
		c.authMSLogon(ctx)
	case AuthARD:
		c.authARD(ctx)
	case AuthTLS:
		c.authTLS(ctx)
	case AuthVeNCrypt:
		c.authVeNCrypt(ctx)
	case AuthSASL:
		c.authSASL(ctx)
	default:
		c.emitAuthUnsupported(t)
		failf(ErrKindAuth, "unsupported auth type %d", t)
	}
}

func (c *Client) authNone() {
	if c.minorVersion >= 8 {
		return // caller reads AUTH_RESULT uniformly.
	}
	// Pre-3.8 None succeeds immediately with no result record.
	c.setState(stateAuthResult)
	c.skipAuthResult = true
}

// runAuthResult reads the post-auth result record (when the chosen auth
// type produces one) and, on success, finishes wrapping the transport if
// SASL negotiated one.
func (c *Client) runAuthResult() {
	c.setState(stateAuthResult)
	if c.skipAuthResult {
		c.skipAuthResult = false
		return
	}
	result := c.readU32()
	if result == 0 {
		if c.pendingSASLWrap {
			c.stream = transport.Wrap(c.stream, c.saslSSF, nil, nil)
			c.pendingSASLWrap = false
		}
		return
	}
	reason := ""
	if c.minorVersion >= 8 {
		length := c.readU32()
		reason = string(c.readN(clampInt(int(length), maxAuthFailureReason)))
	}
	c.emitAuthFailure(reason)
	failf(ErrKindAuth, "authentication failed: %s", reason)
}

// runInit exchanges ClientInit/ServerInit: sends the shared-flag byte,
// reads the server's screen geometry, pixel format, and desktop name,
// then requests the initial framebuffer update.
func (c *Client) runInit() {
	c.setState(stateInit)
	c.writeU8(boolByte(c.shared))
	c.flush()

	width := int(c.readU16())
	height := int(c.readU16())
	format := unmarshalPixelFormat(c.readN(pixelFormatWireSize))
	nameLen := int(c.readU32())
	if nameLen > maxDesktopNameLength {
		failf(ErrKindProtocol, "desktop name length %d exceeds maximum %d", nameLen, maxDesktopNameLength)
	}
	name := string(c.readN(nameLen))

	c.mu.Lock()
	c.serverFormat = format
	c.desktopWidth = width
	c.desktopHeight = height
	c.desktopName = name
	c.fb = NewFramebuffer(width, height, format, c.localFormat)
	c.mu.Unlock()

	c.emitInitialized()

	if c.requestedFormat != nil {
		c.sendSetPixelFormat(*c.requestedFormat)
	}
	c.sendSetEncodings()
	c.sendFramebufferUpdateRequest(false, 0, 0, width, height)
	c.drainSendBuffer()
}

func clampInt(v, max int) int {
	if v > max {
		return max
	}
	return v
}
