package gvnc

import (
	"context"

	"github.com/jwendell/gvnc/internal/task"
	"github.com/jwendell/gvnc/internal/transport"
)

// upgradeTLS installs a TLS layer above the raw transport, used by both
// the plain TLS auth type and VeNCrypt's TLS-tunnel sub-types.
func (c *Client) upgradeTLS(cfg transport.TLSConfig) {
	tlsStream, err := transport.Upgrade(c.raw, cfg)
	if err != nil {
		failf(ErrKindIO, "TLS handshake: %v", err)
	}
	c.stream = tlsStream
}

// authTLS performs the plain TLS auth type: an anonymous handshake
// followed by a nested sub-type negotiation.
func (c *Client) authTLS(ctx context.Context) {
	c.upgradeTLS(transport.TLSConfig{Anonymous: true})

	count := c.readU8()
	offered := make([]uint32, count)
	for i := range offered {
		offered[i] = uint32(c.readU8())
	}
	pref := []uint32{uint32(AuthSASL), uint32(AuthVNC), uint32(AuthNone)}
	sub, ok := c.chooseAuthSubType(AuthTLS, offered, pref)
	if !ok {
		c.emitAuthUnsupported(AuthTLS)
		failf(ErrKindAuth, "no acceptable TLS sub-type among %v", offered)
	}
	c.writeU8(uint8(sub))
	c.flush()
	c.runAuthExchange(ctx, AuthType(sub))
}

// venCryptPreference is the sub-type preference order consulted when no
// host chooser is installed: X.509-verified over anonymous, SASL over
// VNC-password over none. PLAIN variants are never offered — they send
// the password unencrypted inside the tunnel and are disabled by
// default.
var venCryptPreference = []uint32{
	uint32(VeNCryptX509SASL),
	uint32(VeNCryptTLSSASL),
	uint32(VeNCryptX509VNC),
	uint32(VeNCryptTLSVNC),
	uint32(VeNCryptX509None),
	uint32(VeNCryptTLSNone),
}

// authVeNCrypt negotiates a VeNCrypt version, sub-type, and TLS tunnel,
// then runs the inner auth type the chosen sub-type implies.
func (c *Client) authVeNCrypt(ctx context.Context) {
	c.writeU8(0)
	c.writeU8(2)
	c.flush()
	major := c.readU8()
	minor := c.readU8()
	if major != 0 || minor != 2 {
		failf(ErrKindAuth, "server does not support VeNCrypt 0.2 (offered %d.%d)", major, minor)
	}
	if ack := c.readU8(); ack != 0 {
		failf(ErrKindAuth, "server rejected VeNCrypt version negotiation")
	}

	count := c.readU8()
	offered := make([]uint32, count)
	for i := range offered {
		offered[i] = c.readU32()
	}
	sub, ok := c.chooseAuthSubType(AuthVeNCrypt, offered, venCryptPreference)
	if !ok {
		c.emitAuthUnsupported(AuthVeNCrypt)
		failf(ErrKindAuth, "no acceptable VeNCrypt sub-type among %v", offered)
	}
	c.writeU32(sub)
	c.flush()

	useX509 := false
	var inner AuthType
	switch VeNCryptSubType(sub) {
	case VeNCryptTLSNone:
		inner = AuthNone
	case VeNCryptTLSVNC:
		inner = AuthVNC
	case VeNCryptTLSSASL:
		inner = AuthSASL
	case VeNCryptX509None:
		useX509, inner = true, AuthNone
	case VeNCryptX509VNC:
		useX509, inner = true, AuthVNC
	case VeNCryptX509SASL:
		useX509, inner = true, AuthSASL
	case VeNCryptPlain, VeNCryptTLSPlain, VeNCryptX509Plain:
		failf(ErrKindAuth, "VeNCrypt PLAIN sub-types are disabled by default")
	default:
		failf(ErrKindAuth, "unknown VeNCrypt sub-type %d", sub)
	}

	cfg := c.tlsConfig
	cfg.Anonymous = !useX509
	if useX509 && cfg.CACert == "" {
		c.requestCredentials(CredentialClientName)
		if err := task.WaitFor(ctx, c.sig, c.shutdownCh, c.haveWantedCredentials); err != nil {
			failf(ErrKindAuth, "waiting for X.509 credentials: %v", err)
		}
		c.clearWantedCredentials()
		c.mu.Lock()
		cfg.CACert = c.creds.caCert
		cfg.ClientCrt = c.creds.clientCrt
		cfg.ClientKey = c.creds.clientKey
		cfg.CRL = c.creds.crl
		c.mu.Unlock()
	}
	c.upgradeTLS(cfg)
	c.runAuthExchange(ctx, inner)
}
