package gvnc

import (
	"context"
	"crypto/des"

	"github.com/jwendell/gvnc/internal/task"
)

// fixDESKeyByte mirrors a byte's bits. The VNC authentication scheme
// bit-reverses each byte of the password before using it as a DES key —
// an RFB quirk required for interoperability with real servers
// (ported from hduplooy-gorfb/gorfb.go's fixDesKeyByte).
func fixDESKeyByte(v byte) byte {
	var out byte
	for i := 0; i < 8; i++ {
		out <<= 1
		out += v & 1
		v >>= 1
	}
	return out
}

// fixDESKey truncates/zero-pads password to 8 bytes and bit-reverses each
// byte, producing the DES key VNC authentication actually uses.
func fixDESKey(password string) []byte {
	key := make([]byte, 8)
	copy(key, password)
	for i := range key {
		key[i] = fixDESKeyByte(key[i])
	}
	return key
}

// authVNC responds to VNC password authentication's 16-byte challenge,
// encrypted in two independent 8-byte DES-ECB blocks keyed by the
// bit-reversed password.
func (c *Client) authVNC(ctx context.Context) {
	c.requestCredentials(CredentialPassword)
	if err := task.WaitFor(ctx, c.sig, c.shutdownCh, c.haveWantedCredentials); err != nil {
		failf(ErrKindAuth, "waiting for VNC password: %v", err)
	}
	c.clearWantedCredentials()

	challenge := c.readN(16)
	cipher, err := des.NewCipher(fixDESKey(c.credPassword()))
	if err != nil {
		failf(ErrKindAuth, "constructing DES cipher: %v", err)
	}
	response := make([]byte, 16)
	cipher.Encrypt(response[:8], challenge[:8])
	cipher.Encrypt(response[8:], challenge[8:])
	c.writeBytes(response)
	c.flush()
}
