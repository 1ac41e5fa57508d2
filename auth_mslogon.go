package gvnc

import (
	"context"
	"crypto/cipher"
	"crypto/des"
	"crypto/rand"
	"math/big"

	"github.com/jwendell/gvnc/internal/task"
)

// authMSLogon performs UltraVNC's MSLogon authentication: a
// Diffie-Hellman key exchange over 8-byte (generator, modulus,
// server-public) fields, followed by username/password fields
// DES-CBC-encrypted under the shared secret.
func (c *Client) authMSLogon(ctx context.Context) {
	c.requestCredentials(CredentialUsername, CredentialPassword)
	if err := task.WaitFor(ctx, c.sig, c.shutdownCh, c.haveWantedCredentials); err != nil {
		failf(ErrKindAuth, "waiting for MSLogon credentials: %v", err)
	}
	c.clearWantedCredentials()

	g := new(big.Int).SetBytes(c.readN(8))
	p := new(big.Int).SetBytes(c.readN(8))
	serverPub := new(big.Int).SetBytes(c.readN(8))

	priv := mslogonPrivateExponent(p)
	myPub := new(big.Int).Exp(g, priv, p)
	shared := new(big.Int).Exp(serverPub, priv, p)

	key := dhFieldBytes(shared, 8)
	block, err := des.NewCipher(key)
	if err != nil {
		failf(ErrKindAuth, "constructing MSLogon DES cipher: %v", err)
	}

	username := make([]byte, 256)
	copy(username, c.credUsername())
	password := make([]byte, 64)
	copy(password, c.credPassword())

	c.writeBytes(dhFieldBytes(myPub, 8))
	c.writeBytes(cbcEncryptNoPad(block, username))
	c.writeBytes(cbcEncryptNoPad(block, password))
	c.flush()
}

// mslogonPrivateExponent picks a random private exponent in [1, p-1].
func mslogonPrivateExponent(p *big.Int) *big.Int {
	bound := new(big.Int).Sub(p, big.NewInt(1))
	if bound.Sign() <= 0 {
		return big.NewInt(1)
	}
	v, err := rand.Int(rand.Reader, bound)
	if err != nil {
		failf(ErrKindAuth, "generating MSLogon private exponent: %v", err)
	}
	return v.Add(v, big.NewInt(1))
}

// dhFieldBytes renders v right-aligned into an n-byte big-endian field,
// matching the fixed-width (generator, modulus, public) wire fields DH
// auth uses.
func dhFieldBytes(v *big.Int, n int) []byte {
	out := make([]byte, n)
	b := v.Bytes()
	if len(b) > n {
		b = b[len(b)-n:]
	}
	copy(out[n-len(b):], b)
	return out
}

// cbcEncryptNoPad CBC-encrypts data (whose length must already be a
// multiple of block.BlockSize()) under a zero IV, chaining each 8-byte
// block into the next the way MSLogon's wire format requires.
func cbcEncryptNoPad(block cipher.Block, data []byte) []byte {
	out := make([]byte, len(data))
	iv := make([]byte, block.BlockSize())
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, data)
	return out
}
