package gvnc

import (
	"context"
	"crypto/aes"
	"crypto/md5"
	"crypto/rand"
	"math/big"

	"github.com/jwendell/gvnc/internal/task"
)

// authARD performs Apple Remote Desktop authentication: Diffie-Hellman
// over a variable-length prime, with the shared secret MD5-hashed into
// an AES-128 key used to ECB-encrypt the credential block.
func (c *Client) authARD(ctx context.Context) {
	c.requestCredentials(CredentialUsername, CredentialPassword)
	if err := task.WaitFor(ctx, c.sig, c.shutdownCh, c.haveWantedCredentials); err != nil {
		failf(ErrKindAuth, "waiting for ARD credentials: %v", err)
	}
	c.clearWantedCredentials()

	keyLen := int(c.readU16())
	generator := new(big.Int).SetBytes(c.readN(keyLen))
	modulus := new(big.Int).SetBytes(c.readN(keyLen))
	serverPub := new(big.Int).SetBytes(c.readN(keyLen))

	priv := ardPrivateExponent(keyLen)
	myPub := new(big.Int).Exp(generator, priv, modulus)
	shared := new(big.Int).Exp(serverPub, priv, modulus)

	key := md5.Sum(dhFieldBytes(shared, keyLen))

	plaintext := make([]byte, 128)
	copy(plaintext[0:64], c.credUsername())
	copy(plaintext[64:128], c.credPassword())

	block, err := aes.NewCipher(key[:])
	if err != nil {
		failf(ErrKindAuth, "constructing ARD AES cipher: %v", err)
	}
	ciphertext := ecbEncrypt(block, plaintext)

	c.writeBytes(ciphertext)
	c.writeBytes(dhFieldBytes(myPub, keyLen))
	c.flush()
}

func ardPrivateExponent(keyLen int) *big.Int {
	buf := make([]byte, keyLen)
	if _, err := rand.Read(buf); err != nil {
		failf(ErrKindAuth, "generating ARD private exponent: %v", err)
	}
	v := new(big.Int).SetBytes(buf)
	if v.Sign() == 0 {
		v.SetInt64(1)
	}
	return v
}

// ecbEncrypt AES-ECB-encrypts data (whose length must be a multiple of
// the block size) one block at a time. Go's standard library
// deliberately omits an ECB cipher.BlockMode (it is almost always the
// wrong mode for new protocols), so this loop is the idiomatic way to get
// it for a legacy wire format that requires it.
func ecbEncrypt(block interface {
	BlockSize() int
	Encrypt(dst, src []byte)
}, data []byte) []byte {
	bs := block.BlockSize()
	out := make([]byte, len(data))
	for i := 0; i+bs <= len(data); i += bs {
		block.Encrypt(out[i:i+bs], data[i:i+bs])
	}
	return out
}
