package gvnc

import (
	"crypto/aes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArdPrivateExponentNonZero(t *testing.T) {
	for i := 0; i < 20; i++ {
		v := ardPrivateExponent(16)
		assert.True(t, v.Sign() > 0)
	}
}

func TestEcbEncryptIsBlockIndependent(t *testing.T) {
	key := make([]byte, 16)
	copy(key, "0123456789abcdef")
	block, err := aes.NewCipher(key)
	require.NoError(t, err)

	plaintext := make([]byte, 32)
	copy(plaintext[0:16], "aaaaaaaaaaaaaaaa")
	copy(plaintext[16:32], "aaaaaaaaaaaaaaaa")
	out := ecbEncrypt(block, plaintext)
	require.Len(t, out, 32)
	// identical plaintext blocks encrypt to identical ciphertext blocks
	// under ECB, unlike CBC/CTR.
	assert.Equal(t, out[0:16], out[16:32])
}

func TestEcbEncryptDropsIncompleteTrailingBlock(t *testing.T) {
	key := make([]byte, 16)
	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	out := ecbEncrypt(block, make([]byte, 20))
	assert.Len(t, out, 20)
	assert.Equal(t, make([]byte, 4), out[16:20])
}
