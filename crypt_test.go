package mmkv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAESCryptRoundTrip(t *testing.T) {
	iv := deriveBaselineIV("test-key")
	enc, err := newAESCrypt("test-key", iv)
	assert.NoError(t, err)
	dec, err := newAESCrypt("test-key", iv)
	assert.NoError(t, err)

	plain := []byte("the quick brown fox jumps over the lazy dog, twice over")
	cipher := make([]byte, len(plain))
	enc.encrypt(cipher, plain)
	assert.NotEqual(t, plain, cipher)

	out := make([]byte, len(plain))
	dec.decrypt(out, cipher)
	assert.Equal(t, plain, out)
}

// TestAESCryptResumesAcrossCalls guards against the keystream-as-local-
// variable bug: splitting one logical stream across two crypt() calls must
// produce the same ciphertext as a single call, even when the split falls
// in the middle of a 16-byte CFB block.
func TestAESCryptResumesAcrossCalls(t *testing.T) {
	iv := deriveBaselineIV("split-key")
	whole, err := newAESCrypt("split-key", iv)
	assert.NoError(t, err)
	split, err := newAESCrypt("split-key", iv)
	assert.NoError(t, err)

	plain := make([]byte, 40)
	for i := range plain {
		plain[i] = byte(i)
	}

	wholeOut := make([]byte, len(plain))
	whole.encrypt(wholeOut, plain)

	splitOut := make([]byte, len(plain))
	split.encrypt(splitOut[:5], plain[:5])
	split.encrypt(splitOut[5:22], plain[5:22])
	split.encrypt(splitOut[22:], plain[22:])

	assert.Equal(t, wholeOut, splitOut)
}

func TestAESCryptSnapshotRestore(t *testing.T) {
	iv := deriveBaselineIV("snap-key")
	c, err := newAESCrypt("snap-key", iv)
	assert.NoError(t, err)

	prefix := make([]byte, 10)
	c.encrypt(prefix, prefix)
	status := c.getCurrentStatus()

	rest := []byte("value-after-snapshot")
	cipherRest := make([]byte, len(rest))
	c.encrypt(cipherRest, rest)

	plainRest := make([]byte, len(rest))
	withStatus(c, status, func(cursor *aesCrypt) {
		cursor.decrypt(plainRest, cipherRest)
	})
	assert.Equal(t, rest, plainRest)
}

func TestAESCryptWrongKeyDoesNotRoundTrip(t *testing.T) {
	iv := deriveBaselineIV("right-key")
	enc, err := newAESCrypt("right-key", iv)
	assert.NoError(t, err)
	wrongIV := deriveBaselineIV("wrong-key")
	dec, err := newAESCrypt("wrong-key", wrongIV)
	assert.NoError(t, err)

	plain := []byte("hello")
	cipher := make([]byte, len(plain))
	enc.encrypt(cipher, plain)

	out := make([]byte, len(plain))
	dec.decrypt(out, cipher)
	assert.NotEqual(t, plain, out)
}

func TestResetIVClearsKeystreamCache(t *testing.T) {
	iv := deriveBaselineIV("reset-key")
	c, err := newAESCrypt("reset-key", iv)
	assert.NoError(t, err)

	buf := make([]byte, 3)
	c.encrypt(buf, buf)
	assert.True(t, c.ksValid)

	c.resetIV(iv)
	assert.False(t, c.ksValid)
	assert.Equal(t, 0, c.pos)
}
