package mmkv

import (
	"crypto/aes"
	"crypto/md5"
)

// aesCryptStatus is a snapshot of an aesCrypt's keystream position: the
// feedback register the current keystream block was (or will be) derived
// from, the ciphertext bytes already produced for that in-flight block, and
// how many of them. Restoring a status lets a point lookup resume the CFB
// stream at the byte immediately preceding a value without re-deriving the
// keystream from the start of the payload.
type aesCryptStatus struct {
	ivReg    [ivSize]byte
	feedback [ivSize]byte
	pos      int
}

// aesCrypt implements AES-128 in CFB-128 mode with the feedback register
// exposed so its position can be snapshotted and restored mid-stream.
// crypto/cipher's stock cipher.StreamReader/Writer wrappers (NewCFBEncrypter/
// NewCFBDecrypter) don't expose this, which is exactly why this type talks
// to crypto/aes's raw block cipher directly instead of going through them --
// see DESIGN.md for why no pack dependency covers this need either.
type aesCrypt struct {
	key   [ivSize]byte
	block cipherBlock

	aesCryptStatus
	ks      [ivSize]byte // keystream for the in-flight block, AES_encrypt(ivReg)
	ksValid bool
}

// cipherBlock is the minimal surface of cipher.Block this package needs:
// CFB only ever runs the block cipher in the encrypt direction.
type cipherBlock interface {
	Encrypt(dst, src []byte)
}

// deriveKey normalizes an arbitrary-length crypt key into the 16 bytes
// AES-128 requires: truncate long keys, zero-pad short ones.
func deriveKey(cryptKey string) [ivSize]byte {
	var key [ivSize]byte
	copy(key[:], cryptKey)
	return key
}

// deriveBaselineIV derives the version-1 IV from the crypt key when no
// random vector has been stored yet.
func deriveBaselineIV(cryptKey string) [ivSize]byte {
	return md5.Sum([]byte(cryptKey))
}

func newAESCrypt(cryptKey string, iv [ivSize]byte) (*aesCrypt, error) {
	key := deriveKey(cryptKey)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	c := &aesCrypt{key: key, block: block}
	c.resetIV(iv)
	return c, nil
}

// resetIV restarts the stream from iv with the keystream position cleared.
func (c *aesCrypt) resetIV(iv [ivSize]byte) {
	c.ivReg = iv
	c.pos = 0
	c.feedback = [ivSize]byte{}
	c.ksValid = false
}

// getKey returns the raw (post-derivation) key, used by checkReSetCryptKey
// to decide whether a rotation actually changes the key.
func (c *aesCrypt) getKey() [ivSize]byte {
	return c.key
}

// getCurrentStatus snapshots the keystream position for later restoration
// via restoreStatus.
func (c *aesCrypt) getCurrentStatus() aesCryptStatus {
	return c.aesCryptStatus
}

// restoreStatus rewinds/fast-forwards the stream to a previously captured
// position without touching the key or block cipher. The cached keystream
// block is invalidated since it's only valid for the byte range it was
// computed alongside.
func (c *aesCrypt) restoreStatus(s aesCryptStatus) {
	c.aesCryptStatus = s
	c.ksValid = false
}

// withStatus runs fn against a temporary cursor positioned at s, leaving c's
// own position untouched. Used by point lookups: restore the snapshot taken
// at the start of a value, decrypt just that value, and discard the cursor.
func withStatus(c *aesCrypt, s aesCryptStatus, fn func(cursor *aesCrypt)) {
	cursor := &aesCrypt{key: c.key, block: c.block, aesCryptStatus: s}
	fn(cursor)
}

// crypt runs CFB-128 over src into dst (same buffer allowed), encrypting or
// decrypting depending on which byte -- plaintext or ciphertext -- is fed
// back into the register: CFB's feedback is always the ciphertext byte, so
// encrypt and decrypt share this loop and differ only in which operand
// becomes the feedback byte.
func (c *aesCrypt) crypt(dst, src []byte, encrypt bool) {
	for i, in := range src {
		if !c.ksValid {
			c.block.Encrypt(c.ks[:], c.ivReg[:])
			c.ksValid = true
		}
		ks := c.ks[c.pos]
		var cipherByte byte
		if encrypt {
			dst[i] = in ^ ks
			cipherByte = dst[i]
		} else {
			dst[i] = in ^ ks
			cipherByte = in
		}
		c.feedback[c.pos] = cipherByte
		c.pos++
		if c.pos == ivSize {
			c.ivReg = c.feedback
			c.pos = 0
			c.feedback = [ivSize]byte{}
			c.ksValid = false
		}
	}
}

func (c *aesCrypt) encrypt(dst, src []byte) { c.crypt(dst, src, true) }
func (c *aesCrypt) decrypt(dst, src []byte) { c.crypt(dst, src, false) }
