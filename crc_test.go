package mmkv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrcAppendMatchesWholeBuffer(t *testing.T) {
	a := []byte("the quick brown fox jumps over the lazy dog")
	b := []byte(" and then trots home again")

	whole := crcOf(append(append([]byte(nil), a...), b...))
	incremental := crcAppend(crcOf(a), b)

	assert.Equal(t, whole, incremental)
}

func TestCrcDetectsTampering(t *testing.T) {
	payload := []byte("settings-payload")
	digest := crcOf(payload)

	tampered := append([]byte(nil), payload...)
	tampered[0] ^= 0xFF

	assert.NotEqual(t, digest, crcOf(tampered))
}
