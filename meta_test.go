package mmkv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetaInfoRoundTrip(t *testing.T) {
	buf := make([]byte, metaInfoSize)
	m := metaInfo{
		crcDigest:  0xDEADBEEF,
		actualSize: 1024,
		version:    currentVersion,
		sequence:   3,
	}
	copy(m.vector[:], "0123456789abcdef")

	writeMetaInfo(buf, &m, keepSequence)
	assert.Equal(t, uint32(3), m.sequence)

	got := readMetaInfo(buf)
	assert.Equal(t, m, got)
}

func TestWriteMetaInfoIncreasesSequence(t *testing.T) {
	buf := make([]byte, metaInfoSize)
	m := metaInfo{sequence: 5}

	writeMetaInfo(buf, &m, increaseSequence)
	assert.Equal(t, uint32(6), m.sequence)

	got := readMetaInfo(buf)
	assert.Equal(t, uint32(6), got.sequence)
}

func TestReadMetaInfoOnShortBuffer(t *testing.T) {
	got := readMetaInfo(make([]byte, 4))
	assert.Equal(t, metaInfo{}, got)
}
