package mmkv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVarintRoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 1, 127, 128, 300, 1 << 32, 1<<64 - 1} {
		buf := appendUvarint(nil, n)
		got, w, err := takeUvarint(buf)
		assert.NoError(t, err)
		assert.Equal(t, n, got)
		assert.Equal(t, len(buf), w)
	}
}

func TestTakeUvarintMalformed(t *testing.T) {
	_, _, err := takeUvarint(nil)
	assert.ErrorIs(t, err, errCodec)
}

func TestBytesAndStringRoundTrip(t *testing.T) {
	for _, v := range [][]byte{nil, {}, []byte("hello"), make([]byte, 300)} {
		enc := encodeBytes(v)
		got, ok := decodeBytes(enc)
		assert.True(t, ok)
		// decodeBytes always returns a non-nil slice, so nil comes back as []byte{}.
		assert.Equal(t, append([]byte{}, v...), got)
	}

	s := "the quick brown fox"
	got, ok := decodeString(encodeString(s))
	assert.True(t, ok)
	assert.Equal(t, s, got)
}

func TestStringSliceRoundTrip(t *testing.T) {
	cases := [][]string{nil, {}, {"a"}, {"a", "b", "c"}, {"", "nonempty", ""}}
	for _, v := range cases {
		enc := encodeStringSlice(v)
		got, ok := decodeStringSlice(enc)
		assert.True(t, ok)
		if len(v) == 0 {
			assert.Empty(t, got)
		} else {
			assert.Equal(t, v, got)
		}
	}
}

func TestBoolRoundTrip(t *testing.T) {
	for _, v := range []bool{true, false} {
		got, ok := decodeBool(encodeBool(v))
		assert.True(t, ok)
		assert.Equal(t, v, got)
	}
	_, ok := decodeBool([]byte{1, 2})
	assert.False(t, ok)
}

func TestZigzag(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 2147483647, -2147483648} {
		assert.Equal(t, v, zigzagDecode32(zigzagEncode32(v)))
	}
	for _, v := range []int64{0, 1, -1, 1 << 40, -(1 << 40)} {
		assert.Equal(t, v, zigzagDecode64(zigzagEncode64(v)))
	}
}

func TestScalarRoundTrip(t *testing.T) {
	i32, ok := decodeInt32(encodeInt32(-12345))
	assert.True(t, ok)
	assert.Equal(t, int32(-12345), i32)

	u32, ok := decodeUint32(encodeUint32(4000000000))
	assert.True(t, ok)
	assert.Equal(t, uint32(4000000000), u32)

	i64, ok := decodeInt64(encodeInt64(-1 << 40))
	assert.True(t, ok)
	assert.Equal(t, int64(-1<<40), i64)

	u64, ok := decodeUint64(encodeUint64(1 << 63))
	assert.True(t, ok)
	assert.Equal(t, uint64(1<<63), u64)

	f32, ok := decodeFloat32(encodeFloat32(3.14159))
	assert.True(t, ok)
	assert.InDelta(t, float32(3.14159), f32, 0.0001)

	f64, ok := decodeFloat64(encodeFloat64(2.718281828))
	assert.True(t, ok)
	assert.InDelta(t, 2.718281828, f64, 0.000000001)
}

func TestDecodeRejectsTrailingGarbage(t *testing.T) {
	enc := encodeInt32(42)
	_, ok := decodeInt32(append(enc, 0xFF))
	assert.False(t, ok)
}
