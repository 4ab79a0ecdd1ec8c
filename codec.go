package mmkv

import (
	"encoding/binary"
	"errors"
	"math"
)

// errCodec is returned by takeUvarint on a malformed buffer. The typed
// decode helpers report a malformed value as ok == false, and the Get
// methods then return the caller's default; the failure is not logged.
var errCodec = errors.New("mmkv: malformed encoded value")

// appendUvarint appends n as an unsigned LEB128 varint.
func appendUvarint(buf []byte, n uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	w := binary.PutUvarint(tmp[:], n)
	return append(buf, tmp[:w]...)
}

// takeUvarint reads a varint-prefixed length from data, returning the
// decoded value and the number of bytes consumed.
func takeUvarint(data []byte) (uint64, int, error) {
	n, w := binary.Uvarint(data)
	if w <= 0 {
		return 0, 0, errCodec
	}
	return n, w, nil
}

// encodeBytes encodes a length-prefixed byte run: varint(len) || bytes.
func encodeBytes(v []byte) []byte {
	buf := appendUvarint(make([]byte, 0, binary.MaxVarintLen64+len(v)), uint64(len(v)))
	return append(buf, v...)
}

// decodeBytes decodes a length-prefixed byte run, returning the value and
// whether data held a well-formed encoding.
func decodeBytes(data []byte) ([]byte, bool) {
	n, w, err := takeUvarint(data)
	if err != nil {
		return nil, false
	}
	if uint64(w)+n > uint64(len(data)) {
		return nil, false
	}
	return data[w : uint64(w)+n], true
}

// encodeString is an alias for encodeBytes over the string's bytes; kept
// separate so call sites read as what they encode.
func encodeString(v string) []byte {
	return encodeBytes([]byte(v))
}

func decodeString(data []byte) (string, bool) {
	b, ok := decodeBytes(data)
	if !ok {
		return "", false
	}
	return string(b), true
}

// encodeStringSlice encodes a list of strings as varint(count) followed by
// each entry length-prefixed.
func encodeStringSlice(v []string) []byte {
	buf := appendUvarint(nil, uint64(len(v)))
	for _, s := range v {
		buf = append(buf, encodeString(s)...)
	}
	return buf
}

func decodeStringSlice(data []byte) ([]string, bool) {
	count, w, err := takeUvarint(data)
	if err != nil {
		return nil, false
	}
	data = data[w:]
	out := make([]string, 0, count)
	for i := uint64(0); i < count; i++ {
		n, w2, err := takeUvarint(data)
		if err != nil || uint64(w2)+n > uint64(len(data)) {
			return nil, false
		}
		out = append(out, string(data[w2:uint64(w2)+n]))
		data = data[uint64(w2)+n:]
	}
	return out, true
}

func encodeBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

func decodeBool(data []byte) (bool, bool) {
	if len(data) != 1 {
		return false, false
	}
	return data[0] != 0, true
}

// zigzag encodes a signed integer so small-magnitude negative values still
// varint-encode compactly, the same trick protobuf's sint32/sint64 use.
func zigzagEncode32(v int32) uint32 { return uint32((v << 1) ^ (v >> 31)) }
func zigzagDecode32(v uint32) int32 { return int32(v>>1) ^ -int32(v&1) }
func zigzagEncode64(v int64) uint64 { return uint64((v << 1) ^ (v >> 63)) }
func zigzagDecode64(v uint64) int64 { return int64(v>>1) ^ -int64(v&1) }

func encodeInt32(v int32) []byte  { return appendUvarint(nil, uint64(zigzagEncode32(v))) }
func encodeUint32(v uint32) []byte { return appendUvarint(nil, uint64(v)) }
func encodeInt64(v int64) []byte  { return appendUvarint(nil, zigzagEncode64(v)) }
func encodeUint64(v uint64) []byte { return appendUvarint(nil, v) }

func decodeInt32(data []byte) (int32, bool) {
	n, w, err := takeUvarint(data)
	if err != nil || w != len(data) {
		return 0, false
	}
	return zigzagDecode32(uint32(n)), true
}

func decodeUint32(data []byte) (uint32, bool) {
	n, w, err := takeUvarint(data)
	if err != nil || w != len(data) {
		return 0, false
	}
	return uint32(n), true
}

func decodeInt64(data []byte) (int64, bool) {
	n, w, err := takeUvarint(data)
	if err != nil || w != len(data) {
		return 0, false
	}
	return zigzagDecode64(n), true
}

func decodeUint64(data []byte) (uint64, bool) {
	n, w, err := takeUvarint(data)
	if err != nil || w != len(data) {
		return 0, false
	}
	return n, true
}

func encodeFloat32(v float32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
	return buf
}

func decodeFloat32(data []byte) (float32, bool) {
	if len(data) != 4 {
		return 0, false
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(data)), true
}

func encodeFloat64(v float64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
	return buf
}

func decodeFloat64(data []byte) (float64, bool) {
	if len(data) != 8 {
		return 0, false
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(data)), true
}
