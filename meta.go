package mmkv

import "encoding/binary"

// Version identifies the on-disk format generation stored in MetaInfo.
// Later versions must stay backwards-readable.
type Version uint32

const (
	versionBaseline Version = 1 // IV derived from the crypt key
	versionRandomIV Version = 2 // IV taken from meta.vector, regenerated each compaction
)

const currentVersion = versionRandomIV

// sequencePolicy selects whether writing a MetaInfo bumps the cross-process
// sequence counter.
type sequencePolicy int

const (
	keepSequence sequencePolicy = iota
	increaseSequence
)

// metaInfoSize is the fixed layout size: crcDigest(4) + actualSize(4) +
// version(4) + sequence(4) + iv[16] + vector[16].
const metaInfoSize = 4 + 4 + 4 + 4 + 16 + 16

const ivSize = 16

// metaInfo is the fixed-offset header persisted in the ".crc" sibling file.
// All fields are little-endian.
type metaInfo struct {
	crcDigest  uint32
	actualSize uint32
	version    Version
	sequence   uint32
	iv         [ivSize]byte // persisted as-is; baseline-version stores derive their IV from the crypt key instead
	vector     [ivSize]byte // random IV used when version >= versionRandomIV
}

// readMetaInfo deserializes a metaInfo from the first metaInfoSize bytes of
// the mapped meta file. It never errors on short/zeroed mappings -- a fresh
// meta file reads as the zero value, which load treats as "nothing written yet".
func readMetaInfo(data []byte) metaInfo {
	var m metaInfo
	if len(data) < metaInfoSize {
		return m
	}
	m.crcDigest = binary.LittleEndian.Uint32(data[0:4])
	m.actualSize = binary.LittleEndian.Uint32(data[4:8])
	m.version = Version(binary.LittleEndian.Uint32(data[8:12]))
	m.sequence = binary.LittleEndian.Uint32(data[12:16])
	copy(m.iv[:], data[16:32])
	copy(m.vector[:], data[32:48])
	return m
}

// writeMetaInfo serializes m into the first metaInfoSize bytes of data.
// When policy is increaseSequence, sequence is incremented before writing --
// this is the signal peer processes use to detect a write-back and reload.
func writeMetaInfo(data []byte, m *metaInfo, policy sequencePolicy) {
	if policy == increaseSequence {
		m.sequence++
	}
	binary.LittleEndian.PutUint32(data[0:4], m.crcDigest)
	binary.LittleEndian.PutUint32(data[4:8], m.actualSize)
	binary.LittleEndian.PutUint32(data[8:12], uint32(m.version))
	binary.LittleEndian.PutUint32(data[12:16], m.sequence)
	copy(data[16:32], m.iv[:])
	copy(data[32:48], m.vector[:])
}
