package mmkv

import "hash/crc32"

// crcTable is cached once so incremental updates (crc32.Update) don't
// regenerate the IEEE polynomial table on every call.
var crcTable = crc32.MakeTable(crc32.IEEE)

// crcOf computes the CRC32 (IEEE) of payload from scratch.
func crcOf(payload []byte) uint32 {
	return crc32.Checksum(payload, crcTable)
}

// crcAppend rolls digest forward over an appended byte run, avoiding a
// rescan of the whole payload on every append.
func crcAppend(digest uint32, appended []byte) uint32 {
	return crc32.Update(digest, crcTable, appended)
}
