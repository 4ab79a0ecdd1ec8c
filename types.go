package mmkv

import "sync"

// dataHeaderSize is the 4-byte little-endian "actualSize" prefix at offset 0
// of the data file.
const dataHeaderSize = 4

// DB is one open store instance: a memory-mapped data file, its ".crc" meta
// sibling, the in-memory index projecting the log into a key->value map,
// and the locks serializing access to all of it.
type DB struct {
	mmapID       string
	mmapKey      string
	relativePath string
	mode         Mode
	readOnly     bool

	file     *memoryFile
	metaFile *memoryFile
	procLock *interProcessLock

	// mu is the re-entrant-by-convention instance lock: exported methods
	// acquire it and call unexported *Locked helpers that assume it is
	// already held.
	mu sync.Mutex

	idx              index
	meta             metaInfo
	actualSize       uint32
	crcDigest        uint32
	needLoadFromFile bool
	hasFullWriteback bool
	closed           bool

	crypter     *aesCrypt
	cryptKeyStr string

	errorHandler ErrorHandler
}
