package mmkv

import (
	"crypto/rand"
	"fmt"
)

// buildRecord encodes a single log record: varint(keyLen) || key ||
// varint(valLen) || value. valueOffset is
// where value begins within the returned slice, used to split the
// encrypt-in-place call at the value boundary so the index can snapshot
// the cipher state right before it.
func buildRecord(key string, value []byte) (record []byte, valueOffset int) {
	head := appendUvarint(nil, uint64(len(key)))
	head = append(head, key...)
	head = appendUvarint(head, uint64(len(value)))
	valueOffset = len(head)
	record = append(head, value...)
	return record, valueOffset
}

// decryptValue decrypts length bytes at db.file.data[offset:offset+length]
// using a cursor restored from status, leaving db.crypter's own position
// untouched.
func (db *DB) decryptValue(offset, length int64, status *aesCryptStatus) []byte {
	out := make([]byte, length)
	withStatus(db.crypter, *status, func(cursor *aesCrypt) {
		cursor.decrypt(out, db.file.data[offset:offset+length])
	})
	return out
}

// getDataForKeyLocked resolves key in the index and returns its decoded
// value bytes. Caller must hold db.mu and have already called checkLoadData.
func (db *DB) getDataForKeyLocked(key string) ([]byte, bool) {
	h, ok := db.idx[key]
	if !ok {
		return nil, false
	}
	if db.crypter != nil {
		return db.decryptValue(h.offset, h.length, h.cryptStatus), true
	}
	return db.file.data[h.offset : h.offset+h.length], true
}

// invokeErrorHandler consults the per-store or process-wide error handler;
// Discard is the default when none is registered.
func (db *DB) invokeErrorHandler(kind ErrorType) RecoverStrategy {
	h := db.errorHandler
	if h == nil {
		h = currentErrorHandler()
	}
	if h == nil {
		return Discard
	}
	return h(db.mmapID, kind)
}

// resetToEmptyLocked truncates the in-memory view of the log to empty and
// persists a fresh, consistent meta entry. Used by the Discard recovery
// paths of loadFromFile.
func (db *DB) resetToEmptyLocked() {
	db.idx = make(index)
	db.actualSize = 0
	db.crcDigest = 0
	binaryPutUint32(db.file.data[0:dataHeaderSize], 0)
	db.meta.actualSize = 0
	db.meta.crcDigest = 0
	if db.crypter != nil {
		var iv [ivSize]byte
		if db.meta.version >= versionRandomIV {
			if _, err := rand.Read(iv[:]); err != nil {
				iv = deriveBaselineIV(db.cryptKeyStr)
			}
			db.meta.vector = iv
		} else {
			iv = deriveBaselineIV(db.cryptKeyStr)
		}
		db.crypter.resetIV(iv)
	}
	db.writeMetaLocked(increaseSequence)
}

// writeMetaLocked serializes db.meta into the mapped meta file and, when
// policy bumps the sequence, that bump is what peer processes observe via
// checkLoadData.
func (db *DB) writeMetaLocked(policy sequencePolicy) {
	db.meta.actualSize = db.actualSize
	db.meta.crcDigest = db.crcDigest
	writeMetaInfo(db.metaFile.data[:metaInfoSize], &db.meta, policy)
}

func binaryPutUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func binaryUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// loadFromFile rebuilds db.idx from the data file under the shared
// inter-process lock. Caller must hold db.mu.
func (db *DB) loadFromFile() error {
	if err := db.procLock.lockShared(); err != nil {
		return fmt.Errorf("mmkv: acquire shared lock: %w", err)
	}
	defer db.procLock.unlockShared()

	if err := db.file.ensureMapped(); err != nil {
		return err
	}
	if err := db.metaFile.ensureMapped(); err != nil {
		return err
	}
	if !db.file.isFileValid() {
		return ErrFileInvalid
	}

	db.meta = readMetaInfo(db.metaFile.data[:min(len(db.metaFile.data), metaInfoSize)])
	freshMeta := db.meta.version == 0 && db.meta.sequence == 0 && db.meta.actualSize == 0 && db.meta.crcDigest == 0
	if freshMeta {
		db.meta.version = currentVersion
	}

	if db.cryptKeyStr != "" {
		var iv [ivSize]byte
		if db.meta.version >= versionRandomIV {
			if freshMeta {
				if _, err := rand.Read(iv[:]); err != nil {
					iv = deriveBaselineIV(db.cryptKeyStr)
				}
				db.meta.vector = iv
			} else {
				iv = db.meta.vector
			}
		} else {
			iv = deriveBaselineIV(db.cryptKeyStr)
		}
		crypter, err := newAESCrypt(db.cryptKeyStr, iv)
		if err != nil {
			return fmt.Errorf("mmkv: init crypt: %w", err)
		}
		db.crypter = crypter
	}

	if len(db.file.data) < dataHeaderSize {
		db.idx = make(index)
		db.actualSize = 0
		db.crcDigest = 0
		db.needLoadFromFile = false
		return nil
	}

	actualSize := binaryUint32(db.file.data[0:dataHeaderSize])

	if dataHeaderSize+int64(actualSize) > db.file.size() {
		strategy := db.invokeErrorHandler(ErrorTypeFileLength)
		logError("mmkv[%s]: file length error (actualSize=%d fileSize=%d)", db.mmapID, actualSize, db.file.size())
		if strategy == Discard {
			db.resetToEmptyLocked()
			db.needLoadFromFile = false
			return nil
		}
		actualSize = uint32(db.file.size() - dataHeaderSize)
	}

	payload := db.file.data[dataHeaderSize : dataHeaderSize+int64(actualSize)]
	crc := crcOf(payload)
	if crc != db.meta.crcDigest {
		strategy := db.invokeErrorHandler(ErrorTypeCRCCheckFail)
		logError("mmkv[%s]: crc mismatch (have %d want %d)", db.mmapID, crc, db.meta.crcDigest)
		if strategy == Discard {
			db.resetToEmptyLocked()
			db.needLoadFromFile = false
			return nil
		}
		// KeepSameAsOldStrategy: best-effort parse, then adopt the computed
		// digest as ground truth for subsequent appends.
	}

	var idx index
	var err error
	if db.crypter != nil {
		idx, err = db.parseCryptPayload(payload)
	} else {
		idx, err = parsePlainPayload(payload)
	}
	if err != nil {
		logWarning("mmkv[%s]: partial parse: %v", db.mmapID, err)
	}

	db.idx = idx
	db.actualSize = actualSize
	db.crcDigest = crcOf(payload)
	db.needLoadFromFile = false
	if freshMeta {
		db.writeMetaLocked(keepSequence)
	}
	return nil
}

// parsePlainPayload walks an unencrypted payload building the index.
func parsePlainPayload(payload []byte) (index, error) {
	idx := make(index)
	pos := 0
	for pos < len(payload) {
		keyLen, w1, err := takeUvarint(payload[pos:])
		if err != nil {
			return idx, fmt.Errorf("corrupt record at %d: %w", pos, err)
		}
		pos += w1
		if pos+int(keyLen) > len(payload) {
			return idx, fmt.Errorf("corrupt key at %d", pos)
		}
		key := string(payload[pos : pos+int(keyLen)])
		pos += int(keyLen)

		valLen, w2, err := takeUvarint(payload[pos:])
		if err != nil {
			return idx, fmt.Errorf("corrupt record at %d: %w", pos, err)
		}
		pos += w2
		valueStart := pos
		if pos+int(valLen) > len(payload) {
			return idx, fmt.Errorf("corrupt value at %d", pos)
		}
		pos += int(valLen)

		if valLen == 0 {
			delete(idx, key)
		} else {
			idx[key] = &keyValueHolder{offset: int64(dataHeaderSize + valueStart), length: int64(valLen)}
		}
	}
	return idx, nil
}

// parseCryptPayload walks an encrypted payload, decrypting byte-by-byte as
// needed to parse variable-length headers, and advances db.crypter across
// the whole payload so its ending position is ready for the next append.
func (db *DB) parseCryptPayload(payload []byte) (index, error) {
	idx := make(index)
	pos := 0
	readVarintByte := func() (byte, error) {
		if pos >= len(payload) {
			return 0, fmt.Errorf("truncated varint at %d", pos)
		}
		var b [1]byte
		db.crypter.decrypt(b[:], payload[pos:pos+1])
		pos++
		return b[0], nil
	}
	readVarint := func() (uint64, error) {
		var buf []byte
		for {
			b, err := readVarintByte()
			if err != nil {
				return 0, err
			}
			buf = append(buf, b)
			if b < 0x80 {
				break
			}
		}
		v, _, err := takeUvarint(buf)
		return v, err
	}

	for pos < len(payload) {
		start := pos
		keyLen, err := readVarint()
		if err != nil {
			return idx, fmt.Errorf("corrupt record at %d: %w", start, err)
		}
		if pos+int(keyLen) > len(payload) {
			return idx, fmt.Errorf("corrupt key at %d", pos)
		}
		keyBuf := make([]byte, keyLen)
		db.crypter.decrypt(keyBuf, payload[pos:pos+int(keyLen)])
		pos += int(keyLen)
		key := string(keyBuf)

		valLen, err := readVarint()
		if err != nil {
			return idx, fmt.Errorf("corrupt record at %d: %w", start, err)
		}
		snap := db.crypter.getCurrentStatus()
		valueStart := pos
		if pos+int(valLen) > len(payload) {
			return idx, fmt.Errorf("corrupt value at %d", pos)
		}
		if valLen > 0 {
			discard := make([]byte, valLen)
			db.crypter.decrypt(discard, payload[pos:pos+int(valLen)])
		}
		pos += int(valLen)

		if valLen == 0 {
			delete(idx, key)
		} else {
			idx[key] = &keyValueHolder{
				offset:      int64(dataHeaderSize + valueStart),
				length:      int64(valLen),
				cryptStatus: &snap,
			}
		}
	}
	return idx, nil
}

// checkLoadData is the cheap cross-process freshness check:
// peek the meta file's sequence, actual size and CRC digest and reload only
// if any of them moved.
func (db *DB) checkLoadData() error {
	if db.closed {
		return ErrClosed
	}
	if db.needLoadFromFile {
		return db.loadFromFile()
	}
	if err := db.procLock.lockShared(); err != nil {
		return err
	}
	if err := db.metaFile.ensureMapped(); err != nil {
		db.procLock.unlockShared()
		return err
	}
	crc := binaryUint32(db.metaFile.data[0:4])
	size := binaryUint32(db.metaFile.data[4:8])
	seq := binaryUint32(db.metaFile.data[12:16])
	db.procLock.unlockShared()

	if seq == db.meta.sequence && size == db.meta.actualSize && crc == db.meta.crcDigest {
		return nil
	}
	db.clearMemoryCacheLocked()
	if err := db.loadFromFile(); err != nil {
		return err
	}
	notifyContentChanged(db.mmapID)
	return nil
}

// clearMemoryCacheLocked drops the in-memory view; the next checkLoadData
// or access remaps and reloads.
func (db *DB) clearMemoryCacheLocked() {
	if db.needLoadFromFile {
		return
	}
	db.needLoadFromFile = true
	db.idx = nil
	db.hasFullWriteback = false
	if db.crypter != nil {
		if db.meta.version >= versionRandomIV {
			db.crypter.resetIV(db.meta.vector)
		} else {
			db.crypter.resetIV(deriveBaselineIV(db.cryptKeyStr))
		}
	}
	db.file.clearMemoryCache()
	db.actualSize = 0
	db.crcDigest = 0
}

// ensureCapacityLocked makes sure the data file can hold an additional
// recordLen bytes, running a full write-back first and growing the file
// geometrically only if compaction alone isn't enough.
func (db *DB) ensureCapacityLocked(recordLen int) error {
	needed := dataHeaderSize + int64(db.actualSize) + int64(recordLen)
	if needed <= db.file.size() {
		return nil
	}
	if !db.hasFullWriteback {
		if err := db.fullWritebackLocked(db.crypter); err != nil {
			return err
		}
	}
	needed = dataHeaderSize + int64(db.actualSize) + int64(recordLen)
	if needed <= db.file.size() {
		return nil
	}
	return db.expandFileLocked(needed)
}

func (db *DB) expandFileLocked(minSize int64) error {
	size := db.file.size()
	if size == 0 {
		size = int64(defaultMmapSize())
	}
	for size < minSize {
		size *= 2
	}
	return db.file.truncate(size)
}

// setDataForKeyLocked is the append path. Caller holds db.mu.
func (db *DB) setDataForKeyLocked(value []byte, key string) bool {
	if key == "" {
		return false
	}
	if db.readOnly {
		return false
	}
	if err := db.checkLoadData(); err != nil {
		logError("mmkv[%s]: checkLoadData: %v", db.mmapID, err)
		return false
	}
	if err := db.procLock.lockExclusive(); err != nil {
		logError("mmkv[%s]: lock exclusive: %v", db.mmapID, err)
		return false
	}
	defer db.procLock.unlockExclusive()

	record, valueOffset := buildRecord(key, value)
	if err := db.ensureCapacityLocked(len(record)); err != nil {
		logError("mmkv[%s]: grow: %v", db.mmapID, err)
		return false
	}

	appendAt := dataHeaderSize + int64(db.actualSize)
	dst := db.file.data[appendAt : appendAt+int64(len(record))]

	var snap *aesCryptStatus
	if db.crypter != nil {
		db.crypter.encrypt(dst[:valueOffset], record[:valueOffset])
		s := db.crypter.getCurrentStatus()
		snap = &s
		db.crypter.encrypt(dst[valueOffset:], record[valueOffset:])
	} else {
		copy(dst, record)
	}

	// A public Set always encodes a value of at least one byte (the codec's
	// own length/tag prefix), so the outer record's value length is never
	// zero here; zero-length is reserved for the tombstone written by Remove.
	db.idx[key] = &keyValueHolder{
		offset:      appendAt + int64(valueOffset),
		length:      int64(len(value)),
		cryptStatus: snap,
	}

	db.actualSize += uint32(len(record))
	db.crcDigest = crcAppend(db.crcDigest, dst)
	binaryPutUint32(db.file.data[0:dataHeaderSize], db.actualSize)
	db.writeMetaLocked(keepSequence)
	db.hasFullWriteback = false
	return true
}

// removeValueForKeyLocked appends a tombstone and drops the index entry.
func (db *DB) removeValueForKeyLocked(key string) {
	if key == "" {
		return
	}
	if db.readOnly {
		return
	}
	if err := db.checkLoadData(); err != nil {
		logError("mmkv[%s]: checkLoadData: %v", db.mmapID, err)
		return
	}
	if _, ok := db.idx[key]; !ok {
		return
	}
	if err := db.procLock.lockExclusive(); err != nil {
		return
	}
	defer db.procLock.unlockExclusive()

	record, _ := buildRecord(key, nil)
	if err := db.ensureCapacityLocked(len(record)); err != nil {
		logError("mmkv[%s]: grow: %v", db.mmapID, err)
		return
	}
	appendAt := dataHeaderSize + int64(db.actualSize)
	dst := db.file.data[appendAt : appendAt+int64(len(record))]
	if db.crypter != nil {
		db.crypter.encrypt(dst, record)
	} else {
		copy(dst, record)
	}
	delete(db.idx, key)
	db.actualSize += uint32(len(record))
	db.crcDigest = crcAppend(db.crcDigest, dst)
	binaryPutUint32(db.file.data[0:dataHeaderSize], db.actualSize)
	db.writeMetaLocked(keepSequence)
	db.hasFullWriteback = false
}

// removeValuesForKeysLocked batch-removes N>=2 keys by erasing them from the
// index and forcing an immediate full write-back rather than appending N
// tombstones.
func (db *DB) removeValuesForKeysLocked(keys []string) {
	if len(keys) == 0 {
		return
	}
	if len(keys) == 1 {
		db.removeValueForKeyLocked(keys[0])
		return
	}
	if db.readOnly {
		return
	}
	if err := db.checkLoadData(); err != nil {
		return
	}
	deleted := 0
	for _, k := range keys {
		if _, ok := db.idx[k]; ok {
			delete(db.idx, k)
			deleted++
		}
	}
	if deleted > 0 {
		db.hasFullWriteback = false
		if err := db.fullWritebackLocked(db.crypter); err != nil {
			logError("mmkv[%s]: full write-back: %v", db.mmapID, err)
		}
	}
}

// fullWritebackLocked is compaction: rebuild the payload from
// the live index alone, discarding shadowed records and tombstones, and
// bump the meta sequence so peers reload.
//
// readCrypter decrypts the CURRENT on-disk bytes referenced by db.idx's
// holders and is ordinarily db.crypter itself. checkReSetCryptKeyLocked is
// the one caller where it differs: it already swapped db.crypter to the new
// key before calling in, so it passes the old crypter (or nil) here so old
// bytes are read back with the key that actually produced them.
func (db *DB) fullWritebackLocked(readCrypter *aesCrypt) error {
	if db.hasFullWriteback {
		return nil
	}
	if err := db.procLock.lockExclusive(); err != nil {
		return err
	}
	defer db.procLock.unlockExclusive()

	var newIV [ivSize]byte
	if db.crypter != nil {
		if db.meta.version >= versionRandomIV {
			if _, err := rand.Read(newIV[:]); err != nil {
				return fmt.Errorf("mmkv: generate iv: %w", err)
			}
		} else {
			newIV = deriveBaselineIV(db.cryptKeyStr)
		}
		db.crypter.resetIV(newIV)
	}

	newIdx := make(index, len(db.idx))
	var buf []byte
	for key, h := range db.idx {
		var value []byte
		if readCrypter != nil && h.cryptStatus != nil {
			out := make([]byte, h.length)
			withStatus(readCrypter, *h.cryptStatus, func(cursor *aesCrypt) {
				cursor.decrypt(out, db.file.data[h.offset:h.offset+h.length])
			})
			value = out
		} else {
			value = append([]byte(nil), db.file.data[h.offset:h.offset+h.length]...)
		}
		record, valueOffset := buildRecord(key, value)

		appendAt := len(buf)
		buf = append(buf, record...)

		if db.crypter != nil {
			dst := buf[appendAt:]
			db.crypter.encrypt(dst[:valueOffset], dst[:valueOffset])
			s := db.crypter.getCurrentStatus()
			db.crypter.encrypt(dst[valueOffset:], dst[valueOffset:])
			newIdx[key] = &keyValueHolder{offset: int64(appendAt + valueOffset), length: int64(len(value)), cryptStatus: &s}
		} else {
			newIdx[key] = &keyValueHolder{offset: int64(appendAt + valueOffset), length: int64(len(value))}
		}
	}

	needed := dataHeaderSize + int64(len(buf))
	if needed > db.file.size() {
		if err := db.expandFileLocked(needed); err != nil {
			return err
		}
	}

	copy(db.file.data[dataHeaderSize:dataHeaderSize+int64(len(buf))], buf)
	// absolute offsets: newIdx offsets above are relative to buf; translate once copied.
	for _, h := range newIdx {
		h.offset += dataHeaderSize
	}

	db.idx = newIdx
	db.actualSize = uint32(len(buf))
	db.crcDigest = crcOf(buf)
	binaryPutUint32(db.file.data[0:dataHeaderSize], db.actualSize)
	if db.crypter != nil {
		db.meta.vector = newIV
	}
	db.writeMetaLocked(increaseSequence)
	db.hasFullWriteback = true
	return nil
}

// checkReSetCryptKeyLocked implements the four key-rotation transitions:
// plain->crypt, crypt->plain, crypt->crypt with a new key, and the no-op
// same-key case.
func (db *DB) checkReSetCryptKeyLocked(newKey string) error {
	if err := db.checkLoadData(); err != nil {
		return err
	}
	oldCrypter := db.crypter
	switch {
	case db.crypter != nil && newKey != "":
		if db.cryptKeyStr == newKey {
			return nil
		}
		iv := deriveBaselineIV(newKey)
		crypter, err := newAESCrypt(newKey, iv)
		if err != nil {
			return err
		}
		db.cryptKeyStr = newKey
		db.crypter = crypter
		db.hasFullWriteback = false
		return db.fullWritebackLocked(oldCrypter)
	case db.crypter != nil && newKey == "":
		db.crypter = nil
		db.cryptKeyStr = ""
		db.hasFullWriteback = false
		return db.fullWritebackLocked(oldCrypter)
	case db.crypter == nil && newKey != "":
		iv := deriveBaselineIV(newKey)
		crypter, err := newAESCrypt(newKey, iv)
		if err != nil {
			return err
		}
		db.cryptKeyStr = newKey
		db.crypter = crypter
		db.hasFullWriteback = false
		return db.fullWritebackLocked(oldCrypter)
	default:
		return nil
	}
}
