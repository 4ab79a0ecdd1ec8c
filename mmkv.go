package mmkv

// SetBool stores a bool value for key.
func (db *DB) SetBool(key string, value bool) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.setDataForKeyLocked(encodeBool(value), key)
}

// GetBool returns the bool stored for key, or defaultValue if absent or malformed.
func (db *DB) GetBool(key string, defaultValue bool) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkLoadData(); err != nil {
		logError("mmkv[%s]: checkLoadData: %v", db.mmapID, err)
		return defaultValue
	}
	raw, ok := db.getDataForKeyLocked(key)
	if !ok {
		return defaultValue
	}
	v, ok := decodeBool(raw)
	if !ok {
		return defaultValue
	}
	return v
}

// SetInt32 stores an int32 value for key.
func (db *DB) SetInt32(key string, value int32) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.setDataForKeyLocked(encodeInt32(value), key)
}

func (db *DB) GetInt32(key string, defaultValue int32) int32 {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkLoadData(); err != nil {
		return defaultValue
	}
	raw, ok := db.getDataForKeyLocked(key)
	if !ok {
		return defaultValue
	}
	v, ok := decodeInt32(raw)
	if !ok {
		return defaultValue
	}
	return v
}

// SetUint32 stores a uint32 value for key.
func (db *DB) SetUint32(key string, value uint32) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.setDataForKeyLocked(encodeUint32(value), key)
}

func (db *DB) GetUint32(key string, defaultValue uint32) uint32 {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkLoadData(); err != nil {
		return defaultValue
	}
	raw, ok := db.getDataForKeyLocked(key)
	if !ok {
		return defaultValue
	}
	v, ok := decodeUint32(raw)
	if !ok {
		return defaultValue
	}
	return v
}

// SetInt64 stores an int64 value for key.
func (db *DB) SetInt64(key string, value int64) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.setDataForKeyLocked(encodeInt64(value), key)
}

func (db *DB) GetInt64(key string, defaultValue int64) int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkLoadData(); err != nil {
		return defaultValue
	}
	raw, ok := db.getDataForKeyLocked(key)
	if !ok {
		return defaultValue
	}
	v, ok := decodeInt64(raw)
	if !ok {
		return defaultValue
	}
	return v
}

// SetUint64 stores a uint64 value for key.
func (db *DB) SetUint64(key string, value uint64) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.setDataForKeyLocked(encodeUint64(value), key)
}

func (db *DB) GetUint64(key string, defaultValue uint64) uint64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkLoadData(); err != nil {
		return defaultValue
	}
	raw, ok := db.getDataForKeyLocked(key)
	if !ok {
		return defaultValue
	}
	v, ok := decodeUint64(raw)
	if !ok {
		return defaultValue
	}
	return v
}

// SetFloat32 stores a float32 value for key.
func (db *DB) SetFloat32(key string, value float32) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.setDataForKeyLocked(encodeFloat32(value), key)
}

func (db *DB) GetFloat32(key string, defaultValue float32) float32 {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkLoadData(); err != nil {
		return defaultValue
	}
	raw, ok := db.getDataForKeyLocked(key)
	if !ok {
		return defaultValue
	}
	v, ok := decodeFloat32(raw)
	if !ok {
		return defaultValue
	}
	return v
}

// SetFloat64 stores a float64 value for key.
func (db *DB) SetFloat64(key string, value float64) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.setDataForKeyLocked(encodeFloat64(value), key)
}

func (db *DB) GetFloat64(key string, defaultValue float64) float64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkLoadData(); err != nil {
		return defaultValue
	}
	raw, ok := db.getDataForKeyLocked(key)
	if !ok {
		return defaultValue
	}
	v, ok := decodeFloat64(raw)
	if !ok {
		return defaultValue
	}
	return v
}

// SetString stores a string value for key.
func (db *DB) SetString(key string, value string) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.setDataForKeyLocked(encodeString(value), key)
}

// GetString returns the string stored for key and whether it was present and
// well-formed, without requiring a caller-supplied default.
func (db *DB) GetString(key string) (string, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkLoadData(); err != nil {
		return "", false
	}
	raw, ok := db.getDataForKeyLocked(key)
	if !ok {
		return "", false
	}
	return decodeString(raw)
}

// SetBytes stores a raw byte slice for key.
func (db *DB) SetBytes(key string, value []byte) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.setDataForKeyLocked(encodeBytes(value), key)
}

// GetBytes returns the bytes stored for key and whether it was present and
// well-formed.
func (db *DB) GetBytes(key string) ([]byte, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkLoadData(); err != nil {
		return nil, false
	}
	raw, ok := db.getDataForKeyLocked(key)
	if !ok {
		return nil, false
	}
	return decodeBytes(raw)
}

// SetStringSlice stores a list of strings for key.
func (db *DB) SetStringSlice(key string, value []string) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.setDataForKeyLocked(encodeStringSlice(value), key)
}

// GetVector returns the string slice stored for key and whether it was
// present and well-formed (named GetVector after the scalar's wire name,
// "list-of-strings").
func (db *DB) GetVector(key string) ([]string, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkLoadData(); err != nil {
		return nil, false
	}
	raw, ok := db.getDataForKeyLocked(key)
	if !ok {
		return nil, false
	}
	return decodeStringSlice(raw)
}

// ContainsKey reports whether key has a live (non-removed) value.
func (db *DB) ContainsKey(key string) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkLoadData(); err != nil {
		return false
	}
	_, ok := db.idx[key]
	return ok
}

// Count returns the number of live keys.
func (db *DB) Count() int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkLoadData(); err != nil {
		return 0
	}
	return int64(len(db.idx))
}

// TotalSize returns the current size in bytes of the mapped data file
// (header included), i.e. the allocated capacity rather than the live
// payload size.
func (db *DB) TotalSize() int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.file.size()
}

// ActualSize returns the size in bytes of the log payload currently in use,
// header excluded.
func (db *DB) ActualSize() int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkLoadData(); err != nil {
		return 0
	}
	return int64(db.actualSize)
}

// AllKeys returns every live key in unspecified order.
func (db *DB) AllKeys() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkLoadData(); err != nil {
		return nil
	}
	keys := make([]string, 0, len(db.idx))
	for k := range db.idx {
		keys = append(keys, k)
	}
	return keys
}

// RemoveValueForKey deletes key, if present, by appending a tombstone.
func (db *DB) RemoveValueForKey(key string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.removeValueForKeyLocked(key)
}

// RemoveValuesForKeys deletes every key in keys, forcing a compaction for
// batches of two or more rather than appending one tombstone per key.
func (db *DB) RemoveValuesForKeys(keys []string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.removeValuesForKeysLocked(keys)
}

// Sync flushes dirty pages to disk. async selects a non-blocking flush.
func (db *DB) Sync(async bool) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.file.msync(async); err != nil {
		return err
	}
	return db.metaFile.msync(async)
}

// Lock acquires the cross-process exclusive lock without performing a
// read or write, letting a caller fence off a multi-step sequence of calls.
func (db *DB) Lock() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.procLock.lockExclusive()
}

// Unlock releases a lock taken by Lock.
func (db *DB) Unlock() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.procLock.unlockExclusive()
}

// TryLock attempts the same exclusive lock as Lock without blocking,
// returning ErrLockWouldBlock instead of waiting if it is already held.
func (db *DB) TryLock() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	ok, err := db.procLock.tryLockExclusive()
	if err != nil {
		return err
	}
	if !ok {
		return ErrLockWouldBlock
	}
	return nil
}

// CheckContentChanged forces the cheap cross-process freshness check outside
// of a read/write call, reloading and firing the registered
// ContentChangeHandler if another process has written since this instance
// last saw the data.
func (db *DB) CheckContentChanged() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.checkLoadData()
}

// CryptKey returns the crypt key currently in effect, or "" for a plaintext store.
func (db *DB) CryptKey() string {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.cryptKeyStr
}

// CheckReSetCryptKey rotates the crypt key (including to/from "" for
// plaintext) and forces a full write-back under the new key.
func (db *DB) CheckReSetCryptKey(newKey string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.readOnly {
		return ErrReadOnly
	}
	return db.checkReSetCryptKeyLocked(newKey)
}
