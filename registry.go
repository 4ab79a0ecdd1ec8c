package mmkv

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// g_instanceLock guards rootDir, the instances registry, and the
// content-change handler below. Reopening an already-open id returns the same
// *DB rather than mapping the files a second time. processErrorHandler has its
// own errorHandlerMu because Open consults it while holding g_instanceLock.
var (
	g_instanceLock sync.Mutex
	rootDir        = defaultRootDir()
	instances      = make(map[string]*DB)

	errorHandlerMu        sync.Mutex
	processErrorHandler   ErrorHandler
	contentChangeHandler  ContentChangeHandler
)

func defaultRootDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "mmkv"
	}
	return filepath.Join(dir, "mmkv")
}

// Initialize sets the process-wide root directory stores are opened under
// and the minimum log level. Call it once before the first Open.
func Initialize(root string, level LogLevel) {
	g_instanceLock.Lock()
	rootDir = root
	g_instanceLock.Unlock()
	SetLogLevel(level)
}

// RegisterErrorHandler installs the process-wide CRC/file-length recovery
// handler used by stores opened without a per-instance WithErrorHandler.
func RegisterErrorHandler(h ErrorHandler) {
	errorHandlerMu.Lock()
	defer errorHandlerMu.Unlock()
	processErrorHandler = h
}

func currentErrorHandler() ErrorHandler {
	errorHandlerMu.Lock()
	defer errorHandlerMu.Unlock()
	return processErrorHandler
}

// RegisterContentChangeHandler installs the callback invoked whenever
// checkLoadData observes another process advanced a store's sequence and
// reloads it.
func RegisterContentChangeHandler(h ContentChangeHandler) {
	g_instanceLock.Lock()
	defer g_instanceLock.Unlock()
	contentChangeHandler = h
}

func notifyContentChanged(mmapID string) {
	g_instanceLock.Lock()
	h := contentChangeHandler
	g_instanceLock.Unlock()
	if h != nil {
		h(mmapID)
	}
}

// Open returns the store for mmapID, creating its data/meta files on first
// use. A second Open of the same (relativePath, mmapID) pair while the first
// is still open returns the very same *DB rather than a second mapping over
// the same files.
func Open(mmapID string, opts ...Option) (*DB, error) {
	if mmapID == "" {
		return nil, ErrKeyEmpty
	}

	g_instanceLock.Lock()
	defer g_instanceLock.Unlock()

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	key := registryKey(rootDir, mmapID, o.relativePath)
	if existing, ok := instances[key]; ok {
		return existing, nil
	}

	dataPath := dataPathForID(rootDir, mmapID, o.relativePath)
	crcPath := crcPathForID(rootDir, mmapID, o.relativePath)
	if err := os.MkdirAll(filepath.Dir(dataPath), 0755); err != nil {
		return nil, fmt.Errorf("mmkv: create directory for %s: %w", mmapID, err)
	}

	dataFile, err := openMemoryFile(dataPath, o.initialSize)
	if err != nil {
		return nil, err
	}
	metaFile, err := openMemoryFile(crcPath, metaInfoSize)
	if err != nil {
		dataFile.close()
		return nil, err
	}

	db := &DB{
		mmapID:           mmapID,
		mmapKey:          key,
		relativePath:     o.relativePath,
		mode:             o.mode,
		readOnly:         o.mode.isReadOnly(),
		file:             dataFile,
		metaFile:         metaFile,
		cryptKeyStr:      o.cryptKey,
		errorHandler:     o.errorHandler,
		needLoadFromFile: true,
	}
	db.procLock = newInterProcessLock(metaFile.fd(), o.mode.isMultiProcess())

	db.mu.Lock()
	err = db.loadFromFile()
	db.mu.Unlock()
	if err != nil {
		dataFile.close()
		metaFile.close()
		return nil, err
	}

	instances[key] = db
	logInfo("mmkv: opened %s at %s", mmapID, dataPath)
	return db, nil
}

// Close flushes and unmaps db, removing it from the process registry. A
// subsequent Open of the same id starts fresh from disk.
func (db *DB) Close() error {
	g_instanceLock.Lock()
	delete(instances, db.mmapKey)
	g_instanceLock.Unlock()

	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil
	}
	db.file.msync(false)
	db.metaFile.msync(false)
	fileErr := db.file.close()
	metaErr := db.metaFile.close()
	db.closed = true
	if fileErr != nil {
		return fileErr
	}
	return metaErr
}
