package mmkv

import "errors"

var (
	// ErrKeyEmpty is returned by Open when given an empty mmapID.
	ErrKeyEmpty = errors.New("mmkv: key is empty")

	// ErrClosed is returned by CheckContentChanged and CheckReSetCryptKey on a
	// store after Close; the Set/Get methods report it only as false or the
	// caller's default.
	ErrClosed = errors.New("mmkv: instance is closed")

	// ErrReadOnly is returned by CheckReSetCryptKey on a store opened with
	// ReadOnly; the Set methods return false and removals do nothing.
	ErrReadOnly = errors.New("mmkv: instance is read-only")

	// ErrFileInvalid indicates the underlying mapping could not be established.
	ErrFileInvalid = errors.New("mmkv: memory-mapped file is invalid")

	// ErrLockWouldBlock is returned by TryLock when the exclusive process
	// lock is already held elsewhere.
	ErrLockWouldBlock = errors.New("mmkv: lock would block")
)
