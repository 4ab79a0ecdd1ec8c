package mmkv

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// defaultMmapSize returns the OS page size, the default initial mapping size
// for a freshly created store.
func defaultMmapSize() int {
	return unix.Getpagesize()
}

// memoryFile owns an open file descriptor and a writable shared mapping over
// it, growing and remapping as needed.
type memoryFile struct {
	path string
	file *os.File
	data []byte
}

// openMemoryFile creates or opens path, grows it to at least minSize bytes
// (rounded up to a page multiple) and maps the whole file read-write/shared.
func openMemoryFile(path string, minSize int) (*memoryFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("mmkv: open %s: %w", path, err)
	}

	mf := &memoryFile{path: path, file: f}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmkv: stat %s: %w", path, err)
	}

	size := info.Size()
	want := int64(roundUpToPage(minSize))
	if size < want {
		size = want
	}
	if err := mf.truncateLocked(size); err != nil {
		f.Close()
		return nil, err
	}
	return mf, nil
}

func roundUpToPage(n int) int {
	page := defaultMmapSize()
	if n <= 0 {
		return page
	}
	return ((n + page - 1) / page) * page
}

// truncate resizes the underlying file to newSize and remaps it so the
// in-process slice covers the new size. Its only caller, expandFileLocked,
// always grows the file; nothing in the package shrinks it.
func (mf *memoryFile) truncate(newSize int64) error {
	return mf.truncateLocked(newSize)
}

func (mf *memoryFile) truncateLocked(newSize int64) error {
	if err := mf.file.Truncate(newSize); err != nil {
		return fmt.Errorf("mmkv: truncate %s to %d: %w", mf.path, newSize, err)
	}
	return mf.remap(int(newSize))
}

func (mf *memoryFile) remap(size int) error {
	if mf.data != nil {
		if err := unix.Munmap(mf.data); err != nil {
			return fmt.Errorf("mmkv: munmap %s: %w", mf.path, err)
		}
		mf.data = nil
	}
	if size == 0 {
		return nil
	}
	data, err := unix.Mmap(int(mf.file.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("mmkv: mmap %s: %w", mf.path, err)
	}
	mf.data = data
	return nil
}

// msync flushes dirty pages to disk. async selects MS_ASYNC over the
// default MS_SYNC.
func (mf *memoryFile) msync(async bool) error {
	if mf.data == nil {
		return nil
	}
	flag := unix.MS_SYNC
	if async {
		flag = unix.MS_ASYNC
	}
	if err := unix.Msync(mf.data, flag); err != nil {
		return fmt.Errorf("mmkv: msync %s: %w", mf.path, err)
	}
	return nil
}

// ensureMapped remaps the file at its current on-disk size if a prior
// clearMemoryCache dropped the mapping.
func (mf *memoryFile) ensureMapped() error {
	if mf.data != nil {
		return nil
	}
	info, err := mf.file.Stat()
	if err != nil {
		return fmt.Errorf("mmkv: stat %s: %w", mf.path, err)
	}
	size := info.Size()
	if size == 0 {
		size = int64(roundUpToPage(0))
		if err := mf.file.Truncate(size); err != nil {
			return fmt.Errorf("mmkv: truncate %s to %d: %w", mf.path, size, err)
		}
	}
	return mf.remap(int(size))
}

// clearMemoryCache drops the mapping; the next access must call remap/open again.
func (mf *memoryFile) clearMemoryCache() error {
	if mf.data == nil {
		return nil
	}
	if err := unix.Munmap(mf.data); err != nil {
		return fmt.Errorf("mmkv: munmap %s: %w", mf.path, err)
	}
	mf.data = nil
	return nil
}

// isFileValid reports whether the mapping is live and at least one page long.
func (mf *memoryFile) isFileValid() bool {
	return mf.data != nil && len(mf.data) >= defaultMmapSize()
}

// size returns the current mapped length (== on-disk file length).
func (mf *memoryFile) size() int64 {
	return int64(len(mf.data))
}

// close unmaps and closes the backing file descriptor.
func (mf *memoryFile) close() error {
	if err := mf.clearMemoryCache(); err != nil {
		return err
	}
	return mf.file.Close()
}

// fd exposes the raw descriptor for the inter-process lock.
func (mf *memoryFile) fd() int {
	return int(mf.file.Fd())
}
