//go:build windows

package mmkv

import "errors"

// Inter-process locking has no implementation on windows: every call returns
// errWindowsUnsupported. memfile.go imports golang.org/x/sys/unix without a
// build tag, so the package as a whole does not build under GOOS=windows.
var errWindowsUnsupported = errors.New("mmkv: inter-process locking is not implemented on windows")

func lockFD(fd int, exclusive bool) error {
	return errWindowsUnsupported
}

func unlockFD(fd int) error {
	return errWindowsUnsupported
}

func tryLockFD(fd int) (bool, error) {
	return false, errWindowsUnsupported
}
