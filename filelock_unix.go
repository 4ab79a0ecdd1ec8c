//go:build unix

package mmkv

import "golang.org/x/sys/unix"

// lockFD takes a blocking flock on fd, exclusive or shared.
func lockFD(fd int, exclusive bool) error {
	how := unix.LOCK_SH
	if exclusive {
		how = unix.LOCK_EX
	}
	for {
		err := unix.Flock(fd, how)
		if err != unix.EINTR {
			return err
		}
	}
}

func unlockFD(fd int) error {
	return unix.Flock(fd, unix.LOCK_UN)
}

func tryLockFD(fd int) (bool, error) {
	err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB)
	if err == nil {
		return true, nil
	}
	if err == unix.EWOULDBLOCK {
		return false, nil
	}
	return false, err
}
