package mmkv

import "sync"

// interProcessLock is the advisory whole-file lock (flock) on the meta file. It is
// re-entrant per process: a recursion counter tracks nested acquisitions of
// the same mode so a goroutine that already holds the lock can "take" it
// again without blocking on itself. Shared and exclusive are mutually
// exclusive; upgrading from shared to exclusive releases the shared hold and
// reacquires exclusive. Platform-specific lockFD/unlockFD/tryLockFD
// implementations live in filelock_unix.go / filelock_windows.go.
type interProcessLock struct {
	fd      int
	enabled bool

	mu         sync.Mutex
	sharedN    int
	exclusiveN int
}

func newInterProcessLock(fd int, enabled bool) *interProcessLock {
	return &interProcessLock{fd: fd, enabled: enabled}
}

func (l *interProcessLock) lockShared() error {
	if !l.enabled {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sharedN > 0 || l.exclusiveN > 0 {
		l.sharedN++
		return nil
	}
	if err := lockFD(l.fd, false); err != nil {
		return err
	}
	l.sharedN++
	return nil
}

func (l *interProcessLock) unlockShared() error {
	if !l.enabled {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sharedN == 0 {
		return nil
	}
	l.sharedN--
	if l.sharedN == 0 && l.exclusiveN == 0 {
		return unlockFD(l.fd)
	}
	return nil
}

func (l *interProcessLock) lockExclusive() error {
	if !l.enabled {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.exclusiveN > 0 {
		l.exclusiveN++
		return nil
	}
	if l.sharedN > 0 {
		// upgrade: release the shared hold, take exclusive.
		if err := unlockFD(l.fd); err != nil {
			return err
		}
	}
	if err := lockFD(l.fd, true); err != nil {
		return err
	}
	l.exclusiveN++
	return nil
}

func (l *interProcessLock) unlockExclusive() error {
	if !l.enabled {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.exclusiveN == 0 {
		return nil
	}
	l.exclusiveN--
	if l.exclusiveN == 0 {
		if l.sharedN > 0 {
			// downgrade back to shared for any still-nested shared holders.
			if err := unlockFD(l.fd); err != nil {
				return err
			}
			return lockFD(l.fd, false)
		}
		return unlockFD(l.fd)
	}
	return nil
}

// tryLockExclusive attempts a non-blocking exclusive acquisition, used by
// the public TryLock API.
func (l *interProcessLock) tryLockExclusive() (bool, error) {
	if !l.enabled {
		return true, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.exclusiveN > 0 {
		l.exclusiveN++
		return true, nil
	}
	if l.sharedN > 0 {
		if err := unlockFD(l.fd); err != nil {
			return false, err
		}
		l.sharedN = 0
	}
	ok, err := tryLockFD(l.fd)
	if err != nil || !ok {
		return false, err
	}
	l.exclusiveN++
	return true, nil
}
