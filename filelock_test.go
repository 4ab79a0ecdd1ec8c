package mmkv

import (
	"os"
	"testing"
)

func openTestLockFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.CreateTemp("", "mmkv-lock-test")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		f.Close()
		os.Remove(f.Name())
	})
	return f
}

func TestInterProcessLockSharedRecursion(t *testing.T) {
	f := openTestLockFile(t)
	l := newInterProcessLock(int(f.Fd()), true)

	if err := l.lockShared(); err != nil {
		t.Fatalf("lockShared: %v", err)
	}
	if err := l.lockShared(); err != nil {
		t.Fatalf("nested lockShared: %v", err)
	}
	if err := l.unlockShared(); err != nil {
		t.Fatalf("unlockShared: %v", err)
	}
	if err := l.unlockShared(); err != nil {
		t.Fatalf("final unlockShared: %v", err)
	}
}

func TestInterProcessLockUpgradeDowngrade(t *testing.T) {
	f := openTestLockFile(t)
	l := newInterProcessLock(int(f.Fd()), true)

	if err := l.lockShared(); err != nil {
		t.Fatalf("lockShared: %v", err)
	}
	if err := l.lockExclusive(); err != nil {
		t.Fatalf("upgrade to exclusive: %v", err)
	}
	if err := l.unlockExclusive(); err != nil {
		t.Fatalf("downgrade from exclusive: %v", err)
	}
	if l.sharedN != 1 || l.exclusiveN != 0 {
		t.Fatalf("expected shared=1 exclusive=0 after downgrade, got shared=%d exclusive=%d", l.sharedN, l.exclusiveN)
	}
	if err := l.unlockShared(); err != nil {
		t.Fatalf("final unlockShared: %v", err)
	}
}

func TestInterProcessLockDisabledIsNoOp(t *testing.T) {
	l := newInterProcessLock(-1, false)
	if err := l.lockShared(); err != nil {
		t.Fatalf("disabled lockShared should not touch the fd: %v", err)
	}
	if err := l.lockExclusive(); err != nil {
		t.Fatalf("disabled lockExclusive should not touch the fd: %v", err)
	}
	ok, err := l.tryLockExclusive()
	if err != nil || !ok {
		t.Fatalf("disabled tryLockExclusive should always succeed, got ok=%v err=%v", ok, err)
	}
}

func TestInterProcessLockTryLockExclusiveConflict(t *testing.T) {
	f := openTestLockFile(t)
	holder := newInterProcessLock(int(f.Fd()), true)
	if err := holder.lockExclusive(); err != nil {
		t.Fatalf("holder lockExclusive: %v", err)
	}
	defer holder.unlockExclusive()

	f2, err := os.OpenFile(f.Name(), os.O_RDWR, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer f2.Close()
	contender := newInterProcessLock(int(f2.Fd()), true)

	ok, err := contender.tryLockExclusive()
	if err != nil {
		t.Fatalf("tryLockExclusive: %v", err)
	}
	if ok {
		t.Fatal("expected tryLockExclusive to fail while the exclusive lock is held by another descriptor")
	}
}
