package mmkv

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func newTestDB(t *testing.T, opts ...Option) (*DB, string) {
	t.Helper()
	dir, err := os.MkdirTemp("", "mmkv-test")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	id := fmt.Sprintf("db-%d", len(instances))
	allOpts := append([]Option{WithRelativePath(dir)}, opts...)
	db, err := Open(id, allOpts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, dir
}

// S1: set/remove/allKeys basic semantics.
func TestBasicSetRemove(t *testing.T) {
	db, _ := newTestDB(t)

	db.SetInt32("a", 1)
	db.SetInt32("b", 2)
	db.RemoveValueForKey("a")

	if v := db.GetInt32("a", 0); v != 0 {
		t.Fatalf("expected default after remove, got %d", v)
	}
	if v := db.GetInt32("b", 0); v != 2 {
		t.Fatalf("expected 2, got %d", v)
	}
	keys := db.AllKeys()
	if len(keys) != 1 || keys[0] != "b" {
		t.Fatalf("expected [b], got %v", keys)
	}
}

// Round-trip + last-write-wins across every scalar type.
func TestRoundTripAndLastWriteWins(t *testing.T) {
	db, _ := newTestDB(t)

	db.SetString("s", "one")
	db.SetString("s", "two")
	if v, ok := db.GetString("s"); !ok || v != "two" {
		t.Fatalf("expected (two,true), got (%q,%v)", v, ok)
	}

	db.SetBool("bool", true)
	if v := db.GetBool("bool", false); !v {
		t.Fatal("expected true")
	}

	db.SetInt64("i64", -123456789012)
	if v := db.GetInt64("i64", 0); v != -123456789012 {
		t.Fatalf("got %d", v)
	}

	db.SetFloat64("f64", 3.5)
	if v := db.GetFloat64("f64", 0); v != 3.5 {
		t.Fatalf("got %v", v)
	}

	db.SetStringSlice("vec", []string{"x", "y", "z"})
	if v, ok := db.GetVector("vec"); !ok || len(v) != 3 || v[2] != "z" {
		t.Fatalf("got %v, %v", v, ok)
	}
}

// S4: CRC mismatch recovery with the Discard policy.
func TestCRCMismatchRecovery(t *testing.T) {
	dir, err := os.MkdirTemp("", "mmkv-crc-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	db, err := Open("k", WithRelativePath(dir))
	if err != nil {
		t.Fatal(err)
	}
	db.SetString("k", "v1")
	db.Close()

	dataPath := filepath.Join(dir, "k")
	flipByteInFile(t, dataPath, dataHeaderSize)

	RegisterErrorHandler(func(id string, kind ErrorType) RecoverStrategy { return Discard })
	defer RegisterErrorHandler(nil)

	db2, err := Open("k", WithRelativePath(dir))
	if err != nil {
		t.Fatal(err)
	}
	defer db2.Close()
	if db2.Count() != 0 {
		t.Fatalf("expected Discard to empty the store, got count=%d", db2.Count())
	}
}

func flipByteInFile(t *testing.T, path string, offset int64) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	buf := make([]byte, 1)
	if _, err := f.ReadAt(buf, offset); err != nil {
		t.Fatal(err)
	}
	buf[0] ^= 0xFF
	if _, err := f.WriteAt(buf, offset); err != nil {
		t.Fatal(err)
	}
}

// Durability across reopen.
func TestDurabilityAcrossReopen(t *testing.T) {
	dir, err := os.MkdirTemp("", "mmkv-durability-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	db, err := Open("durable", WithRelativePath(dir))
	if err != nil {
		t.Fatal(err)
	}
	db.SetString("name", "alice")
	db.Close()

	db2, err := Open("durable", WithRelativePath(dir))
	if err != nil {
		t.Fatal(err)
	}
	defer db2.Close()
	if v, ok := db2.GetString("name"); !ok || v != "alice" {
		t.Fatalf("expected (alice,true) after reopen, got (%q,%v)", v, ok)
	}
}

// Compaction preserves semantics: many overwrites then force a write-back.
func TestCompactionPreservesSemantics(t *testing.T) {
	db, _ := newTestDB(t)

	for i := 0; i < 50; i++ {
		db.SetString("k", fmt.Sprintf("value-%d", i))
	}
	db.SetString("other", "kept")

	db.mu.Lock()
	err := db.fullWritebackLocked(db.crypter)
	db.mu.Unlock()
	if err != nil {
		t.Fatalf("fullWriteback: %v", err)
	}

	if v, ok := db.GetString("k"); !ok || v != "value-49" {
		t.Fatalf("expected (value-49,true) after compaction, got (%q,%v)", v, ok)
	}
	if v, ok := db.GetString("other"); !ok || v != "kept" {
		t.Fatalf("expected (kept,true), got (%q,%v)", v, ok)
	}
}

// S2: crypt mode round-trip across reopen with the right key, and a wrong
// key that must not reproduce the original value.
func TestCryptModeRoundTripAndWrongKey(t *testing.T) {
	dir, err := os.MkdirTemp("", "mmkv-crypt-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	db, err := Open("secrets", WithRelativePath(dir), WithCryptKey("0123456789abcdef"))
	if err != nil {
		t.Fatal(err)
	}
	db.SetString("msg", "hello")
	db.Close()

	same, err := Open("secrets", WithRelativePath(dir), WithCryptKey("0123456789abcdef"))
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := same.GetString("msg"); !ok || v != "hello" {
		t.Fatalf("expected (hello,true) with correct key, got (%q,%v)", v, ok)
	}
	same.Close()

	wrong, err := Open("secrets", WithRelativePath(dir), WithCryptKey("fedcba9876543210"))
	if err != nil {
		t.Fatal(err)
	}
	defer wrong.Close()
	if v, ok := wrong.GetString("msg"); ok && v == "hello" {
		t.Fatal("expected wrong key to not reproduce the original value")
	}
}

func TestCheckReSetCryptKeyTransitions(t *testing.T) {
	db, _ := newTestDB(t)
	db.SetString("a", "plain-value")

	if err := db.CheckReSetCryptKey("secret"); err != nil {
		t.Fatalf("plain->crypt: %v", err)
	}
	if v, ok := db.GetString("a"); !ok || v != "plain-value" {
		t.Fatalf("value lost across plain->crypt rotation: (%q,%v)", v, ok)
	}

	if err := db.CheckReSetCryptKey(""); err != nil {
		t.Fatalf("crypt->plain: %v", err)
	}
	if v, ok := db.GetString("a"); !ok || v != "plain-value" {
		t.Fatalf("value lost across crypt->plain rotation: (%q,%v)", v, ok)
	}
}

// Growth monotonicity: totalSize never shrinks outside compaction.
func TestGrowthMonotonic(t *testing.T) {
	db, _ := newTestDB(t)

	big := make([]byte, 4096)
	prev := db.TotalSize()
	for i := 0; i < 8; i++ {
		db.SetBytes(fmt.Sprintf("blob-%d", i), big)
		cur := db.TotalSize()
		if cur < prev {
			t.Fatalf("totalSize shrank: %d -> %d", prev, cur)
		}
		prev = cur
	}
}

// Cross-process visibility, simulated via two *DB handles sharing one
// registry entry is not possible in-process (Open dedups by key), so this
// closes the writer and then opens the same files again as the reader.
func TestCrossInstanceVisibilityAfterClose(t *testing.T) {
	dir, err := os.MkdirTemp("", "mmkv-visibility-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	writer, err := Open("shared", WithRelativePath(dir), WithMode(MultiProcess))
	if err != nil {
		t.Fatal(err)
	}
	writer.SetInt32("x", 10)
	writer.Sync(false)
	writer.Close()

	reader, err := Open("shared", WithRelativePath(dir), WithMode(MultiProcess))
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()
	if v := reader.GetInt32("x", 0); v != 10 {
		t.Fatalf("expected 10, got %d", v)
	}
}

func TestConcurrentSetGet(t *testing.T) {
	db, _ := newTestDB(t)

	const goroutines = 8
	const perGoroutine = 200
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				key := fmt.Sprintf("k-%d-%d", id, i)
				db.SetInt32(key, int32(i))
				if v := db.GetInt32(key, -1); v != int32(i) {
					t.Errorf("goroutine %d: expected %d, got %d", id, i, v)
				}
			}
		}(g)
	}
	wg.Wait()
}
