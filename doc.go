// Package mmkv is an embedded, memory-mapped key-value store for small,
// settings-like payloads. A store maps a single data file into the process
// address space and serves reads directly from that mapping; writes append
// to the mapping and are reclaimed by an in-place compaction ("full
// write-back") when the log would overflow the current mapping.
//
// A companion ".crc" file carries the integrity and crypto metadata that
// bounds durability: the live payload length, a CRC32 digest over it, a
// format version, a monotonic sequence used to detect writes from other
// processes, and (in encrypted mode) the AES IV.
//
// Example:
//
//	db, err := mmkv.Open("settings")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	db.SetString("user", "alice")
//	name, _ := db.GetString("user")
package mmkv
