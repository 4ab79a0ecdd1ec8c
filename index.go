package mmkv

// keyValueHolder is the in-memory index entry. In plain mode cryptStatus is
// nil; in crypt mode it is the keystream position immediately preceding the
// value's bytes, letting a point lookup decrypt in O(1) without rescanning
// from the start of the payload. One holder type covers both modes rather
// than two distinct map types -- see DESIGN.md.
type keyValueHolder struct {
	offset      int64 // absolute offset of the value's bytes within the data file
	length      int64
	cryptStatus *aesCryptStatus
}

// index is the key -> holder map rebuilt on every load and reset on
// clearMemoryCache.
type index map[string]*keyValueHolder
