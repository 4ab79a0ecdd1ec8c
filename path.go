package mmkv

import (
	"crypto/md5"
	"encoding/hex"
	"path/filepath"
	"strings"
)

const specialCharacterDir = "specialCharacter"
const crcSuffix = ".crc"

const specialCharacters = "\\/:*?\"<>|"

// encodeFilePath maps an mmapID to its on-disk filename. Ids containing any
// of the reserved filesystem characters are replaced by the hex MD5 of the
// full id and relocated under specialCharacterDir; the logical mmapID keeps
// its original value in memory and in the instance registry key.
func encodeFilePath(mmapID string) string {
	if strings.ContainsAny(mmapID, specialCharacters) {
		sum := md5.Sum([]byte(mmapID))
		return filepath.Join(specialCharacterDir, hex.EncodeToString(sum[:]))
	}
	return mmapID
}

// dataPathForID returns the absolute path of the data file for mmapID.
// root is the package-wide default root directory (set by Initialize);
// relativePath, if non-empty, overrides it for this instance.
func dataPathForID(root, mmapID, relativePath string) string {
	dir := root
	if relativePath != "" {
		dir = relativePath
	}
	return filepath.Join(dir, encodeFilePath(mmapID))
}

// crcPathForID returns the absolute path of the ".crc" meta file for mmapID.
func crcPathForID(root, mmapID, relativePath string) string {
	return dataPathForID(root, mmapID, relativePath) + crcSuffix
}

// registryKey is the key under which an open instance is tracked in the
// global registry: mmapID alone, unless a non-default relativePath is in
// play, in which case the pair is hashed together so that two different
// paths using the same mmapID never collide.
func registryKey(root, mmapID, relativePath string) string {
	if relativePath != "" && relativePath != root {
		sum := md5.Sum([]byte(filepath.Join(relativePath, mmapID)))
		return hex.EncodeToString(sum[:])
	}
	return mmapID
}
