package mmkv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeFilePathPlainID(t *testing.T) {
	assert.Equal(t, "settings", encodeFilePath("settings"))
}

func TestEncodeFilePathSpecialCharacters(t *testing.T) {
	got := encodeFilePath("a/b:c")
	assert.True(t, filepath.Dir(got) == specialCharacterDir)
	assert.NotContains(t, filepath.Base(got), "/")
}

func TestCrcPathForIDAppendsSuffix(t *testing.T) {
	data := dataPathForID("/root/data", "settings", "")
	crc := crcPathForID("/root/data", "settings", "")
	assert.Equal(t, data+crcSuffix, crc)
}

func TestRegistryKeyStableForSameInputs(t *testing.T) {
	k1 := registryKey("/root", "settings", "/elsewhere")
	k2 := registryKey("/root", "settings", "/elsewhere")
	assert.Equal(t, k1, k2)

	k3 := registryKey("/root", "settings", "/different")
	assert.NotEqual(t, k1, k3)
}

func TestRegistryKeyDefaultsToMmapID(t *testing.T) {
	assert.Equal(t, "settings", registryKey("/root", "settings", ""))
	assert.Equal(t, "settings", registryKey("/root", "settings", "/root"))
}
