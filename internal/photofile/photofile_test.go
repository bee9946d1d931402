package photofile

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorePutAndOpen(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	data := []byte("fake jpeg data")
	key, err := fs.Put("m1", "image/jpeg", bytes.NewReader(data))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "m1_"))

	r, mimeType, err := fs.Open(key)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "image/jpeg", mimeType)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestFileStoreKeysNeverCollide(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		key, err := fs.Put("m1", "image/png", bytes.NewReader([]byte("x")))
		require.NoError(t, err)
		assert.False(t, seen[key])
		seen[key] = true
	}
}

func TestFileStoreOpenUnknownKey(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = fs.Open("nonexistent.jpg")
	assert.Error(t, err)
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = fs.Open("../../etc/passwd")
	assert.Error(t, err)
}
