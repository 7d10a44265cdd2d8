package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestFileStorageSaveAndGet(t *testing.T) {
	base := t.TempDir()
	fs := NewFileStorage(base)

	require.NoError(t, fs.Save(filepath.Join("nested", "dir", "file.txt"), strings.NewReader("hello")))
	assert.FileExists(t, filepath.Join(base, "nested", "dir", "file.txt"))

	rc, err := fs.Get(filepath.Join("nested", "dir", "file.txt"))
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	entries, err := os.ReadDir(filepath.Join(base, "nested", "dir"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not remain")
}

func TestFileStorageSaveFailureLeavesNothing(t *testing.T) {
	base := t.TempDir()
	fs := NewFileStorage(base)

	err := fs.Save("broken.png", failingReader{})
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(base, "broken.png"))

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileStorageGetMissing(t *testing.T) {
	fs := NewFileStorage(t.TempDir())

	_, err := fs.Get("absent.json")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFileStorageMkdirAll(t *testing.T) {
	base := t.TempDir()
	fs := NewFileStorage(base)

	require.NoError(t, fs.MkdirAll("tickets_qr"))
	info, err := os.Stat(filepath.Join(base, "tickets_qr"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(base, "tickets_qr"), fs.FullPath("tickets_qr"))
}
