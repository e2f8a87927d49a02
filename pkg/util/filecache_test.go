package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *FileCache {
	t.Helper()
	fc := NewFileCache(nil)
	t.Cleanup(func() { _ = fc.Close() })
	return fc
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.tsx")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileCache_Read(t *testing.T) {
	fc := newTestCache(t)
	path := writeTemp(t, "const x = 1;")

	data, err := fc.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "const x = 1;", string(data))
	assert.Equal(t, 1, fc.Size())
}

func TestFileCache_SecondReadIsAHit(t *testing.T) {
	fc := newTestCache(t)
	path := writeTemp(t, "const x = 1;")

	_, err := fc.Read(path)
	require.NoError(t, err)
	_, err = fc.Read(path)
	require.NoError(t, err)

	stats := fc.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, fc.Size())
}

func TestFileCache_EmptyFile(t *testing.T) {
	fc := newTestCache(t)
	path := writeTemp(t, "")

	// Zero-length files cannot be mapped; the fallback path serves them.
	data, err := fc.Read(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestFileCache_MissingFile(t *testing.T) {
	fc := newTestCache(t)
	_, err := fc.Read(filepath.Join(t.TempDir(), "nope.tsx"))
	require.Error(t, err)
}

func TestFileCache_InvalidateForcesReload(t *testing.T) {
	fc := newTestCache(t)
	path := writeTemp(t, "before")

	data, err := fc.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "before", string(data))

	require.NoError(t, os.WriteFile(path, []byte("after!"), 0o644))
	fc.Invalidate(path)

	data, err = fc.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "after!", string(data))
}

func TestFileCache_CloseResets(t *testing.T) {
	fc := NewFileCache(nil)
	path := writeTemp(t, "const x = 1;")

	_, err := fc.Read(path)
	require.NoError(t, err)
	require.NoError(t, fc.Close())
	assert.Equal(t, 0, fc.Size())
}
