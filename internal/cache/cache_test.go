package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	return c
}

func TestCacheMiss(t *testing.T) {
	c := setupTestCache(t)

	_, hit, err := c.Get(Checksum([]byte("unseen")), "markdown", "llamaparse")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCachePutGet(t *testing.T) {
	c := setupTestCache(t)
	checksum := Checksum([]byte("document bytes"))

	require.NoError(t, c.Put(checksum, "markdown", "llamaparse", "# Title"))

	content, hit, err := c.Get(checksum, "markdown", "llamaparse")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "# Title", content)

	// Same checksum, different format: separate entry.
	_, hit, err = c.Get(checksum, "text", "llamaparse")
	require.NoError(t, err)
	assert.False(t, hit)

	// Same checksum and format, different engine: separate entry.
	_, hit, err = c.Get(checksum, "markdown", "local")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCachePutReplaces(t *testing.T) {
	c := setupTestCache(t)
	checksum := Checksum([]byte("document bytes"))

	require.NoError(t, c.Put(checksum, "text", "local", "old"))
	require.NoError(t, c.Put(checksum, "text", "local", "new"))

	content, hit, err := c.Get(checksum, "text", "local")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "new", content)
}

func TestCachePersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()

	c, err := Open(dir)
	require.NoError(t, err)
	checksum := Checksum([]byte("persisted"))
	require.NoError(t, c.Put(checksum, "markdown", "llamaparse", "content"))

	reopened, err := Open(dir)
	require.NoError(t, err)

	content, hit, err := reopened.Get(checksum, "markdown", "llamaparse")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "content", content)
}

func TestOpenCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")

	_, err := Open(dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "pdf2x.db"))
	assert.NoError(t, err)
}

func TestChecksum(t *testing.T) {
	a := Checksum([]byte("same"))
	b := Checksum([]byte("same"))
	c := Checksum([]byte("different"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
