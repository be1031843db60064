package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSinkWrite(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewLocalSink(dir)
	require.NoError(t, err)

	err = sink.Write(context.Background(), "out/report.md", strings.NewReader("# Report"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "out", "report.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Report", string(data))
}

func TestLocalSinkAbsoluteKeys(t *testing.T) {
	sink, err := NewLocalSink("")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "deep", "nested", "doc.txt")
	err = sink.Write(context.Background(), path, strings.NewReader("text"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "text", string(data))
}

func TestLocalSinkOverwrites(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewLocalSink(dir)
	require.NoError(t, err)

	require.NoError(t, sink.Write(context.Background(), "doc.md", strings.NewReader("old")))
	require.NoError(t, sink.Write(context.Background(), "doc.md", strings.NewReader("new")))

	data, err := os.ReadFile(filepath.Join(dir, "doc.md"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestIsS3URI(t *testing.T) {
	assert.True(t, IsS3URI("s3://bucket/key"))
	assert.False(t, IsS3URI("/tmp/out.md"))
	assert.False(t, IsS3URI("https://example.com/out.md"))
	assert.False(t, IsS3URI(""))
}

func TestParseS3URI(t *testing.T) {
	bucket, prefix, err := ParseS3URI("s3://my-bucket/converted/docs")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "converted/docs", prefix)

	bucket, prefix, err = ParseS3URI("s3://my-bucket")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", bucket)
	assert.Empty(t, prefix)

	_, _, err = ParseS3URI("s3://")
	assert.Error(t, err)

	_, _, err = ParseS3URI("file:///tmp/out")
	assert.Error(t, err)
}
