package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalSink writes results to the filesystem under a base directory.
// An empty base directory means keys are used as paths directly.
type LocalSink struct {
	baseDir string
}

var _ Sink = (*LocalSink)(nil)

func NewLocalSink(dir string) (*LocalSink, error) {
	if dir == "" {
		return &LocalSink{}, nil
	}

	baseDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %s: %w", dir, err)
	}

	return &LocalSink{baseDir: baseDir}, nil
}

func (s *LocalSink) Write(ctx context.Context, key string, data io.Reader) error {
	path := key
	if s.baseDir != "" {
		path = filepath.Join(s.baseDir, key)
	}

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, data); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
