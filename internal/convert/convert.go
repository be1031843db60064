package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pdf2x/internal/cache"
	"pdf2x/internal/llamaparse"
	"pdf2x/internal/storage"
)

// Engine turns document bytes into content in the requested format.
type Engine interface {
	Name() string
	Parse(ctx context.Context, name string, contents []byte, format llamaparse.Format) (string, error)
	SupportsFile(path string) bool
}

// Converter runs the full pipeline for one document: validate, check the
// cache, parse, and write the result through the sink.
type Converter struct {
	Engine Engine
	Cache  *cache.Cache // nil disables caching
	Sink   storage.Sink
}

// ValidateInput checks that path is a readable regular file of a type the
// engine can handle.
func (c *Converter) ValidateInput(path string) error {
	if !c.Engine.SupportsFile(path) {
		return fmt.Errorf("unsupported input file for %s engine: %s", c.Engine.Name(), path)
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking input file %s: %w", path, err)
	}
	if info.IsDir() || !info.Mode().IsRegular() {
		return fmt.Errorf("path exists but is not a regular file: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("no read permission for file %s: %w", path, err)
	}
	f.Close()

	return nil
}

// Convert parses the input file and writes the result under outputKey.
func (c *Converter) Convert(ctx context.Context, input, outputKey string, format llamaparse.Format) error {
	if err := c.ValidateInput(input); err != nil {
		return err
	}

	contents, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("error reading input file %s: %w", input, err)
	}

	checksum := cache.Checksum(contents)

	content, hit := c.cachedResult(checksum, format)
	if hit {
		slog.Info("using cached result", "input", input, "format", format)
	} else {
		slog.Info("parsing document", "input", input, "format", format, "engine", c.Engine.Name())

		content, err = c.Engine.Parse(ctx, filepath.Base(input), contents, format)
		if err != nil {
			return fmt.Errorf("failed to convert %s: %w", input, err)
		}

		c.storeResult(checksum, format, content)
	}

	if err := c.Sink.Write(ctx, outputKey, strings.NewReader(content)); err != nil {
		return err
	}

	slog.Info("document converted", "input", input, "output", outputKey, "format", format)
	return nil
}

func (c *Converter) cachedResult(checksum string, format llamaparse.Format) (string, bool) {
	if c.Cache == nil {
		return "", false
	}
	content, hit, err := c.Cache.Get(checksum, string(format), c.Engine.Name())
	if err != nil {
		slog.Warn("cache lookup failed, treating as miss", "error", err)
		return "", false
	}
	return content, hit
}

func (c *Converter) storeResult(checksum string, format llamaparse.Format, content string) {
	if c.Cache == nil {
		return
	}
	if err := c.Cache.Put(checksum, string(format), c.Engine.Name(), content); err != nil {
		slog.Warn("failed to store result in cache", "error", err)
	}
}

// OutputName returns the output file name for an input: the base name with
// the format's extension.
func OutputName(input string, format llamaparse.Format) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + format.Extension()
}

// DeriveOutputPath returns the output path for a single conversion. An empty
// override means the input path with the format's extension.
func DeriveOutputPath(input, override string, format llamaparse.Format) string {
	if override != "" {
		return override
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + format.Extension()
}
