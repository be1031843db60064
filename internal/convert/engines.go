package convert

import (
	"context"
	"path/filepath"
	"strings"

	"pdf2x/internal/extract"
	"pdf2x/internal/llamaparse"
)

// LlamaParseEngine parses documents through the hosted API.
type LlamaParseEngine struct {
	Client  *llamaparse.Client
	Options llamaparse.ParseOptions
}

var _ Engine = (*LlamaParseEngine)(nil)

func (e *LlamaParseEngine) Name() string { return "llamaparse" }

func (e *LlamaParseEngine) Parse(ctx context.Context, name string, contents []byte, format llamaparse.Format) (string, error) {
	return e.Client.Parse(ctx, name, contents, format, e.Options)
}

func (e *LlamaParseEngine) SupportsFile(path string) bool {
	return llamaparse.SupportsFile(path)
}

// LocalEngine extracts content with the bundled PDF renderer, no API calls.
type LocalEngine struct{}

var _ Engine = (*LocalEngine)(nil)

func (e *LocalEngine) Name() string { return "local" }

func (e *LocalEngine) Parse(ctx context.Context, name string, contents []byte, format llamaparse.Format) (string, error) {
	return extract.PDF(contents, format)
}

func (e *LocalEngine) SupportsFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".pdf"
}
