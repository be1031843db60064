package llamaparse

import "fmt"

// Format is an output format supported by the parsing API.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatMarkdown, FormatText, FormatJSON:
		return Format(name), nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use 'markdown', 'text', or 'json')", name)
	}
}

// Extension returns the output file extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatText:
		return ".txt"
	case FormatJSON:
		return ".json"
	default:
		return ".md"
	}
}
