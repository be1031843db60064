package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/gen2brain/go-fitz"

	"pdf2x/internal/llamaparse"
)

// Page is one page of locally extracted content, used for JSON output.
type Page struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// PDF extracts the contents of a PDF without calling the parsing API.
// Markdown output goes through per-page HTML rendering, text and JSON use
// the plain text layer.
func PDF(contents []byte, format llamaparse.Format) (string, error) {
	switch format {
	case llamaparse.FormatMarkdown, llamaparse.FormatText, llamaparse.FormatJSON:
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}

	doc, err := fitz.NewFromMemory(contents)
	if err != nil {
		return "", fmt.Errorf("error opening pdf: %w", err)
	}
	defer doc.Close()

	switch format {
	case llamaparse.FormatMarkdown:
		return pdfToMarkdown(doc)
	case llamaparse.FormatText:
		pages, err := pdfPages(doc)
		if err != nil {
			return "", err
		}
		var sb strings.Builder
		for _, page := range pages {
			sb.WriteString(page.Text)
			sb.WriteString("\n\n")
		}
		return sb.String(), nil
	case llamaparse.FormatJSON:
		pages, err := pdfPages(doc)
		if err != nil {
			return "", err
		}
		out, err := json.Marshal(pages)
		if err != nil {
			return "", fmt.Errorf("error encoding pages: %w", err)
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func pdfToMarkdown(doc *fitz.Document) (string, error) {
	numPages := doc.NumPage()
	var mdContent string

	for i := 0; i < numPages; i++ {
		html, err := doc.HTML(i, true)
		if err != nil {
			return "", fmt.Errorf("error rendering page %d: %w", i, err)
		}

		converter := md.NewConverter("", true, nil)
		text, err := converter.ConvertString(html)
		if err != nil {
			return "", fmt.Errorf("error converting page %d: %w", i, err)
		}

		// Remove hardcoded images before adding to content to reduce content size.
		mdContent += RemoveInlineImages(text) + "\n\n"
	}

	return mdContent, nil
}

func pdfPages(doc *fitz.Document) ([]Page, error) {
	numPages := doc.NumPage()
	pages := make([]Page, 0, numPages)

	for i := 0; i < numPages; i++ {
		text, err := doc.Text(i)
		if err != nil {
			return nil, fmt.Errorf("error extracting page %d: %w", i, err)
		}
		pages = append(pages, Page{Page: i + 1, Text: text})
	}

	return pages, nil
}

var inlineImageRe = regexp.MustCompile(`!\[\]\(data:image/[^)]+\)`)

// RemoveInlineImages strips base64 images in the format ![](data:image/...).
func RemoveInlineImages(content string) string {
	return inlineImageRe.ReplaceAllString(content, "")
}
