package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pdf2x/internal/llamaparse"
)

func TestRemoveInlineImages(t *testing.T) {
	in := "before ![](data:image/png;base64,iVBORw0KGgo=) after"
	assert.Equal(t, "before  after", RemoveInlineImages(in))

	// Regular image links survive.
	keep := "![](https://example.com/img.png)"
	assert.Equal(t, keep, RemoveInlineImages(keep))

	multi := "![](data:image/jpeg;base64,aaa)![](data:image/png;base64,bbb)"
	assert.Equal(t, "", RemoveInlineImages(multi))
}

func TestPDFRejectsGarbage(t *testing.T) {
	_, err := PDF([]byte("this is not a pdf"), llamaparse.FormatMarkdown)
	assert.Error(t, err)
}

func TestPDFRejectsUnknownFormat(t *testing.T) {
	_, err := PDF([]byte("this is not a pdf"), llamaparse.Format("yaml"))
	assert.Error(t, err)
}
