package llamaparse

import (
	"path/filepath"
	"strings"
)

// File types accepted by the parsing API. Subset of the upstream list,
// covering the document, spreadsheet, presentation and image families.
var supportedExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
	".rtf":  {},
	".odt":  {},
	".txt":  {},
	".html": {},
	".htm":  {},
	".xml":  {},
	".epub": {},
	".ppt":  {},
	".pptx": {},
	".key":  {},
	".xls":  {},
	".xlsx": {},
	".csv":  {},
	".tsv":  {},
	".ods":  {},
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".bmp":  {},
	".svg":  {},
	".tiff": {},
	".webp": {},
}

// SupportsFile reports whether the parsing API accepts the file type.
func SupportsFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := supportedExtensions[ext]
	return ok
}
