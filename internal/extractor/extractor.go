// Package extractor turns uploaded document bytes into plain text plus
// extraction metadata. It is the input boundary of the translation pipeline:
// everything downstream works on internal.Document values.
package extractor

import (
	"fmt"
	"strings"

	"github.com/valpere/peredoc/internal"
)

// MaxFileSize caps accepted documents at 16 MiB.
const MaxFileSize = 16 * 1024 * 1024

// Extract dispatches on the file extension (".pdf", ".docx", ".txt", ".md")
// and returns the extracted document.
func Extract(data []byte, ext string) (internal.Document, error) {
	if len(data) > MaxFileSize {
		return internal.Document{}, fmt.Errorf("file too large: %d bytes, limit is %d", len(data), MaxFileSize)
	}

	switch strings.ToLower(ext) {
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		return extractDOCX(data)
	case ".txt":
		return extractTXT(data)
	case ".md", ".markdown":
		return extractMarkdown(data)
	default:
		return internal.Document{}, fmt.Errorf("unsupported file format: %s", ext)
	}
}
