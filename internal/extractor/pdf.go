package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/valpere/peredoc/internal"
)

// extractPDF pulls plain text out of a PDF, page by page. Pages are joined
// with blank lines so the chunker can treat them as paragraph boundaries.
func extractPDF(data []byte) (internal.Document, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return internal.Document{}, fmt.Errorf("failed to open PDF: %w", err)
	}

	var pages []string
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages rather than losing the whole document.
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}

	return internal.Document{
		Text:   strings.TrimSpace(strings.Join(pages, "\n\n")),
		Format: "pdf",
		Pages:  total,
		Method: "ledongthuc/pdf",
	}, nil
}
