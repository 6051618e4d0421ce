// Package packager turns a finished translation into a downloadable
// artifact: plain text or a simple PDF rendition.
package packager

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// WriteText writes the translated text as-is.
func WriteText(w io.Writer, text string) error {
	_, err := io.WriteString(w, text)
	return err
}

// RenderPDF renders the translated text into a one-column PDF with a short
// header naming the original file and the language pair.
//
// The built-in fonts cover Latin scripts only; text in other scripts is
// transliterated on a best-effort basis.
func RenderPDF(text, originalFilename, sourceLang, targetLang string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("Translation: %s", originalFilename)), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "I", 10)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Translated from %s to %s", sourceLang, targetLang)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated on: %s", time.Now().Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 12)
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			pdf.Ln(3)
			continue
		}
		pdf.MultiCell(0, 6, tr(line), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}
