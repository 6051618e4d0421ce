package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/valpere/peredoc/internal"
)

// extractDOCX reads word/document.xml out of the DOCX container and walks
// its XML: text runs are collected, paragraphs become newlines, and tab
// marks become tabs (so table cells stay separated).
func extractDOCX(data []byte) (internal.Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return internal.Document{}, fmt.Errorf("failed to open DOCX container: %w", err)
	}

	var docXML io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return internal.Document{}, fmt.Errorf("failed to read document.xml: %w", err)
			}
			break
		}
	}
	if docXML == nil {
		return internal.Document{}, fmt.Errorf("not a DOCX file: word/document.xml missing")
	}
	defer docXML.Close()

	var sb strings.Builder
	paragraphs := 0
	inText := false

	dec := xml.NewDecoder(docXML)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return internal.Document{}, fmt.Errorf("malformed document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
				paragraphs++
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return internal.Document{
		Text:       strings.TrimSpace(sb.String()),
		Format:     "docx",
		Paragraphs: paragraphs,
		Method:     "document.xml",
	}, nil
}
