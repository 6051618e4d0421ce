package extractor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/valpere/peredoc/internal"
)

// txtFallbacks are tried in order when the file is not valid UTF-8.
var txtFallbacks = []struct {
	name string
	enc  encoding.Encoding
}{
	{"windows-1252", charmap.Windows1252},
	{"iso-8859-1", charmap.ISO8859_1},
}

// extractTXT decodes a plain-text file, falling back through legacy
// encodings when the content is not valid UTF-8.
func extractTXT(data []byte) (internal.Document, error) {
	if utf8.Valid(data) {
		text := string(data)
		return internal.Document{
			Text:   text,
			Format: "txt",
			Lines:  countLines(text),
			Method: "utf-8",
		}, nil
	}

	for _, fb := range txtFallbacks {
		decoded, err := fb.enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		text := string(decoded)
		return internal.Document{
			Text:   text,
			Format: "txt",
			Lines:  countLines(text),
			Method: fb.name,
		}, nil
	}

	return internal.Document{}, fmt.Errorf("could not decode text file with any known encoding")
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}
