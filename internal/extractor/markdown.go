package extractor

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/valpere/peredoc/internal"
)

// extractMarkdown renders markdown to HTML and strips the tags, leaving the
// prose for translation.
func extractMarkdown(data []byte) (internal.Document, error) {
	opts := html.RendererOptions{Flags: html.CommonFlags}
	renderer := html.NewRenderer(opts)
	ext := parser.CommonExtensions
	p := parser.NewWithExtensions(ext)
	doc := p.Parse(data)
	rendered := string(markdown.Render(doc, renderer))

	text := strings.TrimSpace(stripHTMLTags(rendered))
	return internal.Document{
		Text:   text,
		Format: "md",
		Lines:  countLines(text),
		Method: "gomarkdown",
	}, nil
}

func stripHTMLTags(htmlContent string) string {
	var sb strings.Builder
	inTag := false
	for _, ch := range htmlContent {
		switch ch {
		case '<':
			inTag = true
		case '>':
			inTag = false
		default:
			if !inTag {
				sb.WriteRune(ch)
			}
		}
	}
	return sb.String()
}
