// Package postprocess removes common machine-translation artifacts from
// backend output before it is used downstream.
//
// REST translation APIs (LibreTranslate, MyMemory, Azure) variously
// HTML-escape their output, pad it with stray whitespace, or wrap the whole
// result in quotes. Clean is applied to the raw text returned by every
// backend adapter.
package postprocess

import (
	"html"
	"strings"
)

// Clean normalizes raw backend output in three phases and returns the
// trimmed result:
//  1. HTML entity unescaping (&amp; &quot; &#39; …)
//  2. Interior whitespace normalization (NBSP → space)
//  3. Quote wrapping removal
func Clean(text string) string {
	text = html.UnescapeString(text)
	text = strings.ReplaceAll(text, " ", " ")
	text = removeQuoteWrapping(strings.TrimSpace(text))
	return text
}

// removeQuoteWrapping strips a matching pair of outer quotes when the entire
// text is wrapped in them (an artifact of APIs that echo JSON-encoded
// strings). Supported pairs:
//
//	"…"  '…'  «…»  "…"  '…'
func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') ||
		(first == '‘' && last == '’') {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}
