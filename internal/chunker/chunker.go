// Package chunker splits document text into translatable chunks while
// preserving sentence and paragraph integrity. Unlike a plain splitter it
// keeps exact rune-offset ranges into the source text, so concatenating the
// chunks in index order reproduces the input exactly.
package chunker

// DefaultMaxChars is the default chunk size in unicode code points.
const DefaultMaxChars = 5000

// Status is the lifecycle of a chunk inside one translation job.
// A chunk never transitions backward.
type Status int

const (
	StatusPending Status = iota
	StatusTranslated
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusTranslated:
		return "translated"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Chunk is one bounded unit of source text. Start and End are rune offsets
// into the original text; Text is exactly the source slice for that range.
type Chunk struct {
	Index  int
	Start  int
	End    int
	Text   string
	Status Status
}

// Split cuts text into chunks each no longer than maxChars unicode code
// points. Splits are attempted (in order of preference) at:
//  1. Paragraph boundaries (\n\n or \r\n\r\n)
//  2. Sentence-ending punctuation (. ! ?) followed by whitespace
//  3. Whitespace (word boundary)
//  4. Hard cut at exactly maxChars if no suitable boundary is found
//
// The ranges tile the input exactly: nothing is trimmed, dropped, or
// duplicated. Empty input yields no chunks. If maxChars ≤ 0 it is treated
// as unlimited (a single chunk covering the whole text).
func Split(text string, maxChars int) []Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if maxChars <= 0 || len(runes) <= maxChars {
		return []Chunk{{Index: 0, Start: 0, End: len(runes), Text: text, Status: StatusPending}}
	}

	var chunks []Chunk
	start := 0
	for len(runes)-start > maxChars {
		cut := splitPoint(runes[start : start+maxChars])
		chunks = append(chunks, Chunk{
			Index:  len(chunks),
			Start:  start,
			End:    start + cut,
			Text:   string(runes[start : start+cut]),
			Status: StatusPending,
		})
		start += cut
	}
	chunks = append(chunks, Chunk{
		Index:  len(chunks),
		Start:  start,
		End:    len(runes),
		Text:   string(runes[start:]),
		Status: StatusPending,
	})

	return chunks
}

// splitPoint returns the rune offset within window at which to cut,
// searching backwards for the best boundary. The result is always in
// (0, len(window)].
func splitPoint(window []rune) int {
	// 1. Paragraph boundary.
	for i := len(window) - 2; i > 0; i-- {
		if window[i] == '\n' && window[i+1] == '\n' {
			return i + 2
		}
	}
	for i := len(window) - 4; i > 0; i-- {
		if window[i] == '\r' && window[i+1] == '\n' && window[i+2] == '\r' && window[i+3] == '\n' {
			return i + 4
		}
	}

	// 2. Sentence-ending punctuation followed by whitespace. The whitespace
	// run stays with the finished sentence so the next chunk starts clean.
	for i := len(window) - 2; i > 0; i-- {
		if isSentenceEnd(window[i]) && isSpace(window[i+1]) {
			j := i + 1
			for j < len(window) && isSpace(window[j]) {
				j++
			}
			return j
		}
	}

	// 3. Whitespace word boundary.
	for i := len(window) - 1; i > 0; i-- {
		if isSpace(window[i]) {
			return i + 1
		}
	}

	// 4. Hard cut: a single sentence longer than the limit.
	return len(window)
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '।' // devanagari danda
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// Reconstruct concatenates chunk texts in index order. For chunks produced
// by Split this reproduces the original input exactly.
func Reconstruct(chunks []Chunk) string {
	var total int
	for _, c := range chunks {
		total += len(c.Text)
	}
	buf := make([]byte, 0, total)
	for _, c := range chunks {
		buf = append(buf, c.Text...)
	}
	return string(buf)
}
