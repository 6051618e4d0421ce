// Package detector infers the language of extracted document text. It wraps
// the lingua-go statistical detector and returns lowercase ISO 639-1 codes.
package detector

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// MinTextLength is the minimum number of non-whitespace runes required for
// reliable detection. Shorter texts fail with DetectionError.
const MinTextLength = 10

// DetectionError reports text that carries no usable linguistic signal.
type DetectionError struct {
	Reason string
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("language detection failed: %s", e.Reason)
}

var (
	reURL   = regexp.MustCompile(`https?://[^\s]+`)
	reEmail = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// Detector wraps a lingua language detector. Building the model tables is
// expensive; construct once and reuse.
type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Detector{detector: detector}
}

// Detect returns the lowercase ISO 639-1 code of text. It fails with
// *DetectionError when the cleaned text is shorter than MinTextLength
// non-whitespace runes or when lingua cannot settle on a language.
//
// Detection is statistical: for short or ambiguous inputs the result may
// vary between runs, so callers comparing outputs should not assume
// bit-exact stability.
func (d *Detector) Detect(text string) (string, error) {
	clean := cleanForDetection(text)

	if countNonSpace(clean) < MinTextLength {
		return "", &DetectionError{Reason: "text too short for reliable detection"}
	}

	lang, ok := d.detector.DetectLanguageOf(clean)
	if !ok || lang == lingua.Unknown {
		return "", &DetectionError{Reason: "no detectable linguistic signal"}
	}

	return strings.ToLower(lang.IsoCode639_1().String()), nil
}

// Confidence reports lingua's confidence (0..1) that text is written in the
// language identified by the given lowercase ISO 639-1 code. Unknown codes
// yield 0.
func (d *Detector) Confidence(text, code string) float64 {
	clean := cleanForDetection(text)
	for _, lang := range lingua.AllLanguages() {
		if strings.EqualFold(lang.IsoCode639_1().String(), code) {
			return d.detector.ComputeLanguageConfidence(clean, lang)
		}
	}
	return 0
}

// cleanForDetection strips URLs and e-mail addresses and collapses
// whitespace so boilerplate does not skew the statistics.
func cleanForDetection(text string) string {
	text = reURL.ReplaceAllString(text, "")
	text = reEmail.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

func countNonSpace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
