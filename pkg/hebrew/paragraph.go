package hebrew

import (
	"regexp"
	"strings"
)

var blankLine = regexp.MustCompile(`\r?\n\s*\r?\n`)

// SplitParagraphs cuts raw text on blank lines. Every paragraph is trimmed
// and empty ones are dropped; the i-th paragraph is verse i+1.
func SplitParagraphs(raw string) []string {
	chunks := blankLine.Split(raw, -1)
	paragraphs := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if p := strings.TrimSpace(chunk); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// Words splits a paragraph on runs of whitespace.
func Words(paragraph string) []string {
	return strings.Fields(paragraph)
}
