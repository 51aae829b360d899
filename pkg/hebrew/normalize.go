// Package hebrew holds the text primitives used to match Hebrew surfaces
// against the lexicon: consonantal keys, prefix segmentation and paragraph
// splitting.
package hebrew

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Marks covers cantillation, niqqud and the point-like punctuation in the
	// Hebrew block (U+0591..U+05C7).
	Marks = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x0591, Hi: 0x05C7, Stride: 1}}}

	// Letters covers the 27 consonant code points including final forms
	// (U+05D0..U+05EA).
	Letters = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x05D0, Hi: 0x05EA, Stride: 1}}}
)

// Consonants reduces s to its consonantal key: compatibility decomposition,
// removal of every mark, recomposition, then only Hebrew letters survive.
// The result is empty when s carries no Hebrew letter.
func Consonants(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(Marks)),
		norm.NFC,
		runes.Remove(runes.NotIn(Letters)),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// StripMarks removes niqqud and cantillation but keeps every other rune.
func StripMarks(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(Marks)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// IsLetter reports whether r is a Hebrew consonant.
func IsLetter(r rune) bool { return r >= 0x05D0 && r <= 0x05EA }

// IsMark reports whether r is a Hebrew combining mark.
func IsMark(r rune) bool { return r >= 0x0591 && r <= 0x05C7 }
