package hebrew

import (
	"strings"
	"unicode"
)

const (
	maqaf    = '־'
	paseq    = '׀'
	sofPasuq = '׃'
	geresh   = '׳'
	gershaim = '״'
)

// prefixLetters are the inseparable prefixes: vav, kaf, mem, lamed, bet, he, shin.
var prefixLetters = map[rune]struct{}{
	'ו': {}, 'כ': {}, 'מ': {}, 'ל': {}, 'ב': {}, 'ה': {}, 'ש': {},
}

func isSplitter(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case maqaf, paseq, sofPasuq, geresh, gershaim,
		'.', ',', ';', ':', '!', '?', '"', '\'', '(', ')', '[', ']', '{', '}', '<', '>':
		return true
	}
	return false
}

// Clusters groups part into letter+marks units. Runes that are neither a
// letter nor a mark attached to a preceding letter are dropped.
func Clusters(part string) []string {
	var (
		clusters []string
		cur      strings.Builder
		open     bool
	)
	flush := func() {
		if open {
			clusters = append(clusters, cur.String())
			cur.Reset()
			open = false
		}
	}
	for _, r := range part {
		switch {
		case IsLetter(r):
			flush()
			cur.WriteRune(r)
			open = true
		case IsMark(r) && open:
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return clusters
}

// Segment splits a surface word into prefix clusters followed by a body.
//
// The word is first cut on whitespace, maqaf, paseq, sof pasuq and common
// punctuation. For each part, a leading cluster whose letter is one of the
// seven prefixes is peeled off while more than two clusters remain, so short
// words such as "מה" are never split. Whatever is left forms one body segment.
// Marks stay attached to their letters.
func Segment(word string) []string {
	parts := strings.FieldsFunc(word, isSplitter)
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		clusters := Clusters(part)
		for len(clusters) > 2 {
			first, _ := firstRune(clusters[0])
			if _, ok := prefixLetters[first]; !ok {
				break
			}
			segments = append(segments, clusters[0])
			clusters = clusters[1:]
		}
		if len(clusters) > 0 {
			segments = append(segments, strings.Join(clusters, ""))
		}
	}
	return segments
}

func firstRune(s string) (rune, bool) {
	for _, r := range s {
		return r, true
	}
	return 0, false
}
