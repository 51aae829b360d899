package usecase

import (
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/eslsoft/hebcorpus/pkg/hebrew"
)

type piece struct {
	surface    string
	consonants string
}

// tokenizeParagraph segments every whitespace-separated word. A word the
// segmenter split is kept whole when its recombined consonants are already
// in the lexicon. Pieces without Hebrew letters are dropped.
func tokenizeParagraph(paragraph string, ix lexiconIndex) []piece {
	var out []piece
	for _, word := range hebrew.Words(paragraph) {
		segments := hebrew.Segment(word)
		if len(segments) > 1 {
			joined := strings.Join(segments, "")
			if cons := hebrew.Consonants(joined); ix.has(cons) {
				out = append(out, piece{surface: joined, consonants: cons})
				continue
			}
		}
		for _, seg := range segments {
			if cons := hebrew.Consonants(seg); cons != "" {
				out = append(out, piece{surface: seg, consonants: cons})
			}
		}
	}
	return out
}

// overridePieces turns an admin-provided segmentation into pieces.
func overridePieces(parts []string) []piece {
	out := make([]piece, 0, len(parts))
	for _, part := range parts {
		if cons := hebrew.Consonants(part); cons != "" {
			out = append(out, piece{surface: part, consonants: cons})
		}
	}
	return out
}

// normalizeSegmentationOverrides trims every part, drops blank parts, drops
// verses left empty and ignores keys that are not canonical positive verse
// numbers. "01" or " 1" would collide with "1", so only "1" addresses verse 1.
func normalizeSegmentationOverrides(raw map[string][]string) map[int][]string {
	out := make(map[int][]string, len(raw))
	for key, parts := range raw {
		verse, err := strconv.Atoi(key)
		if err != nil || verse <= 0 || strconv.Itoa(verse) != key {
			continue
		}
		cleaned := lo.FilterMap(parts, func(p string, _ int) (string, bool) {
			p = strings.TrimSpace(p)
			return p, p != ""
		})
		if len(cleaned) > 0 {
			out[verse] = cleaned
		}
	}
	return out
}

// sortedVerses lists override verse numbers in ascending order.
func sortedVerses(overrides map[int][]string) []int {
	verses := lo.Keys(overrides)
	sort.Ints(verses)
	return verses
}
