package usecase

import (
	"context"

	"github.com/eslsoft/hebcorpus/internal/repository"
	"github.com/eslsoft/hebcorpus/pkg/hebrew"
)

// exactBibleMatch reports whether the paragraphs reproduce the linked biblical
// chapter verse for verse once both sides are reduced to consonants. Without
// a linked book, or when the canonical chapter has no verses, it is false.
func exactBibleMatch(ctx context.Context, canon repository.CanonRepository, linkedBookID *int64, chapter int, paragraphs []string) (bool, error) {
	if linkedBookID == nil {
		return false, nil
	}
	verses, err := canon.ListCanonicalVerses(ctx, *linkedBookID, chapter)
	if err != nil {
		return false, err
	}
	if len(verses) == 0 || len(verses) != len(paragraphs) {
		return false, nil
	}
	for i, verse := range verses {
		if hebrew.Consonants(verse.Text()) != hebrew.Consonants(paragraphs[i]) {
			return false, nil
		}
	}
	return true, nil
}
