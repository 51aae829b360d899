package repository

import (
	"context"

	"github.com/eslsoft/hebcorpus/internal/entity"
)

// LexiconRepository reads both lexicons in full so candidate lookups can be
// indexed by consonantal key.
type LexiconRepository interface {
	ListBiblicalLexemes(ctx context.Context) ([]entity.BiblicalLexeme, error)
	ListCustomLexemes(ctx context.Context) ([]entity.CustomLexeme, error)
}

// WordSearchQuery matches canonical words by raw surface, mark-stripped
// surface or consonantal lemma. Empty fields are ignored.
type WordSearchQuery struct {
	Surface    string
	Bare       string
	Consonants string
	Limit      int
}

// CanonRepository reads the biblical text.
type CanonRepository interface {
	// ListCanonicalVerses returns the verses of a biblical chapter ordered by
	// verse number, each carrying its word surfaces in word_seq order.
	ListCanonicalVerses(ctx context.Context, hebrewBookID int64, chapter int) ([]entity.CanonicalVerse, error)
	SearchWords(ctx context.Context, query WordSearchQuery) ([]entity.CanonicalWord, error)
	FindWordsBySurface(ctx context.Context, surface string, limit int) ([]entity.CanonicalWord, error)
}
