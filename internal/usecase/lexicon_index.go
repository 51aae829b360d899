package usecase

import (
	"context"

	"github.com/eslsoft/hebcorpus/internal/entity"
	"github.com/eslsoft/hebcorpus/internal/repository"
)

// lexiconIndex maps a consonantal key to its candidates. Biblical entries
// come first, then custom ones, each in repository order.
type lexiconIndex map[string][]entity.LexemeCandidate

// lookup never returns nil so analyses always serialise an array.
func (ix lexiconIndex) lookup(consonants string) []entity.LexemeCandidate {
	if found := ix[consonants]; len(found) > 0 {
		return found
	}
	return []entity.LexemeCandidate{}
}

func (ix lexiconIndex) has(consonants string) bool {
	return consonants != "" && len(ix[consonants]) > 0
}

// buildLexiconIndex snapshots both lexicons. It is rebuilt for every analysis
// so custom lexemes created by an earlier commit are visible immediately.
func buildLexiconIndex(ctx context.Context, repo repository.LexiconRepository) (lexiconIndex, error) {
	biblical, err := repo.ListBiblicalLexemes(ctx)
	if err != nil {
		return nil, entity.StorageError("load biblical lexicon", err)
	}
	custom, err := repo.ListCustomLexemes(ctx)
	if err != nil {
		return nil, entity.StorageError("load custom lexicon", err)
	}

	ix := make(lexiconIndex, len(biblical)+len(custom))
	for _, lex := range biblical {
		if lex.LemmaClean == nil || *lex.LemmaClean == "" {
			continue
		}
		key := *lex.LemmaClean
		ix[key] = append(ix[key], entity.LexemeCandidate{
			Source:     entity.LexemeSourceBiblical,
			ID:         lex.ID,
			Lemma:      lex.Lemma,
			Consonants: key,
		})
	}
	for _, lex := range custom {
		if lex.LemmaClean == "" {
			continue
		}
		ix[lex.LemmaClean] = append(ix[lex.LemmaClean], lex.Candidate())
	}
	return ix, nil
}
