package repository

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/eslsoft/hebcorpus/internal/entity"
	"github.com/eslsoft/hebcorpus/pkg/hebrew"
)

// CanonImporter loads canonical books, lexemes and words. Rows that already
// exist are left untouched so an import can be re-run.
type CanonImporter struct {
	store *Store
}

func NewCanonImporter(store *Store) *CanonImporter {
	return &CanonImporter{store: store}
}

type verseID struct {
	book    int64
	chapter int
	verse   int
}

// Import writes corpus in a single transaction. Missing consonantal keys are
// derived from the lemma.
func (i *CanonImporter) Import(ctx context.Context, corpus *entity.CanonCorpus) (*entity.CanonImportStats, error) {
	stats := &entity.CanonImportStats{}
	err := i.store.inTx(ctx, func(tx *sql.Tx) error {
		for _, book := range corpus.Books {
			n, err := i.insert(ctx, tx, i.store.builder().Insert("hebrew_books").
				Columns("id", "name").
				Values(book.ID, book.Name).
				OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()))
			if err != nil {
				return fmt.Errorf("import book %d: %w", book.ID, err)
			}
			stats.Books += n
		}

		for _, lex := range corpus.Lexemes {
			clean := lex.LemmaClean
			if clean == nil || *clean == "" {
				if c := hebrew.Consonants(lex.Lemma); c != "" {
					clean = &c
				}
			}
			n, err := i.insert(ctx, tx, i.store.builder().Insert("hebrew_lexemes").
				Columns("id", "lemma", "lemma_vocalized", "lemma_clean", "gloss").
				Values(lex.ID, lex.Lemma, nullString(lex.LemmaVocalized), nullStringPtr(clean), nullString(lex.Gloss)).
				OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()))
			if err != nil {
				return fmt.Errorf("import lexeme %s: %w", lex.ID, err)
			}
			stats.Lexemes += n
		}

		seen := make(map[verseID]bool)
		for _, w := range corpus.Words {
			key := verseID{w.BookID, w.ChapterNumber, w.VerseNumber}
			if !seen[key] {
				seen[key] = true
				n, err := i.insert(ctx, tx, i.store.builder().Insert("hebrew_verses").
					Columns("book_id", "chapter_number", "verse_number").
					Values(w.BookID, w.ChapterNumber, w.VerseNumber).
					OnConflict(entsql.ConflictColumns("book_id", "chapter_number", "verse_number"), entsql.DoNothing()))
				if err != nil {
					return fmt.Errorf("import verse %d/%d/%d: %w", w.BookID, w.ChapterNumber, w.VerseNumber, err)
				}
				stats.Verses += n
			}

			clean := w.LemmaClean
			if clean == "" {
				clean = hebrew.Consonants(w.Lemma)
			}
			n, err := i.insert(ctx, tx, i.store.builder().Insert("hebrew_words").
				Columns("book_id", "chapter_number", "verse_number", "word_seq", "surface", "lemma", "lemma_clean").
				Values(w.BookID, w.ChapterNumber, w.VerseNumber, w.WordSeq, w.Surface, nullString(w.Lemma), nullString(clean)).
				OnConflict(entsql.ConflictColumns("book_id", "chapter_number", "verse_number", "word_seq"), entsql.DoNothing()))
			if err != nil {
				return fmt.Errorf("import word %d/%d/%d/%d: %w", w.BookID, w.ChapterNumber, w.VerseNumber, w.WordSeq, err)
			}
			stats.Words += n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (i *CanonImporter) insert(ctx context.Context, tx *sql.Tx, stmt *entsql.InsertBuilder) (int, error) {
	res, err := i.store.exec(ctx, tx, stmt)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
