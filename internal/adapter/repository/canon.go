package repository

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/eslsoft/hebcorpus/internal/entity"
	"github.com/eslsoft/hebcorpus/internal/repository"
)

type CanonRepository struct {
	store *Store
}

func NewCanonRepository(store *Store) repository.CanonRepository {
	return &CanonRepository{store: store}
}

// ListCanonicalVerses returns every verse row of the chapter with its words
// in order. A verse without stored words is returned with no words, so the
// verse count always matches hebrew_verses.
func (r *CanonRepository) ListCanonicalVerses(ctx context.Context, hebrewBookID int64, chapter int) ([]entity.CanonicalVerse, error) {
	b := r.store.builder()
	v := b.Table("hebrew_verses")
	w := b.Table("hebrew_words")
	stmt := b.Select(v.C("verse_number"), w.C("surface")).
		From(v).
		LeftJoin(w).
		OnP(entsql.And(
			entsql.ColumnsEQ(v.C("book_id"), w.C("book_id")),
			entsql.ColumnsEQ(v.C("chapter_number"), w.C("chapter_number")),
			entsql.ColumnsEQ(v.C("verse_number"), w.C("verse_number")),
		)).
		Where(entsql.And(
			entsql.EQ(v.C("book_id"), hebrewBookID),
			entsql.EQ(v.C("chapter_number"), chapter),
		)).
		OrderBy(v.C("verse_number"), w.C("word_seq"))

	rows, err := r.store.query(ctx, r.store.db, stmt)
	if err != nil {
		return nil, fmt.Errorf("list canonical verses: %w", err)
	}
	defer rows.Close()

	var verses []entity.CanonicalVerse
	for rows.Next() {
		var (
			number  int
			surface sql.NullString
		)
		if err := rows.Scan(&number, &surface); err != nil {
			return nil, fmt.Errorf("scan canonical word: %w", err)
		}
		if n := len(verses); n == 0 || verses[n-1].Number != number {
			verses = append(verses, entity.CanonicalVerse{Number: number, Words: []string{}})
		}
		if surface.Valid {
			last := &verses[len(verses)-1]
			last.Words = append(last.Words, surface.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list canonical verses: %w", err)
	}
	return verses, nil
}

var canonicalWordColumns = []string{"id", "book_id", "chapter_number", "verse_number", "word_seq", "surface", "lemma", "lemma_clean"}

var canonicalWordOrder = []string{"book_id", "chapter_number", "verse_number", "word_seq"}

func (r *CanonRepository) SearchWords(ctx context.Context, q repository.WordSearchQuery) ([]entity.CanonicalWord, error) {
	var preds []*entsql.Predicate
	contains := func(column, value string) {
		if value != "" {
			preds = append(preds, entsql.Contains(column, value))
		}
	}
	contains("surface", q.Surface)
	if q.Bare != q.Surface {
		contains("surface", q.Bare)
	}
	contains("lemma_clean", q.Consonants)
	contains("lemma", q.Consonants)
	if len(preds) == 0 {
		return []entity.CanonicalWord{}, nil
	}

	stmt := r.store.builder().Select(canonicalWordColumns...).
		From(r.store.builder().Table("hebrew_words")).
		Where(entsql.Or(preds...)).
		OrderBy(canonicalWordOrder...)
	if q.Limit > 0 {
		stmt.Limit(q.Limit)
	}
	return r.listWords(ctx, "search canonical words", stmt)
}

func (r *CanonRepository) FindWordsBySurface(ctx context.Context, surface string, limit int) ([]entity.CanonicalWord, error) {
	stmt := r.store.builder().Select(canonicalWordColumns...).
		From(r.store.builder().Table("hebrew_words")).
		Where(entsql.EQ("surface", surface)).
		OrderBy(canonicalWordOrder...).
		Limit(limit)
	return r.listWords(ctx, "find canonical words", stmt)
}

func (r *CanonRepository) listWords(ctx context.Context, op string, stmt *entsql.Selector) ([]entity.CanonicalWord, error) {
	rows, err := r.store.query(ctx, r.store.db, stmt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []entity.CanonicalWord{}
	for rows.Next() {
		var (
			w          entity.CanonicalWord
			lemma      sql.NullString
			lemmaClean sql.NullString
		)
		if err := rows.Scan(&w.ID, &w.BookID, &w.ChapterNumber, &w.VerseNumber, &w.WordSeq, &w.Surface, &lemma, &lemmaClean); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		w.Lemma = lemma.String
		w.LemmaClean = lemmaClean.String
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
