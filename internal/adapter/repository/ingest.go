package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/eslsoft/hebcorpus/internal/entity"
	"github.com/eslsoft/hebcorpus/internal/repository"
)

const resolveLexemeAttempts = 3

type IngestRepository struct {
	store *Store
}

func NewIngestRepository(store *Store) repository.IngestRepository {
	return &IngestRepository{store: store}
}

// WithinChapter serialises writers of the same chapter. PostgreSQL takes a
// transaction-scoped advisory lock; SQLite runs on a single connection so
// the transaction itself is exclusive.
func (r *IngestRepository) WithinChapter(ctx context.Context, key entity.ChapterKey, fn func(ctx context.Context, w repository.ChapterWriter) error) error {
	return r.store.inTx(ctx, func(tx *sql.Tx) error {
		if r.store.dialect == DialectPostgres {
			if key.BookID > math.MaxInt32 || key.BookID < math.MinInt32 {
				return fmt.Errorf("book id %d out of lock range", key.BookID)
			}
			if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, int32(key.BookID), int32(key.Chapter)); err != nil {
				return fmt.Errorf("lock chapter %s: %w", key, err)
			}
		}
		return fn(ctx, &chapterWriter{store: r.store, tx: tx})
	})
}

type chapterWriter struct {
	store *Store
	tx    *sql.Tx
}

func (w *chapterWriter) EnsureChapter(ctx context.Context, key entity.ChapterKey) error {
	_, err := w.store.exec(ctx, w.tx, w.store.builder().Insert("custom_hebrew_chapters").
		Columns("book_id", "chapter_number").
		Values(key.BookID, key.Chapter).
		OnConflict(entsql.ConflictColumns("book_id", "chapter_number"), entsql.DoNothing()))
	if err != nil {
		return fmt.Errorf("ensure chapter %s: %w", key, err)
	}
	return nil
}

func (w *chapterWriter) ClearChapter(ctx context.Context, key entity.ChapterKey) error {
	for _, table := range []string{"custom_hebrew_words", "custom_hebrew_verses"} {
		stmt := w.store.builder().Delete(table).Where(entsql.And(
			entsql.EQ("book_id", key.BookID),
			entsql.EQ("chapter_number", key.Chapter),
		))
		if _, err := w.store.exec(ctx, w.tx, stmt); err != nil {
			return fmt.Errorf("clear %s of %s: %w", table, key, err)
		}
	}
	return nil
}

func (w *chapterWriter) InsertVerse(ctx context.Context, key entity.VerseKey) error {
	_, err := w.store.exec(ctx, w.tx, w.store.builder().Insert("custom_hebrew_verses").
		Columns("book_id", "chapter_number", "verse_number").
		Values(key.BookID, key.Chapter, key.Verse))
	if err != nil {
		return fmt.Errorf("insert verse %s: %w", key, err)
	}
	return nil
}

func (w *chapterWriter) InsertWord(ctx context.Context, word *entity.CustomWord) error {
	if err := word.Lexeme.Validate(); err != nil {
		return err
	}
	biblicalID, customID := word.Lexeme.Columns()
	_, err := w.store.exec(ctx, w.tx, w.store.builder().Insert("custom_hebrew_words").
		Columns("book_id", "chapter_number", "verse_number", "word_seq", "surface", "consonants", "lexeme_id", "custom_lexeme_id").
		Values(word.Key.BookID, word.Key.Chapter, word.Key.Verse, word.Key.Seq,
			word.Surface, word.Consonants, nullStringPtr(biblicalID), nullStringPtr(customID)))
	if err != nil {
		return fmt.Errorf("insert word %s: %w", word.Key, err)
	}
	return nil
}

// ResolveCustomLexeme looks the consonantal key up and inserts it when
// missing. The insert never fails on a concurrent duplicate: it yields no
// row and the lookup is repeated.
func (w *chapterWriter) ResolveCustomLexeme(ctx context.Context, surface, consonants string) (*entity.CustomLexeme, error) {
	for attempt := 0; attempt < resolveLexemeAttempts; attempt++ {
		lex, err := scanCustomLexeme(w.store.queryRow(ctx, w.tx,
			w.store.selectCustomLexemes().Where(entsql.EQ("lemma_clean", consonants))))
		if err == nil {
			return lex, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find custom lexeme %q: %w", consonants, err)
		}

		created := &entity.CustomLexeme{
			ID:         uuid.NewString(),
			Lemma:      surface,
			LemmaClean: consonants,
			Source:     entity.LexemeSourceCustom,
			CreatedAt:  time.Now().UTC(),
		}
		var id string
		insert := w.store.builder().Insert("custom_hebrew_lexemes").
			Columns("id", "lemma", "lemma_clean", "source", "created_at").
			Values(created.ID, created.Lemma, created.LemmaClean, string(created.Source), created.CreatedAt).
			OnConflict(entsql.ConflictColumns("lemma_clean"), entsql.DoNothing()).
			Returning("id")
		err = w.store.queryRow(ctx, w.tx, insert).Scan(&id)
		switch {
		case err == nil:
			return created, nil
		case errors.Is(err, sql.ErrNoRows):
			continue
		default:
			return nil, fmt.Errorf("create custom lexeme %q: %w", consonants, err)
		}
	}
	return nil, fmt.Errorf("resolve custom lexeme %q: gave up after %d attempts", consonants, resolveLexemeAttempts)
}

func (w *chapterWriter) InsertAudit(ctx context.Context, audit *entity.IngestAudit) (*entity.IngestAudit, error) {
	return insertAudit(ctx, w.store, w.tx, audit)
}
