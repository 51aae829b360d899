package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// column types that differ between dialects
type columnTypes struct {
	serial    string
	timestamp string
	boolean   string
}

var dialectTypes = map[Dialect]columnTypes{
	DialectPostgres: {serial: "BIGSERIAL PRIMARY KEY", timestamp: "TIMESTAMPTZ", boolean: "BOOLEAN"},
	DialectSQLite:   {serial: "INTEGER PRIMARY KEY AUTOINCREMENT", timestamp: "TIMESTAMP", boolean: "BOOLEAN"},
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS hebrew_books (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS hebrew_lexemes (
		id TEXT PRIMARY KEY,
		lemma TEXT NOT NULL,
		lemma_vocalized TEXT,
		lemma_clean TEXT,
		gloss TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS hebrew_lexemes_lemma_clean_idx ON hebrew_lexemes (lemma_clean)`,
	`CREATE TABLE IF NOT EXISTS hebrew_verses (
		book_id BIGINT NOT NULL REFERENCES hebrew_books (id) ON DELETE CASCADE,
		chapter_number INTEGER NOT NULL,
		verse_number INTEGER NOT NULL,
		PRIMARY KEY (book_id, chapter_number, verse_number)
	)`,
	`CREATE TABLE IF NOT EXISTS hebrew_words (
		id {{serial}},
		book_id BIGINT NOT NULL,
		chapter_number INTEGER NOT NULL,
		verse_number INTEGER NOT NULL,
		word_seq INTEGER NOT NULL,
		surface TEXT NOT NULL,
		lemma TEXT,
		lemma_clean TEXT,
		UNIQUE (book_id, chapter_number, verse_number, word_seq),
		FOREIGN KEY (book_id, chapter_number, verse_number)
			REFERENCES hebrew_verses (book_id, chapter_number, verse_number) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS hebrew_words_surface_idx ON hebrew_words (surface)`,
	`CREATE TABLE IF NOT EXISTS custom_hebrew_books (
		id {{serial}},
		slug TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		description TEXT,
		source TEXT,
		linked_hebrew_book_id BIGINT REFERENCES hebrew_books (id),
		created_at {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS custom_hebrew_lexemes (
		id TEXT PRIMARY KEY,
		lemma TEXT NOT NULL,
		lemma_clean TEXT NOT NULL UNIQUE,
		source TEXT NOT NULL DEFAULT 'CUSTOM',
		notes TEXT,
		created_at {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS custom_hebrew_chapters (
		book_id BIGINT NOT NULL REFERENCES custom_hebrew_books (id) ON DELETE CASCADE,
		chapter_number INTEGER NOT NULL,
		PRIMARY KEY (book_id, chapter_number)
	)`,
	`CREATE TABLE IF NOT EXISTS custom_hebrew_verses (
		book_id BIGINT NOT NULL,
		chapter_number INTEGER NOT NULL,
		verse_number INTEGER NOT NULL,
		PRIMARY KEY (book_id, chapter_number, verse_number),
		FOREIGN KEY (book_id, chapter_number)
			REFERENCES custom_hebrew_chapters (book_id, chapter_number) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS custom_hebrew_words (
		book_id BIGINT NOT NULL,
		chapter_number INTEGER NOT NULL,
		verse_number INTEGER NOT NULL,
		word_seq INTEGER NOT NULL,
		surface TEXT NOT NULL,
		consonants TEXT NOT NULL,
		lexeme_id TEXT REFERENCES hebrew_lexemes (id),
		custom_lexeme_id TEXT REFERENCES custom_hebrew_lexemes (id),
		PRIMARY KEY (book_id, chapter_number, verse_number, word_seq),
		FOREIGN KEY (book_id, chapter_number, verse_number)
			REFERENCES custom_hebrew_verses (book_id, chapter_number, verse_number) ON DELETE CASCADE,
		CHECK ((lexeme_id IS NULL) <> (custom_lexeme_id IS NULL))
	)`,
	`CREATE TABLE IF NOT EXISTS custom_hebrew_ingest_audits (
		id {{serial}},
		custom_hebrew_book_id BIGINT NOT NULL,
		chapter_number INTEGER NOT NULL,
		actor_user_id TEXT,
		status TEXT NOT NULL,
		exact_bible_match {{boolean}} NOT NULL DEFAULT FALSE,
		verse_count INTEGER NOT NULL DEFAULT 0,
		token_count INTEGER NOT NULL DEFAULT 0,
		known_token_count INTEGER NOT NULL DEFAULT 0,
		new_token_count INTEGER NOT NULL DEFAULT 0,
		override_count INTEGER NOT NULL DEFAULT 0,
		summary TEXT NOT NULL,
		created_at {{timestamp}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS custom_hebrew_ingest_audits_book_idx
		ON custom_hebrew_ingest_audits (custom_hebrew_book_id, chapter_number)`,
}

// SchemaStatements renders the DDL for the store's dialect.
func (s *Store) SchemaStatements() ([]string, error) {
	types, ok := dialectTypes[s.dialect]
	if !ok {
		return nil, fmt.Errorf("no schema for dialect %q", s.dialect)
	}
	r := strings.NewReplacer("{{serial}}", types.serial, "{{timestamp}}", types.timestamp, "{{boolean}}", types.boolean)
	out := make([]string, len(schemaStatements))
	for i, stmt := range schemaStatements {
		out[i] = r.Replace(stmt)
	}
	return out, nil
}

// Migrate creates every table and index that does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	stmts, err := s.SchemaStatements()
	if err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
		}
		return nil
	})
}
