package repository

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/eslsoft/hebcorpus/internal/entity"
	"github.com/eslsoft/hebcorpus/internal/repository"
)

type LexiconRepository struct {
	store *Store
}

func NewLexiconRepository(store *Store) repository.LexiconRepository {
	return &LexiconRepository{store: store}
}

func (r *LexiconRepository) ListBiblicalLexemes(ctx context.Context) ([]entity.BiblicalLexeme, error) {
	b := r.store.builder()
	rows, err := r.store.query(ctx, r.store.db,
		b.Select("id", "lemma", "lemma_vocalized", "lemma_clean", "gloss").
			From(b.Table("hebrew_lexemes")).
			OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("list biblical lexemes: %w", err)
	}
	defer rows.Close()

	var out []entity.BiblicalLexeme
	for rows.Next() {
		var (
			lex        entity.BiblicalLexeme
			vocalized  sql.NullString
			lemmaClean sql.NullString
			gloss      sql.NullString
		)
		if err := rows.Scan(&lex.ID, &lex.Lemma, &vocalized, &lemmaClean, &gloss); err != nil {
			return nil, fmt.Errorf("scan biblical lexeme: %w", err)
		}
		lex.LemmaVocalized = vocalized.String
		lex.LemmaClean = stringPtrFromNull(lemmaClean)
		lex.Gloss = gloss.String
		out = append(out, lex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list biblical lexemes: %w", err)
	}
	return out, nil
}

func (r *LexiconRepository) ListCustomLexemes(ctx context.Context) ([]entity.CustomLexeme, error) {
	rows, err := r.store.query(ctx, r.store.db, r.store.selectCustomLexemes().OrderBy("created_at", "id"))
	if err != nil {
		return nil, fmt.Errorf("list custom lexemes: %w", err)
	}
	defer rows.Close()

	var out []entity.CustomLexeme
	for rows.Next() {
		lex, err := scanCustomLexeme(rows)
		if err != nil {
			return nil, fmt.Errorf("scan custom lexeme: %w", err)
		}
		out = append(out, *lex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list custom lexemes: %w", err)
	}
	return out, nil
}

var customLexemeColumns = []string{"id", "lemma", "lemma_clean", "source", "notes", "created_at"}

func (s *Store) selectCustomLexemes() *entsql.Selector {
	b := s.builder()
	return b.Select(customLexemeColumns...).From(b.Table("custom_hebrew_lexemes"))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomLexeme(row rowScanner) (*entity.CustomLexeme, error) {
	var (
		lex    entity.CustomLexeme
		source string
		notes  sql.NullString
	)
	if err := row.Scan(&lex.ID, &lex.Lemma, &lex.LemmaClean, &source, &notes, &lex.CreatedAt); err != nil {
		return nil, err
	}
	lex.Source = entity.LexemeSource(source)
	lex.Notes = notes.String
	return &lex, nil
}
