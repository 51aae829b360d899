package repository

import (
	"context"

	"github.com/eslsoft/hebcorpus/internal/entity"
)

// ChapterWriter mutates one chapter inside a transaction.
type ChapterWriter interface {
	EnsureChapter(ctx context.Context, key entity.ChapterKey) error
	// ClearChapter removes every word and then every verse of the chapter.
	ClearChapter(ctx context.Context, key entity.ChapterKey) error
	InsertVerse(ctx context.Context, key entity.VerseKey) error
	InsertWord(ctx context.Context, word *entity.CustomWord) error
	// ResolveCustomLexeme returns the custom lexeme whose lemma_clean equals
	// consonants, creating it with lemma = surface when absent. Concurrent
	// callers resolving the same key observe the same row.
	ResolveCustomLexeme(ctx context.Context, surface, consonants string) (*entity.CustomLexeme, error)
	InsertAudit(ctx context.Context, audit *entity.IngestAudit) (*entity.IngestAudit, error)
}

// IngestRepository runs chapter replacements atomically.
type IngestRepository interface {
	// WithinChapter runs fn in a single transaction that holds an exclusive
	// lock on key. Any error returned by fn rolls everything back.
	WithinChapter(ctx context.Context, key entity.ChapterKey, fn func(ctx context.Context, w ChapterWriter) error) error
}

// ListAuditQuery holds parameters for listing ingestion audits.
type ListAuditQuery struct {
	Pagination
	FilterOrder
}

// AuditRepository stores the append-only audit trail.
type AuditRepository interface {
	Create(ctx context.Context, audit *entity.IngestAudit) (*entity.IngestAudit, error)
	List(ctx context.Context, query *ListAuditQuery) ([]entity.IngestAudit, int64, error)
}
