package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/hebcorpus/internal/entity"
	"github.com/eslsoft/hebcorpus/internal/repository"
	"github.com/eslsoft/hebcorpus/pkg/hebrew"
)

const msgMissingFields = "Missing required fields"

// IngestUsecase previews and commits custom Hebrew chapters.
type IngestUsecase interface {
	// Analyze is read-only and deterministic for a fixed database state.
	Analyze(ctx context.Context, draft entity.ChapterDraft) (*entity.IngestAnalysis, error)
	// Commit recomputes the analysis, refuses a stale digest and either
	// records an exact-match skip or replaces the chapter atomically.
	Commit(ctx context.Context, req *entity.CommitRequest) (*entity.CommitResult, error)
}

// NewIngestUsecase wires the repositories the pipeline reads and writes.
func NewIngestUsecase(
	books repository.BookRepository,
	lexicon repository.LexiconRepository,
	canon repository.CanonRepository,
	ingest repository.IngestRepository,
	audits repository.AuditRepository,
	logger *logrus.Logger,
) IngestUsecase {
	return &ingestUsecase{
		books:   books,
		lexicon: lexicon,
		canon:   canon,
		ingest:  ingest,
		audits:  audits,
		logger:  logger,
		clock:   time.Now,
	}
}

type ingestUsecase struct {
	books   repository.BookRepository
	lexicon repository.LexiconRepository
	canon   repository.CanonRepository
	ingest  repository.IngestRepository
	audits  repository.AuditRepository
	logger  *logrus.Logger
	clock   func() time.Time
}

func (u *ingestUsecase) Analyze(ctx context.Context, draft entity.ChapterDraft) (*entity.IngestAnalysis, error) {
	analysis, _, err := u.analyze(ctx, draft)
	return analysis, err
}

// analyze also returns the custom book, nil when it does not exist.
func (u *ingestUsecase) analyze(ctx context.Context, draft entity.ChapterDraft) (*entity.IngestAnalysis, *entity.CustomBook, error) {
	if draft.BookID <= 0 || draft.ChapterNumber <= 0 || strings.TrimSpace(draft.RawText) == "" {
		return nil, nil, entity.ValidationError(msgMissingFields)
	}

	book, err := u.books.GetCustomBook(ctx, draft.BookID)
	switch {
	case errors.Is(err, entity.ErrBookNotFound):
		book = nil
	case err != nil:
		return nil, nil, entity.StorageError("load custom book", err)
	}
	var linked *int64
	if book != nil {
		linked = book.LinkedHebrewBookID
	}

	index, err := buildLexiconIndex(ctx, u.lexicon)
	if err != nil {
		return nil, nil, err
	}

	paragraphs := hebrew.SplitParagraphs(draft.RawText)
	overrides := normalizeSegmentationOverrides(draft.SegmentationOverrides)

	analysis := &entity.IngestAnalysis{
		LinkedHebrewBookID: linked,
		Verses:             make([]entity.AnalyzedVerse, 0, len(paragraphs)),
	}
	for i, paragraph := range paragraphs {
		number := i + 1
		var pieces []piece
		if parts, ok := overrides[number]; ok {
			pieces = overridePieces(parts)
		} else {
			pieces = tokenizeParagraph(paragraph, index)
		}

		verse := entity.AnalyzedVerse{
			Number: number,
			Text:   paragraph,
			Tokens: make([]entity.AnalyzedToken, 0, len(pieces)),
		}
		for j, p := range pieces {
			candidates := index.lookup(p.consonants)
			token := entity.AnalyzedToken{
				Key:        entity.TokenKey{Verse: number, Position: j + 1},
				Surface:    p.surface,
				Consonants: p.consonants,
				Known:      len(candidates) > 0,
				Candidates: candidates,
			}
			if token.Known {
				first := candidates[0]
				token.Selected = &first
				analysis.KnownTokenCount++
			}
			analysis.TokenCount++
			verse.Tokens = append(verse.Tokens, token)
		}
		analysis.Verses = append(analysis.Verses, verse)
	}
	analysis.VerseCount = len(analysis.Verses)
	analysis.NewTokenCount = analysis.TokenCount - analysis.KnownTokenCount

	analysis.ExactBibleMatch, err = exactBibleMatch(ctx, u.canon, linked, draft.ChapterNumber, paragraphs)
	if err != nil {
		return nil, nil, entity.StorageError("load canonical chapter", err)
	}

	analysis.Digest, err = analysisDigest(draft.BookID, draft.ChapterNumber, paragraphs, overrides)
	if err != nil {
		return nil, nil, err
	}
	return analysis, book, nil
}

func (u *ingestUsecase) Commit(ctx context.Context, req *entity.CommitRequest) (*entity.CommitResult, error) {
	if req == nil || strings.TrimSpace(req.AnalysisDigest) == "" {
		return nil, entity.ValidationError(msgMissingFields)
	}

	analysis, book, err := u.analyze(ctx, req.Draft)
	if err != nil {
		return nil, err
	}
	if analysis.Digest != strings.TrimSpace(req.AnalysisDigest) {
		err := entity.StaleAnalysisError()
		u.recordRejection(ctx, req, analysis, err)
		return nil, err
	}
	if book == nil {
		return nil, &entity.IngestError{Kind: entity.KindNotFound, Message: entity.ErrBookNotFound.Error()}
	}

	audit := u.newAudit(req, analysis)
	if analysis.ExactBibleMatch {
		audit.Status = entity.IngestStatusSkippedExactMatch
		audit.ExactBibleMatch = true
		audit.Summary = entity.SummarySkippedExactMatch
		saved, err := u.audits.Create(ctx, audit)
		if err != nil {
			return nil, entity.StorageError("record ingest audit", err)
		}
		u.logOutcome(saved)
		return saved.Result(), nil
	}

	key := req.Draft.Key()
	var saved *entity.IngestAudit
	err = u.ingest.WithinChapter(ctx, key, func(ctx context.Context, w repository.ChapterWriter) error {
		if err := w.EnsureChapter(ctx, key); err != nil {
			return err
		}
		if err := w.ClearChapter(ctx, key); err != nil {
			return err
		}
		for _, verse := range analysis.Verses {
			verseKey := key.Verse(verse.Number)
			if err := w.InsertVerse(ctx, verseKey); err != nil {
				return err
			}
			for i := range verse.Tokens {
				token := &verse.Tokens[i]
				ref, err := resolveLexeme(ctx, w, token, req.Overrides)
				if err != nil {
					return err
				}
				word := &entity.CustomWord{
					Key:        verseKey.Word(token.Key.Position),
					Surface:    token.Surface,
					Consonants: token.Consonants,
					Lexeme:     ref,
				}
				if err := w.InsertWord(ctx, word); err != nil {
					return err
				}
			}
		}

		audit.Status = entity.IngestStatusImported
		audit.Summary = entity.SummaryImported
		var err error
		saved, err = w.InsertAudit(ctx, audit)
		return err
	})
	if err != nil {
		if entity.KindOf(err) == entity.KindInvalidOverride {
			u.recordRejection(ctx, req, analysis, err)
			return nil, err
		}
		return nil, entity.StorageError("commit chapter", err)
	}

	u.logOutcome(saved)
	return saved.Result(), nil
}

// resolveLexeme picks the lexeme a token is stored against: the override when
// present (it must name one of the token's candidates), else the default
// candidate, else a custom lexeme found or created by consonants.
func resolveLexeme(ctx context.Context, w repository.ChapterWriter, token *entity.AnalyzedToken, overrides map[entity.TokenKey]entity.LexemeRef) (entity.LexemeRef, error) {
	selected := token.Selected
	if ref, ok := overrides[token.Key]; ok {
		selected = nil
		for i := range token.Candidates {
			if c := token.Candidates[i]; c.ID == ref.ID && c.Source == ref.Source {
				selected = &c
				break
			}
		}
		if selected == nil {
			return entity.LexemeRef{}, entity.InvalidOverrideError(token.Key)
		}
	}
	if selected != nil {
		return selected.Ref(), nil
	}

	lexeme, err := w.ResolveCustomLexeme(ctx, token.Surface, token.Consonants)
	if err != nil {
		return entity.LexemeRef{}, err
	}
	return entity.LexemeRef{Source: entity.LexemeSourceCustom, ID: lexeme.ID}, nil
}

func (u *ingestUsecase) newAudit(req *entity.CommitRequest, analysis *entity.IngestAnalysis) *entity.IngestAudit {
	return &entity.IngestAudit{
		BookID:          req.Draft.BookID,
		ChapterNumber:   req.Draft.ChapterNumber,
		ActorID:         req.ActorID,
		VerseCount:      analysis.VerseCount,
		TokenCount:      analysis.TokenCount,
		KnownTokenCount: analysis.KnownTokenCount,
		NewTokenCount:   analysis.NewTokenCount,
		OverrideCount:   len(req.Overrides),
		CreatedAt:       u.clock().UTC(),
	}
}

// recordRejection writes a REJECTED audit outside the failed transaction.
// A failure to record it is logged and otherwise ignored.
func (u *ingestUsecase) recordRejection(ctx context.Context, req *entity.CommitRequest, analysis *entity.IngestAnalysis, cause error) {
	audit := u.newAudit(req, analysis)
	audit.Status = entity.IngestStatusRejected
	audit.ExactBibleMatch = analysis.ExactBibleMatch
	audit.Summary = cause.Error()

	entry := u.logger.WithFields(logrus.Fields{
		"book_id": req.Draft.BookID,
		"chapter": req.Draft.ChapterNumber,
		"actor":   req.ActorID,
		"kind":    entity.KindOf(cause),
	})
	if _, err := u.audits.Create(ctx, audit); err != nil {
		entry.WithError(err).Error("record rejected ingest audit")
	}
	entry.Warn(cause.Error())
}

func (u *ingestUsecase) logOutcome(audit *entity.IngestAudit) {
	u.logger.WithFields(logrus.Fields{
		"book_id":        audit.BookID,
		"chapter":        audit.ChapterNumber,
		"actor":          audit.ActorID,
		"status":         audit.Status,
		"verses":         audit.VerseCount,
		"tokens":         audit.TokenCount,
		"known_tokens":   audit.KnownTokenCount,
		"new_tokens":     audit.NewTokenCount,
		"override_count": audit.OverrideCount,
	}).Info("chapter ingest finished")
}
