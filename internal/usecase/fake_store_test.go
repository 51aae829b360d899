package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/hebcorpus/internal/entity"
	"github.com/eslsoft/hebcorpus/internal/repository"
)

type canonKey struct {
	book    int64
	chapter int
}

// fakeStore is an in-memory implementation of every repository the usecases
// depend on. WithinChapter snapshots the mutable tables and restores them
// when the callback fails.
type fakeStore struct {
	mu sync.RWMutex

	books    map[int64]*entity.CustomBook
	biblical []entity.BiblicalLexeme
	canon    map[canonKey][]entity.CanonicalVerse
	words    []entity.CanonicalWord

	custom    []entity.CustomLexeme
	chapters  map[entity.ChapterKey]bool
	verses    map[entity.VerseKey]bool
	rows      map[entity.WordKey]entity.CustomWord
	audits    []entity.IngestAudit
	auditSeq  int64
	lexemeSeq int

	// failWordAfter makes InsertWord fail once this many words were written
	// in the current transaction; zero disables it.
	failWordAfter int
	txWords       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		books:    make(map[int64]*entity.CustomBook),
		canon:    make(map[canonKey][]entity.CanonicalVerse),
		chapters: make(map[entity.ChapterKey]bool),
		verses:   make(map[entity.VerseKey]bool),
		rows:     make(map[entity.WordKey]entity.CustomWord),
	}
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

// BookRepository

func (s *fakeStore) GetCustomBook(ctx context.Context, id int64) (*entity.CustomBook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	book, ok := s.books[id]
	if !ok {
		return nil, entity.ErrBookNotFound
	}
	copy := *book
	return &copy, nil
}

func (s *fakeStore) CreateCustomBook(ctx context.Context, book *entity.CustomBook) (*entity.CustomBook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.books {
		if existing.Slug == book.Slug {
			return nil, entity.ErrDuplicateBook
		}
	}
	copy := *book
	copy.ID = int64(len(s.books) + 1)
	s.books[copy.ID] = &copy
	out := copy
	return &out, nil
}

// LexiconRepository

func (s *fakeStore) ListBiblicalLexemes(ctx context.Context) ([]entity.BiblicalLexeme, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.BiblicalLexeme(nil), s.biblical...), nil
}

func (s *fakeStore) ListCustomLexemes(ctx context.Context) ([]entity.CustomLexeme, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.CustomLexeme(nil), s.custom...), nil
}

// CanonRepository

func (s *fakeStore) ListCanonicalVerses(ctx context.Context, hebrewBookID int64, chapter int) ([]entity.CanonicalVerse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.CanonicalVerse(nil), s.canon[canonKey{hebrewBookID, chapter}]...), nil
}

func (s *fakeStore) SearchWords(ctx context.Context, q repository.WordSearchQuery) ([]entity.CanonicalWord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.CanonicalWord
	for _, w := range s.words {
		match := strings.Contains(w.Surface, q.Surface) || (q.Bare != "" && strings.Contains(w.Surface, q.Bare))
		if q.Consonants != "" && (strings.Contains(w.LemmaClean, q.Consonants) || strings.Contains(w.Lemma, q.Consonants)) {
			match = true
		}
		if match {
			out = append(out, w)
		}
		if len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) FindWordsBySurface(ctx context.Context, surface string, limit int) ([]entity.CanonicalWord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.CanonicalWord
	for _, w := range s.words {
		if w.Surface == surface && len(out) < limit {
			out = append(out, w)
		}
	}
	return out, nil
}

// IngestRepository

type fakeSnapshot struct {
	custom    []entity.CustomLexeme
	chapters  map[entity.ChapterKey]bool
	verses    map[entity.VerseKey]bool
	rows      map[entity.WordKey]entity.CustomWord
	audits    []entity.IngestAudit
	auditSeq  int64
	lexemeSeq int
}

func (s *fakeStore) snapshot() fakeSnapshot {
	snap := fakeSnapshot{
		custom:    append([]entity.CustomLexeme(nil), s.custom...),
		chapters:  make(map[entity.ChapterKey]bool, len(s.chapters)),
		verses:    make(map[entity.VerseKey]bool, len(s.verses)),
		rows:      make(map[entity.WordKey]entity.CustomWord, len(s.rows)),
		audits:    append([]entity.IngestAudit(nil), s.audits...),
		auditSeq:  s.auditSeq,
		lexemeSeq: s.lexemeSeq,
	}
	for k, v := range s.chapters {
		snap.chapters[k] = v
	}
	for k, v := range s.verses {
		snap.verses[k] = v
	}
	for k, v := range s.rows {
		snap.rows[k] = v
	}
	return snap
}

func (s *fakeStore) restore(snap fakeSnapshot) {
	s.custom = snap.custom
	s.chapters = snap.chapters
	s.verses = snap.verses
	s.rows = snap.rows
	s.audits = snap.audits
	s.auditSeq = snap.auditSeq
	s.lexemeSeq = snap.lexemeSeq
}

func (s *fakeStore) WithinChapter(ctx context.Context, key entity.ChapterKey, fn func(ctx context.Context, w repository.ChapterWriter) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	s.txWords = 0
	if err := fn(ctx, fakeWriter{s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// fakeWriter runs with fakeStore.mu already held.
type fakeWriter struct{ s *fakeStore }

func (w fakeWriter) EnsureChapter(ctx context.Context, key entity.ChapterKey) error {
	if _, ok := w.s.books[key.BookID]; !ok {
		return errors.New("foreign key violation: custom_hebrew_chapters.book_id")
	}
	w.s.chapters[key] = true
	return nil
}

func (w fakeWriter) ClearChapter(ctx context.Context, key entity.ChapterKey) error {
	for k := range w.s.rows {
		if k.ChapterKey == key {
			delete(w.s.rows, k)
		}
	}
	for k := range w.s.verses {
		if k.ChapterKey == key {
			delete(w.s.verses, k)
		}
	}
	return nil
}

func (w fakeWriter) InsertVerse(ctx context.Context, key entity.VerseKey) error {
	if !w.s.chapters[key.ChapterKey] {
		return errors.New("foreign key violation: custom_hebrew_verses.chapter")
	}
	if w.s.verses[key] {
		return fmt.Errorf("duplicate verse %s", key)
	}
	w.s.verses[key] = true
	return nil
}

func (w fakeWriter) InsertWord(ctx context.Context, word *entity.CustomWord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.s.failWordAfter > 0 && w.s.txWords >= w.s.failWordAfter {
		return errors.New("disk full")
	}
	if !w.s.verses[word.Key.VerseKey] {
		return errors.New("foreign key violation: custom_hebrew_words.verse")
	}
	biblical, custom := word.Lexeme.Columns()
	if (biblical == nil) == (custom == nil) {
		return errors.New("check violation: exactly one lexeme reference")
	}
	if _, ok := w.s.rows[word.Key]; ok {
		return fmt.Errorf("duplicate word %s", word.Key)
	}
	w.s.rows[word.Key] = *word
	w.s.txWords++
	return nil
}

func (w fakeWriter) ResolveCustomLexeme(ctx context.Context, surface, consonants string) (*entity.CustomLexeme, error) {
	for _, lex := range w.s.custom {
		if lex.LemmaClean == consonants {
			copy := lex
			return &copy, nil
		}
	}
	w.s.lexemeSeq++
	lex := entity.CustomLexeme{
		ID:         fmt.Sprintf("custom-%d", w.s.lexemeSeq),
		Lemma:      surface,
		LemmaClean: consonants,
		Source:     entity.LexemeSourceCustom,
		CreatedAt:  time.Now(),
	}
	w.s.custom = append(w.s.custom, lex)
	return &lex, nil
}

func (w fakeWriter) InsertAudit(ctx context.Context, audit *entity.IngestAudit) (*entity.IngestAudit, error) {
	return w.s.appendAudit(audit), nil
}

// AuditRepository

func (s *fakeStore) Create(ctx context.Context, audit *entity.IngestAudit) (*entity.IngestAudit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendAudit(audit), nil
}

func (s *fakeStore) appendAudit(audit *entity.IngestAudit) *entity.IngestAudit {
	s.auditSeq++
	copy := *audit
	copy.ID = s.auditSeq
	s.audits = append(s.audits, copy)
	out := copy
	return &out
}

func (s *fakeStore) List(ctx context.Context, query *repository.ListAuditQuery) ([]entity.IngestAudit, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := append([]entity.IngestAudit(nil), s.audits...)
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	total := int64(len(items))
	start := int(query.Offset())
	if start >= len(items) {
		return []entity.IngestAudit{}, total, nil
	}
	end := start + int(query.PageSize)
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], total, nil
}

// helpers for assertions

func (s *fakeStore) chapterWords(key entity.ChapterKey) []entity.CustomWord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.CustomWord
	for k, w := range s.rows {
		if k.ChapterKey == key {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.Verse != out[j].Key.Verse {
			return out[i].Key.Verse < out[j].Key.Verse
		}
		return out[i].Key.Seq < out[j].Key.Seq
	})
	return out
}

func (s *fakeStore) auditCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.audits)
}

func (s *fakeStore) lastAudit() entity.IngestAudit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.audits[len(s.audits)-1]
}

func (s *fakeStore) customCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.custom)
}
