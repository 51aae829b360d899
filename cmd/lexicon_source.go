package cmd

import (
	"archive/zip"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/hebcorpus/internal/entity"
)

// resolveLexiconSource turns source into a local SQLite path. URLs are
// downloaded into the cache, zip archives are unpacked into a temp dir that
// the returned cleanup removes.
func resolveLexiconSource(ctx context.Context, source, cacheDirFlag string, noCache bool, logger *logrus.Logger) (string, func(), error) {
	noop := func() {}
	path := source

	if isURL(source) {
		cacheDir, cached, fromCache, err := prepareCachePath(source, cacheDirFlag, noCache)
		if err != nil {
			return "", noop, err
		}
		if fromCache {
			logger.Infof("using cached lexicon %s", cached)
		} else {
			if err := os.MkdirAll(cacheDir, 0o755); err != nil {
				return "", noop, fmt.Errorf("create cache directory: %w", err)
			}
			logger.Infof("downloading lexicon to %s", cached)
			if err := downloadFile(ctx, source, cached); err != nil {
				return "", noop, err
			}
		}
		path = cached
	}

	if !isZip(path) {
		return path, noop, nil
	}
	tmpDir, err := os.MkdirTemp("", "hebcorpus-lexicon-*")
	if err != nil {
		return "", noop, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }
	unpacked, err := unzipSingle(isSQLiteFile, path, tmpDir)
	if err != nil {
		cleanup()
		return "", noop, err
	}
	logger.Infof("unpacked lexicon %s", unpacked)
	return unpacked, cleanup, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func isZip(path string) bool {
	if strings.HasSuffix(strings.ToLower(path), ".zip") {
		return true
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil {
		return false
	}
	return string(magic) == "PK\x03\x04"
}

func isSQLiteFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".db") || strings.HasSuffix(lower, ".sqlite") || strings.HasSuffix(lower, ".sqlite3")
}

func downloadFile(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}

	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func unzipSingle(match func(string) bool, zipPath, dstDir string) (string, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", err
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !match(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		outPath := filepath.Join(dstDir, filepath.Base(f.Name))
		out, err := os.Create(outPath)
		if err != nil {
			return "", err
		}
		if _, err := io.Copy(out, rc); err != nil {
			out.Close()
			return "", err
		}
		if err := out.Close(); err != nil {
			return "", err
		}
		return outPath, nil
	}
	return "", errors.New("no sqlite file found in archive")
}

// prepareCachePath decides the cache location and returns (cacheDir, path,
// fromCache, error). The file name is derived from the URL.
func prepareCachePath(url, cacheDirFlag string, noCache bool) (string, string, bool, error) {
	base := cacheDirFlag
	if base == "" {
		userCache, err := os.UserCacheDir()
		if err != nil {
			return "", "", false, fmt.Errorf("resolve user cache dir: %w", err)
		}
		base = filepath.Join(userCache, "hebcorpus")
	}
	ext := ".db"
	if strings.HasSuffix(strings.ToLower(url), ".zip") {
		ext = ".zip"
	}
	name := fmt.Sprintf("lexicon-%08x%s", crc32.ChecksumIEEE([]byte(url)), ext)
	path := filepath.Join(base, name)
	if !noCache {
		if st, err := os.Stat(path); err == nil && st.Size() > 0 {
			return base, path, true, nil
		}
	}
	return base, path, false, nil
}

// readLexiconSource loads the books, lexemes and words tables of a SQLite
// lexicon file. Missing optional columns are read as NULL.
func readLexiconSource(ctx context.Context, path string) (*entity.CanonCorpus, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("lexicon source: %w", err)
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open lexicon source: %w", err)
	}
	defer db.Close()

	corpus := &entity.CanonCorpus{}
	if err := readSourceBooks(ctx, db, corpus); err != nil {
		return nil, err
	}
	if err := readSourceLexemes(ctx, db, corpus); err != nil {
		return nil, err
	}
	if err := readSourceWords(ctx, db, corpus); err != nil {
		return nil, err
	}
	return corpus, nil
}

func readSourceBooks(ctx context.Context, db *sql.DB, corpus *entity.CanonCorpus) error {
	rows, err := db.QueryContext(ctx, `SELECT id, name FROM books ORDER BY id`)
	if err != nil {
		return fmt.Errorf("read books: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b entity.HebrewBook
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return fmt.Errorf("scan book: %w", err)
		}
		corpus.Books = append(corpus.Books, b)
	}
	return rows.Err()
}

func readSourceLexemes(ctx context.Context, db *sql.DB, corpus *entity.CanonCorpus) error {
	rows, err := db.QueryContext(ctx, `SELECT id, lemma, lemma_vocalized, lemma_clean, gloss FROM lexemes ORDER BY id`)
	if err != nil {
		return fmt.Errorf("read lexemes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			lex                     entity.BiblicalLexeme
			vocalized, clean, gloss sql.NullString
		)
		if err := rows.Scan(&lex.ID, &lex.Lemma, &vocalized, &clean, &gloss); err != nil {
			return fmt.Errorf("scan lexeme: %w", err)
		}
		lex.ID = strings.TrimSpace(lex.ID)
		if lex.ID == "" {
			continue
		}
		lex.LemmaVocalized = vocalized.String
		lex.Gloss = gloss.String
		if clean.Valid && strings.TrimSpace(clean.String) != "" {
			c := strings.TrimSpace(clean.String)
			lex.LemmaClean = &c
		}
		corpus.Lexemes = append(corpus.Lexemes, lex)
	}
	return rows.Err()
}

func readSourceWords(ctx context.Context, db *sql.DB, corpus *entity.CanonCorpus) error {
	rows, err := db.QueryContext(ctx, `SELECT book_id, chapter_number, verse_number, word_seq, surface, lemma, lemma_clean
		FROM words ORDER BY book_id, chapter_number, verse_number, word_seq`)
	if err != nil {
		return fmt.Errorf("read words: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			w            entity.CanonicalWord
			lemma, clean sql.NullString
		)
		if err := rows.Scan(&w.BookID, &w.ChapterNumber, &w.VerseNumber, &w.WordSeq, &w.Surface, &lemma, &clean); err != nil {
			return fmt.Errorf("scan word: %w", err)
		}
		w.Surface = strings.TrimSpace(w.Surface)
		if w.Surface == "" {
			continue
		}
		w.Lemma = lemma.String
		w.LemmaClean = clean.String
		corpus.Words = append(corpus.Words, w)
	}
	return rows.Err()
}
