package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// ChapterKey identifies a chapter of a custom book.
type ChapterKey struct {
	BookID  int64 `json:"bookId"`
	Chapter int   `json:"chapterNumber"`
}

func (k ChapterKey) String() string { return fmt.Sprintf("%d/%d", k.BookID, k.Chapter) }

// Verse returns the key of verse n within the chapter.
func (k ChapterKey) Verse(n int) VerseKey { return VerseKey{ChapterKey: k, Verse: n} }

// VerseKey identifies a verse of a custom chapter.
type VerseKey struct {
	ChapterKey
	Verse int `json:"verseNumber"`
}

func (k VerseKey) String() string { return fmt.Sprintf("%s/%d", k.ChapterKey, k.Verse) }

// Word returns the key of the word at 1-based position seq.
func (k VerseKey) Word(seq int) WordKey { return WordKey{VerseKey: k, Seq: seq} }

// WordKey identifies a word row of a custom verse.
type WordKey struct {
	VerseKey
	Seq int `json:"wordSeq"`
}

func (k WordKey) String() string { return fmt.Sprintf("%s/%d", k.VerseKey, k.Seq) }

// TokenKey addresses a token inside an analysis: 1-based verse and 1-based
// position within that verse. Its text form is "verse:position".
type TokenKey struct {
	Verse    int
	Position int
}

func (k TokenKey) String() string { return strconv.Itoa(k.Verse) + ":" + strconv.Itoa(k.Position) }

func (k TokenKey) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *TokenKey) UnmarshalText(text []byte) error {
	parsed, err := ParseTokenKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseTokenKey parses the "verse:position" form.
func ParseTokenKey(s string) (TokenKey, error) {
	verse, pos, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return TokenKey{}, fmt.Errorf("%w: token key %q", ErrInvalidInput, s)
	}
	v, err := strconv.Atoi(verse)
	if err != nil || v <= 0 {
		return TokenKey{}, fmt.Errorf("%w: token key %q", ErrInvalidInput, s)
	}
	p, err := strconv.Atoi(pos)
	if err != nil || p <= 0 {
		return TokenKey{}, fmt.Errorf("%w: token key %q", ErrInvalidInput, s)
	}
	return TokenKey{Verse: v, Position: p}, nil
}
