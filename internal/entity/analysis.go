package entity

import "strings"

// ChapterDraft is the raw input of one chapter submission. Segmentation
// overrides are keyed by the verse number as text and list the surface pieces
// that replace the automatic tokenization of that verse.
type ChapterDraft struct {
	BookID                int64               `json:"customHebrewBookId"`
	ChapterNumber         int                 `json:"chapterNumber"`
	RawText               string              `json:"rawText"`
	SegmentationOverrides map[string][]string `json:"segmentationOverrides,omitempty"`
}

// Key returns the chapter identity of the draft.
func (d ChapterDraft) Key() ChapterKey {
	return ChapterKey{BookID: d.BookID, Chapter: d.ChapterNumber}
}

// AnalyzedToken is one lexical unit of a verse together with its lexicon
// lookup result. Selected is the first candidate, nil when none matched.
type AnalyzedToken struct {
	Key        TokenKey          `json:"tokenKey"`
	Surface    string            `json:"surface"`
	Consonants string            `json:"consonants"`
	Known      bool              `json:"known"`
	Candidates []LexemeCandidate `json:"candidates"`
	Selected   *LexemeCandidate  `json:"selectedCandidate"`
}

// AnalyzedVerse is one paragraph of the submission.
type AnalyzedVerse struct {
	Number int             `json:"verseNumber"`
	Text   string          `json:"text"`
	Tokens []AnalyzedToken `json:"tokens"`
}

// IngestAnalysis is the deterministic preview of a chapter submission.
type IngestAnalysis struct {
	Digest             string          `json:"digest"`
	ExactBibleMatch    bool            `json:"exactBibleMatch"`
	LinkedHebrewBookID *int64          `json:"linkedHebrewBookId"`
	VerseCount         int             `json:"verseCount"`
	TokenCount         int             `json:"tokenCount"`
	KnownTokenCount    int             `json:"knownTokenCount"`
	NewTokenCount      int             `json:"newTokenCount"`
	Verses             []AnalyzedVerse `json:"verses"`
}

// Token looks a token up by key.
func (a *IngestAnalysis) Token(key TokenKey) (*AnalyzedToken, bool) {
	if key.Verse < 1 || key.Verse > len(a.Verses) {
		return nil, false
	}
	tokens := a.Verses[key.Verse-1].Tokens
	if key.Position < 1 || key.Position > len(tokens) {
		return nil, false
	}
	return &tokens[key.Position-1], true
}

// CanonicalVerse is a verse of the linked biblical book rebuilt from its
// word surfaces in word_seq order.
type CanonicalVerse struct {
	Number int      `json:"verseNumber"`
	Words  []string `json:"words"`
}

// Text joins the word surfaces with single spaces.
func (v CanonicalVerse) Text() string { return strings.Join(v.Words, " ") }

// CanonicalWord is a row of the biblical text used by word lookups.
type CanonicalWord struct {
	ID            int64  `json:"id"`
	BookID        int64  `json:"bookId"`
	ChapterNumber int    `json:"chapterNumber"`
	VerseNumber   int    `json:"verseNumber"`
	WordSeq       int    `json:"wordSeq"`
	Surface       string `json:"surface"`
	Lemma         string `json:"lemma,omitempty"`
	LemmaClean    string `json:"lemmaClean,omitempty"`
}

// SegmentPreview reports one segment of a word and the canonical words
// sharing its exact surface.
type SegmentPreview struct {
	Segment    string          `json:"segment"`
	Existing   bool            `json:"existing"`
	Candidates []CanonicalWord `json:"candidates"`
}
