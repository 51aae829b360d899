package entity

import (
	"fmt"
	"time"
)

// LexemeSource tells which lexicon a lexeme lives in.
type LexemeSource string

const (
	LexemeSourceBiblical LexemeSource = "BIBLICAL"
	LexemeSourceCustom   LexemeSource = "CUSTOM"
)

func (s LexemeSource) Valid() bool {
	return s == LexemeSourceBiblical || s == LexemeSourceCustom
}

// LexemeCandidate is a lexicon entry whose consonantal key matched a token.
type LexemeCandidate struct {
	Source     LexemeSource `json:"source"`
	ID         string       `json:"id"`
	Lemma      string       `json:"lemma"`
	Consonants string       `json:"consonants"`
}

// Ref returns the reference a word row would store for this candidate.
func (c LexemeCandidate) Ref() LexemeRef { return LexemeRef{Source: c.Source, ID: c.ID} }

// LexemeRef points a persisted word at exactly one lexeme.
type LexemeRef struct {
	Source LexemeSource `json:"source"`
	ID     string       `json:"id"`
}

func (r LexemeRef) Validate() error {
	if !r.Source.Valid() {
		return fmt.Errorf("%w: lexeme source %q", ErrInvalidInput, r.Source)
	}
	if r.ID == "" {
		return fmt.Errorf("%w: empty lexeme id", ErrInvalidInput)
	}
	return nil
}

// Columns splits the reference into the biblical and custom lexeme columns
// of a word row. Exactly one of the two is non-nil for a valid reference.
func (r LexemeRef) Columns() (biblicalID, customID *string) {
	id := r.ID
	if r.Source == LexemeSourceBiblical {
		return &id, nil
	}
	return nil, &id
}

// CustomLexeme is a lexicon entry created during ingestion.
type CustomLexeme struct {
	ID         string       `json:"id"`
	Lemma      string       `json:"lemma"`
	LemmaClean string       `json:"lemmaClean"`
	Source     LexemeSource `json:"source"`
	Notes      string       `json:"notes,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// Candidate views the custom lexeme as a lookup candidate.
func (l CustomLexeme) Candidate() LexemeCandidate {
	return LexemeCandidate{Source: LexemeSourceCustom, ID: l.ID, Lemma: l.Lemma, Consonants: l.LemmaClean}
}

// BiblicalLexeme is a read-only entry of the canonical lexicon.
type BiblicalLexeme struct {
	ID             string  `json:"id"`
	Lemma          string  `json:"lemma"`
	LemmaVocalized string  `json:"lemmaVocalized,omitempty"`
	LemmaClean     *string `json:"lemmaClean,omitempty"`
	Gloss          string  `json:"gloss,omitempty"`
}
