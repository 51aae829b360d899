package entity

import "time"

// IngestStatus is the outcome recorded for a commit attempt.
type IngestStatus string

const (
	IngestStatusImported          IngestStatus = "IMPORTED"
	IngestStatusSkippedExactMatch IngestStatus = "SKIPPED_EXACT_MATCH"
	IngestStatusRejected          IngestStatus = "REJECTED"
)

const (
	SummaryImported          = "Imported custom chapter successfully."
	SummarySkippedExactMatch = "Chapter matches linked biblical text exactly; import skipped."
)

// CommitRequest asks to persist a previously analyzed chapter. Overrides pin
// the lexeme of individual tokens and must name one of their candidates.
type CommitRequest struct {
	Draft          ChapterDraft
	AnalysisDigest string
	Overrides      map[TokenKey]LexemeRef
	ActorID        string
}

// CommitResult summarises a successful commit or skip.
type CommitResult struct {
	Skipped         bool         `json:"skipped"`
	Status          IngestStatus `json:"status"`
	ExactBibleMatch bool         `json:"exactBibleMatch"`
	VerseCount      int          `json:"verseCount"`
	TokenCount      int          `json:"tokenCount"`
	KnownTokenCount int          `json:"knownTokenCount"`
	NewTokenCount   int          `json:"newTokenCount"`
	OverrideCount   int          `json:"overrideCount"`
	AuditID         int64        `json:"auditId,omitempty"`
}

// CustomWord is a persisted token of a custom verse.
type CustomWord struct {
	Key        WordKey
	Surface    string
	Consonants string
	Lexeme     LexemeRef
}

// IngestAudit is the append-only record of a commit attempt.
type IngestAudit struct {
	ID              int64        `json:"id"`
	BookID          int64        `json:"customHebrewBookId"`
	ChapterNumber   int          `json:"chapterNumber"`
	ActorID         string       `json:"actorUserId"`
	Status          IngestStatus `json:"status"`
	ExactBibleMatch bool         `json:"exactBibleMatch"`
	VerseCount      int          `json:"verseCount"`
	TokenCount      int          `json:"tokenCount"`
	KnownTokenCount int          `json:"knownTokenCount"`
	NewTokenCount   int          `json:"newTokenCount"`
	OverrideCount   int          `json:"overrideCount"`
	Summary         string       `json:"summary"`
	CreatedAt       time.Time    `json:"createdAt"`
}

// Result converts the audit into the result returned to callers.
func (a *IngestAudit) Result() *CommitResult {
	return &CommitResult{
		Skipped:         a.Status == IngestStatusSkippedExactMatch,
		Status:          a.Status,
		ExactBibleMatch: a.ExactBibleMatch,
		VerseCount:      a.VerseCount,
		TokenCount:      a.TokenCount,
		KnownTokenCount: a.KnownTokenCount,
		NewTokenCount:   a.NewTokenCount,
		OverrideCount:   a.OverrideCount,
		AuditID:         a.ID,
	}
}
