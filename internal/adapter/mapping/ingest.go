package mapping

import (
	"strings"

	"github.com/eslsoft/hebcorpus/internal/entity"
)

// PreviewRequest is the body of the preview endpoint.
type PreviewRequest struct {
	CustomHebrewBookID    int64               `json:"customHebrewBookId"`
	ChapterNumber         int                 `json:"chapterNumber"`
	RawText               string              `json:"rawText"`
	SegmentationOverrides map[string][]string `json:"segmentationOverrides,omitempty"`
}

// LexemeRefBody pins a token to a lexicon entry.
type LexemeRefBody struct {
	Source string `json:"source"`
	ID     string `json:"id"`
}

// CommitRequest is the body of the commit endpoint.
type CommitRequest struct {
	PreviewRequest
	AnalysisDigest string                   `json:"analysisDigest"`
	Overrides      map[string]LexemeRefBody `json:"overrides,omitempty"`
}

// PreviewResponse wraps the analysis.
type PreviewResponse struct {
	Analysis *entity.IngestAnalysis `json:"analysis"`
}

// CommitResponse flattens the commit result next to ok.
type CommitResponse struct {
	OK bool `json:"ok"`
	*entity.CommitResult
}

// ToDraft converts the preview body into a chapter draft.
func (r *PreviewRequest) ToDraft() entity.ChapterDraft {
	return entity.ChapterDraft{
		BookID:                r.CustomHebrewBookID,
		ChapterNumber:         r.ChapterNumber,
		RawText:               r.RawText,
		SegmentationOverrides: r.SegmentationOverrides,
	}
}

// Validate reports missing required fields before any storage access.
func (r *PreviewRequest) Validate() error {
	if r.CustomHebrewBookID <= 0 || r.ChapterNumber <= 0 || strings.TrimSpace(r.RawText) == "" {
		return entity.ValidationError("Missing required fields")
	}
	return nil
}

// ToCommitRequest validates token keys and lexeme references.
func (r *CommitRequest) ToCommitRequest(actorID string) (*entity.CommitRequest, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(r.AnalysisDigest) == "" {
		return nil, entity.ValidationError("Missing required fields")
	}

	overrides := make(map[entity.TokenKey]entity.LexemeRef, len(r.Overrides))
	for raw, ref := range r.Overrides {
		key, err := entity.ParseTokenKey(raw)
		if err != nil {
			return nil, entity.ValidationError("Invalid token key %q", raw)
		}
		lexeme := entity.LexemeRef{Source: entity.LexemeSource(strings.ToUpper(strings.TrimSpace(ref.Source))), ID: strings.TrimSpace(ref.ID)}
		if err := lexeme.Validate(); err != nil {
			return nil, entity.ValidationError("Invalid override for token %s", key)
		}
		overrides[key] = lexeme
	}

	return &entity.CommitRequest{
		Draft:          r.ToDraft(),
		AnalysisDigest: strings.TrimSpace(r.AnalysisDigest),
		Overrides:      overrides,
		ActorID:        actorID,
	}, nil
}

// ToCommitResponse marks the result as successful.
func ToCommitResponse(result *entity.CommitResult) CommitResponse {
	return CommitResponse{OK: true, CommitResult: result}
}
