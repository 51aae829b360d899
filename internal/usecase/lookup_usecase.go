package usecase

import (
	"context"
	"strings"

	"github.com/eslsoft/hebcorpus/internal/entity"
	"github.com/eslsoft/hebcorpus/internal/repository"
	"github.com/eslsoft/hebcorpus/pkg/hebrew"
)

const (
	wordSearchLimit     = 50
	segmentPreviewLimit = 20
)

// LookupUsecase serves the admin word lookup helpers.
type LookupUsecase interface {
	SearchWords(ctx context.Context, q string) ([]entity.CanonicalWord, error)
	PreviewSegments(ctx context.Context, word string) ([]entity.SegmentPreview, error)
}

func NewLookupUsecase(canon repository.CanonRepository) LookupUsecase {
	return &lookupUsecase{canon: canon}
}

type lookupUsecase struct {
	canon repository.CanonRepository
}

func (u *lookupUsecase) SearchWords(ctx context.Context, q string) ([]entity.CanonicalWord, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []entity.CanonicalWord{}, nil
	}
	words, err := u.canon.SearchWords(ctx, repository.WordSearchQuery{
		Surface:    q,
		Bare:       hebrew.StripMarks(q),
		Consonants: hebrew.Consonants(q),
		Limit:      wordSearchLimit,
	})
	if err != nil {
		return nil, entity.StorageError("search canonical words", err)
	}
	return words, nil
}

func (u *lookupUsecase) PreviewSegments(ctx context.Context, word string) ([]entity.SegmentPreview, error) {
	segments := hebrew.Segment(word)
	previews := make([]entity.SegmentPreview, 0, len(segments))
	for _, seg := range segments {
		matches, err := u.canon.FindWordsBySurface(ctx, seg, segmentPreviewLimit)
		if err != nil {
			return nil, entity.StorageError("find canonical words", err)
		}
		if matches == nil {
			matches = []entity.CanonicalWord{}
		}
		previews = append(previews, entity.SegmentPreview{
			Segment:    seg,
			Existing:   len(matches) > 0,
			Candidates: matches,
		})
	}
	return previews, nil
}
