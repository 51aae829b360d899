package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

type digestOverride struct {
	Verse int      `json:"verse"`
	Parts []string `json:"parts"`
}

type digestInput struct {
	BookID                int64            `json:"customHebrewBookId"`
	ChapterNumber         int              `json:"chapterNumber"`
	Verses                []string         `json:"verses"`
	SegmentationOverrides []digestOverride `json:"segmentationOverrides"`
}

// analysisDigest hashes exactly the inputs that determine an analysis:
// book, chapter, paragraphs and normalised segmentation overrides in
// ascending verse order.
func analysisDigest(bookID int64, chapter int, paragraphs []string, overrides map[int][]string) (string, error) {
	in := digestInput{
		BookID:                bookID,
		ChapterNumber:         chapter,
		Verses:                paragraphs,
		SegmentationOverrides: make([]digestOverride, 0, len(overrides)),
	}
	if in.Verses == nil {
		in.Verses = []string{}
	}
	for _, verse := range sortedVerses(overrides) {
		in.SegmentationOverrides = append(in.SegmentationOverrides, digestOverride{Verse: verse, Parts: overrides[verse]})
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("marshal digest input: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
