package entity

import (
	"fmt"
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// CustomBook is an admin-created container for ingested chapters. A linked
// biblical book enables exact-duplicate detection.
type CustomBook struct {
	ID                 int64  `json:"id"`
	Slug               string `json:"slug"`
	Title              string `json:"title"`
	Description        string `json:"description,omitempty"`
	Source             string `json:"source,omitempty"`
	LinkedHebrewBookID *int64 `json:"linkedHebrewBookId"`
}

// Normalize trims user supplied fields and validates the slug.
func (b *CustomBook) Normalize() error {
	b.Slug = strings.ToLower(strings.TrimSpace(b.Slug))
	b.Title = strings.TrimSpace(b.Title)
	b.Description = strings.TrimSpace(b.Description)
	b.Source = strings.TrimSpace(b.Source)
	if !slugPattern.MatchString(b.Slug) {
		return fmt.Errorf("%w: slug %q", ErrInvalidInput, b.Slug)
	}
	if b.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if b.LinkedHebrewBookID != nil && *b.LinkedHebrewBookID <= 0 {
		b.LinkedHebrewBookID = nil
	}
	return nil
}
