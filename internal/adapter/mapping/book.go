package mapping

import "github.com/eslsoft/hebcorpus/internal/entity"

// CreateBookRequest is the body of the book registration endpoint.
type CreateBookRequest struct {
	Slug               string `json:"slug"`
	Title              string `json:"title"`
	Description        string `json:"description,omitempty"`
	Source             string `json:"source,omitempty"`
	LinkedHebrewBookID *int64 `json:"linkedHebrewBookId,omitempty"`
}

func (r *CreateBookRequest) ToEntity() *entity.CustomBook {
	return &entity.CustomBook{
		Slug:               r.Slug,
		Title:              r.Title,
		Description:        r.Description,
		Source:             r.Source,
		LinkedHebrewBookID: r.LinkedHebrewBookID,
	}
}
