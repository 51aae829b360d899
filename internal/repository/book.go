package repository

import (
	"context"

	"github.com/eslsoft/hebcorpus/internal/entity"
)

// BookRepository persists custom books.
type BookRepository interface {
	// GetCustomBook returns entity.ErrBookNotFound when id is unknown.
	GetCustomBook(ctx context.Context, id int64) (*entity.CustomBook, error)
	CreateCustomBook(ctx context.Context, book *entity.CustomBook) (*entity.CustomBook, error)
}
