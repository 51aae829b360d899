package usecase

import (
	"context"

	"github.com/eslsoft/hebcorpus/internal/entity"
	"github.com/eslsoft/hebcorpus/internal/repository"
)

// BookUsecase manages custom books.
type BookUsecase interface {
	CreateBook(ctx context.Context, book *entity.CustomBook) (*entity.CustomBook, error)
	GetBook(ctx context.Context, id int64) (*entity.CustomBook, error)
}

func NewBookUsecase(repo repository.BookRepository) BookUsecase {
	return &bookUsecase{repo: repo}
}

type bookUsecase struct {
	repo repository.BookRepository
}

func (u *bookUsecase) CreateBook(ctx context.Context, book *entity.CustomBook) (*entity.CustomBook, error) {
	if book == nil {
		return nil, entity.ValidationError(msgMissingFields)
	}
	copy := *book
	if err := copy.Normalize(); err != nil {
		return nil, err
	}
	return u.repo.CreateCustomBook(ctx, &copy)
}

func (u *bookUsecase) GetBook(ctx context.Context, id int64) (*entity.CustomBook, error) {
	if id <= 0 {
		return nil, entity.ErrBookNotFound
	}
	return u.repo.GetCustomBook(ctx, id)
}
