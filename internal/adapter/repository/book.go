package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/eslsoft/hebcorpus/internal/entity"
	"github.com/eslsoft/hebcorpus/internal/repository"
)

type BookRepository struct {
	store *Store
}

// NewBookRepository constructs a SQL-backed custom book repository.
func NewBookRepository(store *Store) repository.BookRepository {
	return &BookRepository{store: store}
}

func (r *BookRepository) GetCustomBook(ctx context.Context, id int64) (*entity.CustomBook, error) {
	var (
		book        entity.CustomBook
		description sql.NullString
		source      sql.NullString
		linked      sql.NullInt64
	)
	b := r.store.builder()
	stmt := b.Select("id", "slug", "title", "description", "source", "linked_hebrew_book_id").
		From(b.Table("custom_hebrew_books")).
		Where(entsql.EQ("id", id))
	err := r.store.queryRow(ctx, r.store.db, stmt).
		Scan(&book.ID, &book.Slug, &book.Title, &description, &source, &linked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get custom book: %w", err)
	}
	book.Description = description.String
	book.Source = source.String
	book.LinkedHebrewBookID = int64PtrFromNull(linked)
	return &book, nil
}

func (r *BookRepository) CreateCustomBook(ctx context.Context, book *entity.CustomBook) (*entity.CustomBook, error) {
	out := *book
	stmt := r.store.builder().Insert("custom_hebrew_books").
		Columns("slug", "title", "description", "source", "linked_hebrew_book_id", "created_at").
		Values(book.Slug, book.Title, nullString(book.Description), nullString(book.Source),
			nullInt64Ptr(book.LinkedHebrewBookID), time.Now().UTC()).
		Returning("id")
	err := r.store.queryRow(ctx, r.store.db, stmt).Scan(&out.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entity.ErrDuplicateBook
		}
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: linked hebrew book %d does not exist", entity.ErrInvalidInput, *book.LinkedHebrewBookID)
		}
		return nil, fmt.Errorf("create custom book: %w", err)
	}
	return &out, nil
}
