package repository

import (
	"context"

	"catalog-api/internal/domains/author/model"
	bookmodel "catalog-api/internal/domains/book/model"
)

// RepositoryInterface - data access for authors.
type RepositoryInterface interface {
	// List returns the authors matching req with their books, newest author
	// first unless req orders otherwise.
	List(ctx context.Context, req model.ListAuthorsRequest) ([]*model.Author, error)
	// GetByID returns apperror.NotFoundError when the author does not exist.
	GetByID(ctx context.Context, id int64) (*model.Author, error)
	LockByID(ctx context.Context, id int64) (*model.Author, error)
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)

	Create(ctx context.Context, author *model.Author) error
	Update(ctx context.Context, author *model.Author) error
	Delete(ctx context.Context, id int64) error

	CountBooks(ctx context.Context, id int64) (int, error)
	// ListBooks returns the author's books joined with the author, newest first.
	ListBooks(ctx context.Context, id int64) ([]*bookmodel.Book, error)
	Statistics(ctx context.Context, id int64) (*model.Statistics, error)
}
