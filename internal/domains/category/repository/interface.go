package repository

import (
	"context"

	bookmodel "catalog-api/internal/domains/book/model"
	"catalog-api/internal/domains/category/model"
)

// RepositoryInterface - data access for categories.
type RepositoryInterface interface {
	// List returns the categories matching req with their books, newest first
	// unless req orders otherwise.
	List(ctx context.Context, req model.ListCategoriesRequest) ([]*model.Category, error)
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	LockByID(ctx context.Context, id int64) (*model.Category, error)
	// NameExists compares names case-insensitively.
	NameExists(ctx context.Context, name string, excludeID int64) (bool, error)

	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id int64) error

	CountBooks(ctx context.Context, id int64) (int, error)
	ListBooks(ctx context.Context, id int64) ([]*bookmodel.Book, error)
	Statistics(ctx context.Context, id int64) (*model.Statistics, error)
	// Popular orders categories by book count descending, then by name.
	Popular(ctx context.Context, limit int) ([]*model.Category, error)
}
