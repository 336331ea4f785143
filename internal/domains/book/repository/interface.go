package repository

import (
	"context"

	"catalog-api/internal/domains/book/model"
)

// RepositoryInterface - data access for books and their category links.
// Every method honours the transaction bound to ctx (see pkg/database).
type RepositoryInterface interface {
	// List returns the books matching req with their author and categories.
	List(ctx context.Context, req model.ListBooksRequest) ([]*model.Book, error)
	// GetByID returns apperror.NotFoundError when the book does not exist.
	GetByID(ctx context.Context, id int64) (*model.Book, error)
	// LockByID is GetByID holding a row lock until the transaction ends.
	LockByID(ctx context.Context, id int64) (*model.Book, error)

	ISBNExists(ctx context.Context, isbn string, excludeID int64) (bool, error)
	AuthorExists(ctx context.Context, authorID int64) (bool, error)
	CategoryExists(ctx context.Context, categoryID int64) (bool, error)
	// MissingCategoryIDs returns the ids in ids that match no category, ascending.
	MissingCategoryIDs(ctx context.Context, ids []int64) ([]int64, error)

	Create(ctx context.Context, book *model.Book) error
	Update(ctx context.Context, book *model.Book) error
	Delete(ctx context.Context, id int64) error

	ReplaceCategories(ctx context.Context, bookID int64, categoryIDs []int64) error
	AddCategory(ctx context.Context, bookID, categoryID int64) error
	RemoveCategory(ctx context.Context, bookID, categoryID int64) error
	// Touch refreshes updated_at.
	Touch(ctx context.Context, bookID int64) error
}
