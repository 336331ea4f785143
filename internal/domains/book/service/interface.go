package service

import (
	"context"

	"catalog-api/internal/domains/book/model"
)

// ServiceInterface - business operations on books
type ServiceInterface interface {
	ListBooks(ctx context.Context, req model.ListBooksRequest) ([]model.BookListResponse, error)
	GetBook(ctx context.Context, id int64) (*model.BookDetailResponse, error)
	CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.BookDetailResponse, error)
	UpdateBook(ctx context.Context, id int64, req model.UpdateBookRequest) (*model.BookDetailResponse, error)
	DeleteBook(ctx context.Context, id int64) error
	AddCategory(ctx context.Context, bookID, categoryID int64) (*model.BookDetailResponse, error)
	RemoveCategory(ctx context.Context, bookID, categoryID int64) (*model.BookDetailResponse, error)
}
