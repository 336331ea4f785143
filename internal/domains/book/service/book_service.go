package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"catalog-api/internal/domains/book/model"
	"catalog-api/internal/domains/book/repository"
	"catalog-api/internal/shared/apperror"
	"catalog-api/pkg/cache"
	"catalog-api/pkg/database"

	"github.com/rs/zerolog/log"
)

type BookService struct {
	repo  repository.RepositoryInterface
	tx    database.Transactor
	cache *cache.Versioned
}

// NewService - constructor with DI. cache may be nil.
func NewService(repo repository.RepositoryInterface, tx database.Transactor, cache *cache.Versioned) ServiceInterface {
	return &BookService{repo: repo, tx: tx, cache: cache}
}

func (s *BookService) ListBooks(ctx context.Context, req model.ListBooksRequest) ([]model.BookListResponse, error) {
	return cache.Remember(ctx, s.cache, func(ctx context.Context) ([]model.BookListResponse, error) {
		if err := s.checkFilters(ctx, req); err != nil {
			return nil, err
		}
		books, err := s.repo.List(ctx, req)
		if err != nil {
			return nil, err
		}
		return model.ToListResponses(books), nil
	}, "books", "list", req.CacheKey())
}

// checkFilters rejects ?author= and ?categories= values naming no record.
func (s *BookService) checkFilters(ctx context.Context, req model.ListBooksRequest) error {
	if req.AuthorID != nil {
		exists, err := s.repo.AuthorExists(ctx, *req.AuthorID)
		if err != nil {
			return err
		}
		if !exists {
			return apperror.Invalid("author", apperror.CodeInvalid, apperror.MsgInvalidChoice)
		}
	}
	if len(req.CategoryIDs) > 0 {
		missing, err := s.repo.MissingCategoryIDs(ctx, req.CategoryIDs)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return apperror.InvalidChoice("categories", missing[0])
		}
	}
	return nil
}

func (s *BookService) GetBook(ctx context.Context, id int64) (*model.BookDetailResponse, error) {
	return cache.Remember(ctx, s.cache, func(ctx context.Context) (*model.BookDetailResponse, error) {
		b, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		resp := b.ToDetailResponse()
		return &resp, nil
	}, "books", strconv.FormatInt(id, 10))
}

func (s *BookService) CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.BookDetailResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var created *model.Book
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkAuthor(ctx, req.AuthorID); err != nil {
			return err
		}
		if err := s.checkCategories(ctx, req.CategoryIDs); err != nil {
			return err
		}
		if err := s.checkISBN(ctx, req.ISBN, 0); err != nil {
			return err
		}

		b := &model.Book{
			Title:    req.Title,
			ISBN:     req.ISBN,
			Price:    *req.Price,
			AuthorID: req.AuthorID,
		}
		if err := s.repo.Create(ctx, b); err != nil {
			return err
		}
		if len(req.CategoryIDs) > 0 {
			if err := s.repo.ReplaceCategories(ctx, b.ID, req.CategoryIDs); err != nil {
				return err
			}
		}

		var err error
		created, err = s.repo.GetByID(ctx, b.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	log.Info().Int64("book_id", created.ID).Str("isbn", created.ISBN).Msg("book created")

	resp := created.ToDetailResponse()
	return &resp, nil
}

func (s *BookService) UpdateBook(ctx context.Context, id int64, req model.UpdateBookRequest) (*model.BookDetailResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var updated *model.Book
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		b, err := s.repo.LockByID(ctx, id)
		if err != nil {
			return err
		}

		if req.AuthorID != nil && *req.AuthorID != b.AuthorID {
			if err := s.checkAuthor(ctx, *req.AuthorID); err != nil {
				return err
			}
		}
		if req.CategoryIDs != nil {
			if err := s.checkCategories(ctx, *req.CategoryIDs); err != nil {
				return err
			}
		}
		if req.ISBN != nil && *req.ISBN != b.ISBN {
			if err := s.checkISBN(ctx, *req.ISBN, b.ID); err != nil {
				return err
			}
		}

		req.Apply(b)
		if err := s.repo.Update(ctx, b); err != nil {
			return err
		}

		if req.CategoryIDs != nil {
			if err := s.repo.ReplaceCategories(ctx, b.ID, *req.CategoryIDs); err != nil {
				return err
			}
		}

		updated, err = s.repo.GetByID(ctx, b.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	log.Info().Int64("book_id", id).Msg("book updated")

	resp := updated.ToDetailResponse()
	return &resp, nil
}

// DeleteBook removes the book and its category links. Books have no delete guard.
func (s *BookService) DeleteBook(ctx context.Context, id int64) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.LockByID(ctx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx)
	log.Info().Int64("book_id", id).Msg("book deleted")
	return nil
}

func (s *BookService) AddCategory(ctx context.Context, bookID, categoryID int64) (*model.BookDetailResponse, error) {
	return s.changeCategory(ctx, bookID, categoryID, func(ctx context.Context, b *model.Book) error {
		exists, err := s.repo.CategoryExists(ctx, categoryID)
		if err != nil {
			return err
		}
		if !exists {
			return apperror.Invalid("category_id", apperror.CodeNotFound, "Category with this ID does not exist.")
		}
		if b.HasCategory(categoryID) {
			return apperror.Invalid("category_id", apperror.CodeUnique, "Category is already assigned to this book.")
		}
		return s.repo.AddCategory(ctx, bookID, categoryID)
	})
}

func (s *BookService) RemoveCategory(ctx context.Context, bookID, categoryID int64) (*model.BookDetailResponse, error) {
	return s.changeCategory(ctx, bookID, categoryID, func(ctx context.Context, b *model.Book) error {
		if !b.HasCategory(categoryID) {
			return apperror.Invalid("category_id", apperror.CodeInvalid, "Category is not assigned to this book.")
		}
		return s.repo.RemoveCategory(ctx, bookID, categoryID)
	})
}

// changeCategory runs change on the locked book, refreshes updated_at and
// returns the reloaded book.
func (s *BookService) changeCategory(
	ctx context.Context,
	bookID, categoryID int64,
	change func(ctx context.Context, b *model.Book) error,
) (*model.BookDetailResponse, error) {
	var updated *model.Book
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		b, err := s.repo.LockByID(ctx, bookID)
		if err != nil {
			return err
		}
		if err := change(ctx, b); err != nil {
			return err
		}
		if err := s.repo.Touch(ctx, bookID); err != nil {
			return err
		}
		updated, err = s.repo.GetByID(ctx, bookID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	log.Debug().Int64("book_id", bookID).Int64("category_id", categoryID).Msg("book categories changed")

	resp := updated.ToDetailResponse()
	return &resp, nil
}

func (s *BookService) checkAuthor(ctx context.Context, authorID int64) error {
	exists, err := s.repo.AuthorExists(ctx, authorID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.Invalid("author_id", apperror.CodeNotFound, "Author with this ID does not exist.")
	}
	return nil
}

func (s *BookService) checkCategories(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	missing, err := s.repo.MissingCategoryIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return apperror.Invalid("category_ids", apperror.CodeNotFound,
			fmt.Sprintf("Categories with IDs %s do not exist.", formatIDs(missing)))
	}
	return nil
}

func (s *BookService) checkISBN(ctx context.Context, isbn string, excludeID int64) error {
	exists, err := s.repo.ISBNExists(ctx, isbn, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return apperror.Invalid("isbn", apperror.CodeUnique, "A book with this ISBN already exists")
	}
	return nil
}

// formatIDs renders ids as "[3, 7]".
func formatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
