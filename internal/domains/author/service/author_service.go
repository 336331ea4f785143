package service

import (
	"context"
	"fmt"
	"strconv"

	"catalog-api/internal/domains/author/model"
	"catalog-api/internal/domains/author/repository"
	bookmodel "catalog-api/internal/domains/book/model"
	"catalog-api/internal/shared/apperror"
	"catalog-api/pkg/cache"
	"catalog-api/pkg/database"

	"github.com/rs/zerolog/log"
)

// ServiceInterface - business operations on authors
type ServiceInterface interface {
	ListAuthors(ctx context.Context, req model.ListAuthorsRequest) ([]model.AuthorListResponse, error)
	GetAuthor(ctx context.Context, id int64) (*model.AuthorDetailResponse, error)
	CreateAuthor(ctx context.Context, req model.CreateAuthorRequest) (*model.AuthorDetailResponse, error)
	UpdateAuthor(ctx context.Context, id int64, req model.UpdateAuthorRequest) (*model.AuthorDetailResponse, error)
	DeleteAuthor(ctx context.Context, id int64) error
	ListAuthorBooks(ctx context.Context, id int64) ([]bookmodel.BookListResponse, error)
	GetStatistics(ctx context.Context, id int64) (*model.StatisticsResponse, error)
}

type authorService struct {
	repo  repository.RepositoryInterface
	tx    database.Transactor
	cache *cache.Versioned
}

// NewAuthorService - constructor with DI. cache may be nil.
func NewAuthorService(repo repository.RepositoryInterface, tx database.Transactor, cache *cache.Versioned) ServiceInterface {
	return &authorService{repo: repo, tx: tx, cache: cache}
}

func (s *authorService) ListAuthors(ctx context.Context, req model.ListAuthorsRequest) ([]model.AuthorListResponse, error) {
	return cache.Remember(ctx, s.cache, func(ctx context.Context) ([]model.AuthorListResponse, error) {
		authors, err := s.repo.List(ctx, req)
		if err != nil {
			return nil, err
		}
		out := make([]model.AuthorListResponse, 0, len(authors))
		for _, a := range authors {
			out = append(out, a.ToListResponse())
		}
		return out, nil
	}, "authors", "list", req.CacheKey())
}

func (s *authorService) GetAuthor(ctx context.Context, id int64) (*model.AuthorDetailResponse, error) {
	return cache.Remember(ctx, s.cache, func(ctx context.Context) (*model.AuthorDetailResponse, error) {
		a, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		resp := a.ToDetailResponse()
		return &resp, nil
	}, "authors", strconv.FormatInt(id, 10))
}

func (s *authorService) CreateAuthor(ctx context.Context, req model.CreateAuthorRequest) (*model.AuthorDetailResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a := &model.Author{Name: req.Name, Email: req.Email, Bio: req.Bio}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkEmail(ctx, a.Email, 0); err != nil {
			return err
		}
		return s.repo.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	log.Info().Int64("author_id", a.ID).Msg("author created")

	resp := a.ToDetailResponse()
	return &resp, nil
}

func (s *authorService) UpdateAuthor(ctx context.Context, id int64, req model.UpdateAuthorRequest) (*model.AuthorDetailResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var a *model.Author
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.repo.LockByID(ctx, id)
		if err != nil {
			return err
		}

		if req.Email != nil && *req.Email != a.Email {
			if err := s.checkEmail(ctx, *req.Email, a.ID); err != nil {
				return err
			}
		}

		req.Apply(a)
		return s.repo.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	log.Info().Int64("author_id", id).Msg("author updated")

	resp := a.ToDetailResponse()
	return &resp, nil
}

// DeleteAuthor refuses to delete an author that still has books.
func (s *authorService) DeleteAuthor(ctx context.Context, id int64) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.LockByID(ctx, id); err != nil {
			return err
		}

		count, err := s.repo.CountBooks(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperror.Guard(fmt.Sprintf(
				"Cannot delete author. Author has %d book(s) assigned. Please reassign or delete the books first.",
				count,
			))
		}

		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx)
	log.Info().Int64("author_id", id).Msg("author deleted")
	return nil
}

func (s *authorService) ListAuthorBooks(ctx context.Context, id int64) ([]bookmodel.BookListResponse, error) {
	return cache.Remember(ctx, s.cache, func(ctx context.Context) ([]bookmodel.BookListResponse, error) {
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			return nil, err
		}
		books, err := s.repo.ListBooks(ctx, id)
		if err != nil {
			return nil, err
		}
		return bookmodel.ToListResponses(books), nil
	}, "authors", strconv.FormatInt(id, 10), "books")
}

func (s *authorService) GetStatistics(ctx context.Context, id int64) (*model.StatisticsResponse, error) {
	return cache.Remember(ctx, s.cache, func(ctx context.Context) (*model.StatisticsResponse, error) {
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			return nil, err
		}
		stats, err := s.repo.Statistics(ctx, id)
		if err != nil {
			return nil, err
		}
		resp := stats.ToResponse()
		return &resp, nil
	}, "authors", strconv.FormatInt(id, 10), "statistics")
}

func (s *authorService) checkEmail(ctx context.Context, email string, excludeID int64) error {
	exists, err := s.repo.EmailExists(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return apperror.Invalid("email", apperror.CodeUnique, "Author with this email already exists.")
	}
	return nil
}
