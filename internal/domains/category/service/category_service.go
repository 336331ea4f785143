package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	bookmodel "catalog-api/internal/domains/book/model"
	"catalog-api/internal/domains/category/model"
	"catalog-api/internal/domains/category/repository"
	"catalog-api/internal/shared/apperror"
	"catalog-api/pkg/cache"
	"catalog-api/pkg/database"

	"github.com/rs/zerolog/log"
)

// ServiceInterface - business operations on categories
type ServiceInterface interface {
	ListCategories(ctx context.Context, req model.ListCategoriesRequest) ([]model.CategoryListResponse, error)
	GetCategory(ctx context.Context, id int64) (*model.CategoryDetailResponse, error)
	CreateCategory(ctx context.Context, req model.CreateCategoryRequest) (*model.CategoryDetailResponse, error)
	UpdateCategory(ctx context.Context, id int64, req model.UpdateCategoryRequest) (*model.CategoryDetailResponse, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListCategoryBooks(ctx context.Context, id int64) ([]bookmodel.BookListResponse, error)
	GetStatistics(ctx context.Context, id int64) (*model.StatisticsResponse, error)
	PopularCategories(ctx context.Context, limit int) ([]model.CategoryListResponse, error)
}

type categoryService struct {
	repo  repository.RepositoryInterface
	tx    database.Transactor
	cache *cache.Versioned
}

// NewCategoryService - constructor with DI. cache may be nil.
func NewCategoryService(repo repository.RepositoryInterface, tx database.Transactor, cache *cache.Versioned) ServiceInterface {
	return &categoryService{repo: repo, tx: tx, cache: cache}
}

func (s *categoryService) ListCategories(ctx context.Context, req model.ListCategoriesRequest) ([]model.CategoryListResponse, error) {
	return cache.Remember(ctx, s.cache, func(ctx context.Context) ([]model.CategoryListResponse, error) {
		categories, err := s.repo.List(ctx, req)
		if err != nil {
			return nil, err
		}
		return model.ToListResponses(categories), nil
	}, "categories", "list", req.CacheKey())
}

func (s *categoryService) GetCategory(ctx context.Context, id int64) (*model.CategoryDetailResponse, error) {
	return cache.Remember(ctx, s.cache, func(ctx context.Context) (*model.CategoryDetailResponse, error) {
		c, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		resp := c.ToDetailResponse()
		return &resp, nil
	}, "categories", strconv.FormatInt(id, 10))
}

func (s *categoryService) CreateCategory(ctx context.Context, req model.CreateCategoryRequest) (*model.CategoryDetailResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c := &model.Category{Name: req.Name, Description: req.Description}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkName(ctx, c.Name, 0); err != nil {
			return err
		}
		return s.repo.Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	log.Info().Int64("category_id", c.ID).Str("name", c.Name).Msg("category created")

	resp := c.ToDetailResponse()
	return &resp, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id int64, req model.UpdateCategoryRequest) (*model.CategoryDetailResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var c *model.Category
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.repo.LockByID(ctx, id)
		if err != nil {
			return err
		}

		// Re-casing the own name ("fiction" -> "Fiction") must not collide with itself.
		if req.Name != nil && !strings.EqualFold(*req.Name, c.Name) {
			if err := s.checkName(ctx, *req.Name, c.ID); err != nil {
				return err
			}
		}

		req.Apply(c)
		return s.repo.Update(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	log.Info().Int64("category_id", id).Msg("category updated")

	resp := c.ToDetailResponse()
	return &resp, nil
}

// DeleteCategory refuses to delete a category still assigned to books.
func (s *categoryService) DeleteCategory(ctx context.Context, id int64) error {
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
				"Cannot delete category. Category has %d book(s) assigned. Please remove the category from books first.",
				count,
			))
		}

		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx)
	log.Info().Int64("category_id", id).Msg("category deleted")
	return nil
}

func (s *categoryService) ListCategoryBooks(ctx context.Context, id int64) ([]bookmodel.BookListResponse, error) {
	return cache.Remember(ctx, s.cache, func(ctx context.Context) ([]bookmodel.BookListResponse, error) {
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			return nil, err
		}
		books, err := s.repo.ListBooks(ctx, id)
		if err != nil {
			return nil, err
		}
		return bookmodel.ToListResponses(books), nil
	}, "categories", strconv.FormatInt(id, 10), "books")
}

func (s *categoryService) GetStatistics(ctx context.Context, id int64) (*model.StatisticsResponse, error) {
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
	}, "categories", strconv.FormatInt(id, 10), "statistics")
}

// PopularCategories returns at most limit categories, most books first.
func (s *categoryService) PopularCategories(ctx context.Context, limit int) ([]model.CategoryListResponse, error) {
	if limit <= 0 {
		return nil, apperror.Invalid("limit", apperror.CodeInvalid, "Ensure this value is greater than or equal to 1.")
	}

	return cache.Remember(ctx, s.cache, func(ctx context.Context) ([]model.CategoryListResponse, error) {
		categories, err := s.repo.Popular(ctx, limit)
		if err != nil {
			return nil, err
		}
		return model.ToListResponses(categories), nil
	}, "categories", "popular", strconv.Itoa(limit))
}

func (s *categoryService) checkName(ctx context.Context, name string, excludeID int64) error {
	exists, err := s.repo.NameExists(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return apperror.Invalid("name", apperror.CodeUnique, "Category with this name already exists.")
	}
	return nil
}
