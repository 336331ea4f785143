package repository

import (
	"context"
	"errors"
	"fmt"

	bookmodel "catalog-api/internal/domains/book/model"
	bookrepo "catalog-api/internal/domains/book/repository"
	"catalog-api/internal/domains/category/model"
	"catalog-api/internal/shared/apperror"
	"catalog-api/internal/shared/filter"
	"catalog-api/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectCategoriesSQL = `
	SELECT c.id, c.name, c.description, c.created_at, c.updated_at
	FROM categories c`

var categoryOrderColumns = map[string]string{
	"name":       "c.name",
	"created_at": "c.created_at",
}

type postgresRepository struct {
	pool database.Querier
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) q(ctx context.Context) database.Querier {
	return database.QuerierFromContext(ctx, r.pool)
}

func scanCategory(row pgx.Row) (*model.Category, error) {
	var c model.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func collectCategories(rows pgx.Rows) ([]*model.Category, error) {
	defer rows.Close()

	categories := make([]*model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return categories, nil
}

// loadBooks fills Books on every category with a single query.
func loadBooks(ctx context.Context, q database.Querier, categories []*model.Category) error {
	if len(categories) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(categories))
	byID := make(map[int64]*model.Category, len(categories))
	for _, c := range categories {
		c.Books = []model.BookRef{}
		ids = append(ids, c.ID)
		byID[c.ID] = c
	}

	rows, err := q.Query(ctx, `
		SELECT bc.category_id, b.id, b.title
		FROM book_categories bc
		JOIN books b ON b.id = bc.book_id
		WHERE bc.category_id = ANY($1)
		ORDER BY b.created_at DESC, b.id DESC`, ids)
	if err != nil {
		return fmt.Errorf("load category books: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var categoryID int64
		var b model.BookRef
		if err := rows.Scan(&categoryID, &b.ID, &b.Title); err != nil {
			return fmt.Errorf("scan category book: %w", err)
		}
		if c, ok := byID[categoryID]; ok {
			c.Books = append(c.Books, b)
		}
	}
	return rows.Err()
}

func (r *postgresRepository) List(ctx context.Context, req model.ListCategoriesRequest) ([]*model.Category, error) {
	q := r.q(ctx)

	w := &filter.Where{}
	w.Search(filter.SearchTerms(req.Search), "c.name", "c.description")
	order := req.Ordering.SQL(categoryOrderColumns, "c.created_at DESC", "c.id DESC")

	rows, err := q.Query(ctx, selectCategoriesSQL+w.Clause()+order, w.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	categories, err := collectCategories(rows)
	if err != nil {
		return nil, err
	}

	if err := loadBooks(ctx, q, categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	return r.get(ctx, id, "")
}

func (r *postgresRepository) LockByID(ctx context.Context, id int64) (*model.Category, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *postgresRepository) get(ctx context.Context, id int64, suffix string) (*model.Category, error) {
	q := r.q(ctx)

	c, err := scanCategory(q.QueryRow(ctx, selectCategoriesSQL+` WHERE c.id = $1`+suffix, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("Category", id)
		}
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}

	if err := loadBooks(ctx, q, []*model.Category{c}); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *postgresRepository) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	err := r.q(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE LOWER(name) = LOWER($1) AND id <> $2)`,
		name, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) Create(ctx context.Context, c *model.Category) error {
	err := r.q(ctx).QueryRow(ctx, `
		INSERT INTO categories (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`,
		c.Name, c.Description,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return apperror.TranslatePG(fmt.Errorf("insert category: %w", err))
	}
	c.Books = []model.BookRef{}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, c *model.Category) error {
	err := r.q(ctx).QueryRow(ctx, `
		UPDATE categories
		SET name = $2, description = $3, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.Name, c.Description,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NotFound("Category", c.ID)
		}
		return apperror.TranslatePG(fmt.Errorf("update category %d: %w", c.ID, err))
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.q(ctx).Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Category", id)
	}
	return nil
}

func (r *postgresRepository) CountBooks(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.q(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM book_categories WHERE category_id = $1`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count books of category %d: %w", id, err)
	}
	return n, nil
}

func (r *postgresRepository) ListBooks(ctx context.Context, id int64) ([]*bookmodel.Book, error) {
	rows, err := r.q(ctx).Query(ctx, bookrepo.SelectBooksSQL+`
		JOIN book_categories bc ON bc.book_id = b.id
		WHERE bc.category_id = $1`+bookrepo.DefaultBookOrder, id)
	if err != nil {
		return nil, fmt.Errorf("list books of category %d: %w", id, err)
	}
	return bookrepo.CollectBooks(rows)
}

func (r *postgresRepository) Statistics(ctx context.Context, id int64) (*model.Statistics, error) {
	var s model.Statistics
	err := r.q(ctx).QueryRow(ctx, `
		WITH cb AS (
			SELECT b.id, b.title, b.price, b.author_id, b.created_at
			FROM books b
			JOIN book_categories bc ON bc.book_id = b.id
			WHERE bc.category_id = $1
		)
		SELECT
			(SELECT COUNT(*) FROM cb),
			(SELECT COUNT(DISTINCT author_id) FROM cb),
			(SELECT COALESCE(AVG(price), 0) FROM cb),
			(SELECT COALESCE(MIN(price), 0) FROM cb),
			(SELECT COALESCE(MAX(price), 0) FROM cb),
			(SELECT title FROM cb ORDER BY created_at DESC, id DESC LIMIT 1)`,
		id,
	).Scan(&s.TotalBooks, &s.TotalAuthors, &s.AveragePrice, &s.MinPrice, &s.MaxPrice, &s.LatestBook)
	if err != nil {
		return nil, fmt.Errorf("category %d statistics: %w", id, err)
	}
	return &s, nil
}

func (r *postgresRepository) Popular(ctx context.Context, limit int) ([]*model.Category, error) {
	q := r.q(ctx)

	rows, err := q.Query(ctx, `
		SELECT c.id, c.name, c.description, c.created_at, c.updated_at
		FROM categories c
		LEFT JOIN book_categories bc ON bc.category_id = c.id
		GROUP BY c.id
		ORDER BY COUNT(bc.book_id) DESC, c.name, c.id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("popular categories: %w", err)
	}
	categories, err := collectCategories(rows)
	if err != nil {
		return nil, err
	}

	if err := loadBooks(ctx, q, categories); err != nil {
		return nil, err
	}
	return categories, nil
}
