package repository

import (
	"context"
	"errors"
	"fmt"

	"catalog-api/internal/domains/author/model"
	bookmodel "catalog-api/internal/domains/book/model"
	bookrepo "catalog-api/internal/domains/book/repository"
	"catalog-api/internal/shared/apperror"
	"catalog-api/internal/shared/filter"
	"catalog-api/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectAuthorsSQL = `
	SELECT id, name, email, bio, created_at, updated_at
	FROM authors`

var authorOrderColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"created_at": "created_at",
}

// postgresRepository implements RepositoryInterface with pgx.
type postgresRepository struct {
	pool database.Querier
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) q(ctx context.Context) database.Querier {
	return database.QuerierFromContext(ctx, r.pool)
}

func scanAuthor(row pgx.Row) (*model.Author, error) {
	var a model.Author
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Bio, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// loadBooks fills Books on every author with a single query.
func loadBooks(ctx context.Context, q database.Querier, authors []*model.Author) error {
	if len(authors) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(authors))
	byID := make(map[int64]*model.Author, len(authors))
	for _, a := range authors {
		a.Books = []bookmodel.Book{}
		ids = append(ids, a.ID)
		byID[a.ID] = a
	}

	rows, err := q.Query(ctx, `
		SELECT id, title, isbn, price, author_id, created_at, updated_at
		FROM books
		WHERE author_id = ANY($1)
		ORDER BY created_at DESC, id DESC`, ids)
	if err != nil {
		return fmt.Errorf("load author books: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b bookmodel.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.ISBN, &b.Price, &b.AuthorID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return fmt.Errorf("scan author book: %w", err)
		}
		if a, ok := byID[b.AuthorID]; ok {
			b.Author = bookmodel.AuthorRef{ID: a.ID, Name: a.Name, Email: a.Email}
			a.Books = append(a.Books, b)
		}
	}
	return rows.Err()
}

func (r *postgresRepository) List(ctx context.Context, req model.ListAuthorsRequest) ([]*model.Author, error) {
	q := r.q(ctx)

	w := &filter.Where{}
	w.Search(filter.SearchTerms(req.Search), "name", "email")
	order := req.Ordering.SQL(authorOrderColumns, "created_at DESC", "id DESC")

	rows, err := q.Query(ctx, selectAuthorsSQL+w.Clause()+order, w.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	defer rows.Close()

	authors := make([]*model.Author, 0)
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	rows.Close()

	if err := loadBooks(ctx, q, authors); err != nil {
		return nil, err
	}
	return authors, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.Author, error) {
	return r.get(ctx, id, "")
}

func (r *postgresRepository) LockByID(ctx context.Context, id int64) (*model.Author, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *postgresRepository) get(ctx context.Context, id int64, suffix string) (*model.Author, error) {
	q := r.q(ctx)

	a, err := scanAuthor(q.QueryRow(ctx, selectAuthorsSQL+` WHERE id = $1`+suffix, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("Author", id)
		}
		return nil, fmt.Errorf("get author %d: %w", id, err)
	}

	if err := loadBooks(ctx, q, []*model.Author{a}); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *postgresRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	var exists bool
	err := r.q(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM authors WHERE email = $1 AND id <> $2)`,
		email, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) Create(ctx context.Context, a *model.Author) error {
	err := r.q(ctx).QueryRow(ctx, `
		INSERT INTO authors (name, email, bio)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		a.Name, a.Email, a.Bio,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return apperror.TranslatePG(fmt.Errorf("insert author: %w", err))
	}
	a.Books = []bookmodel.Book{}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, a *model.Author) error {
	err := r.q(ctx).QueryRow(ctx, `
		UPDATE authors
		SET name = $2, email = $3, bio = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		a.ID, a.Name, a.Email, a.Bio,
	).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NotFound("Author", a.ID)
		}
		return apperror.TranslatePG(fmt.Errorf("update author %d: %w", a.ID, err))
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.q(ctx).Exec(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete author %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Author", id)
	}
	return nil
}

func (r *postgresRepository) CountBooks(ctx context.Context, id int64) (int, error) {
	var n int
	if err := r.q(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM books WHERE author_id = $1`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("count books of author %d: %w", id, err)
	}
	return n, nil
}

func (r *postgresRepository) ListBooks(ctx context.Context, id int64) ([]*bookmodel.Book, error) {
	rows, err := r.q(ctx).Query(ctx, bookrepo.SelectBooksSQL+` WHERE b.author_id = $1`+bookrepo.DefaultBookOrder, id)
	if err != nil {
		return nil, fmt.Errorf("list books of author %d: %w", id, err)
	}
	return bookrepo.CollectBooks(rows)
}

func (r *postgresRepository) Statistics(ctx context.Context, id int64) (*model.Statistics, error) {
	var s model.Statistics
	err := r.q(ctx).QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM books WHERE author_id = $1),
			(SELECT COUNT(DISTINCT bc.category_id)
				FROM book_categories bc
				JOIN books b ON b.id = bc.book_id
				WHERE b.author_id = $1),
			(SELECT COALESCE(AVG(price), 0) FROM books WHERE author_id = $1),
			(SELECT title FROM books WHERE author_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1)`,
		id,
	).Scan(&s.TotalBooks, &s.TotalCategories, &s.AveragePrice, &s.LatestBook)
	if err != nil {
		return nil, fmt.Errorf("author %d statistics: %w", id, err)
	}
	return &s, nil
}
