package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"catalog-api/internal/domains/book/model"
	"catalog-api/internal/shared/apperror"
	"catalog-api/internal/shared/filter"
	"catalog-api/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SelectBooksSQL selects books joined with their author, in the column order
// CollectBooks expects. Callers append WHERE / ORDER BY.
const SelectBooksSQL = `
	SELECT
		b.id, b.title, b.isbn, b.price, b.author_id, b.created_at, b.updated_at,
		a.id, a.name, a.email
	FROM books b
	JOIN authors a ON a.id = b.author_id`

// DefaultBookOrder is newest first.
const DefaultBookOrder = ` ORDER BY b.created_at DESC, b.id DESC`

var bookOrderColumns = map[string]string{
	"title":      "b.title",
	"price":      "b.price",
	"created_at": "b.created_at",
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

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID, &b.Title, &b.ISBN, &b.Price, &b.AuthorID, &b.CreatedAt, &b.UpdatedAt,
		&b.Author.ID, &b.Author.Name, &b.Author.Email,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CollectBooks scans every row produced by a SelectBooksSQL query and closes rows.
func CollectBooks(rows pgx.Rows) ([]*model.Book, error) {
	defer rows.Close()

	books := make([]*model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return books, nil
}

// LoadCategories fills Categories on every book with one query.
func LoadCategories(ctx context.Context, q database.Querier, books []*model.Book) error {
	if len(books) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(books))
	byID := make(map[int64]*model.Book, len(books))
	for _, b := range books {
		b.Categories = []model.CategoryRef{}
		ids = append(ids, b.ID)
		byID[b.ID] = b
	}

	rows, err := q.Query(ctx, `
		SELECT bc.book_id, c.id, c.name, c.description
		FROM book_categories bc
		JOIN categories c ON c.id = bc.category_id
		WHERE bc.book_id = ANY($1)
		ORDER BY c.name, c.id`, ids)
	if err != nil {
		return fmt.Errorf("load book categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookID int64
		var c model.CategoryRef
		if err := rows.Scan(&bookID, &c.ID, &c.Name, &c.Description); err != nil {
			return fmt.Errorf("scan book category: %w", err)
		}
		if b, ok := byID[bookID]; ok {
			b.Categories = append(b.Categories, c)
		}
	}
	return rows.Err()
}

// buildWhereClause - Build dynamic WHERE clause for the list filters
func buildWhereClause(req model.ListBooksRequest) *filter.Where {
	w := &filter.Where{}
	if req.AuthorID != nil {
		w.Add("b.author_id = " + w.Arg(*req.AuthorID))
	}
	if len(req.CategoryIDs) > 0 {
		w.Add(`EXISTS (
			SELECT 1 FROM book_categories bc
			WHERE bc.book_id = b.id AND bc.category_id = ANY(` + w.Arg(req.CategoryIDs) + `))`)
	}
	w.Search(filter.SearchTerms(req.Search), "b.title", "b.isbn", "a.name")
	return w
}

func (r *postgresRepository) List(ctx context.Context, req model.ListBooksRequest) ([]*model.Book, error) {
	q := r.q(ctx)

	w := buildWhereClause(req)
	order := req.Ordering.SQL(bookOrderColumns, "b.created_at DESC", "b.id DESC")

	rows, err := q.Query(ctx, SelectBooksSQL+w.Clause()+order, w.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	books, err := CollectBooks(rows)
	if err != nil {
		return nil, err
	}

	if err := LoadCategories(ctx, q, books); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	return r.get(ctx, id, "")
}

func (r *postgresRepository) LockByID(ctx context.Context, id int64) (*model.Book, error) {
	return r.get(ctx, id, " FOR UPDATE OF b")
}

func (r *postgresRepository) get(ctx context.Context, id int64, suffix string) (*model.Book, error) {
	q := r.q(ctx)

	b, err := scanBook(q.QueryRow(ctx, SelectBooksSQL+` WHERE b.id = $1`+suffix, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("Book", id)
		}
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}

	if err := LoadCategories(ctx, q, []*model.Book{b}); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *postgresRepository) ISBNExists(ctx context.Context, isbn string, excludeID int64) (bool, error) {
	var exists bool
	err := r.q(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM books WHERE isbn = $1 AND id <> $2)`,
		isbn, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check isbn: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) AuthorExists(ctx context.Context, authorID int64) (bool, error) {
	var exists bool
	err := r.q(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM authors WHERE id = $1)`, authorID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check author: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) CategoryExists(ctx context.Context, categoryID int64) (bool, error) {
	var exists bool
	err := r.q(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, categoryID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) MissingCategoryIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.q(ctx).Query(ctx, `SELECT id FROM categories WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("check categories: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("check categories: %w", err)
	}

	present := make(map[int64]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}

	seen := make(map[int64]struct{})
	var missing []int64
	for _, id := range ids {
		if _, ok := present[id]; ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		missing = append(missing, id)
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing, nil
}

func (r *postgresRepository) Create(ctx context.Context, b *model.Book) error {
	err := r.q(ctx).QueryRow(ctx, `
		INSERT INTO books (title, isbn, price, author_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		b.Title, b.ISBN, b.Price, b.AuthorID,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return apperror.TranslatePG(fmt.Errorf("insert book: %w", err))
	}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, b *model.Book) error {
	err := r.q(ctx).QueryRow(ctx, `
		UPDATE books
		SET title = $2, isbn = $3, price = $4, author_id = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		b.ID, b.Title, b.ISBN, b.Price, b.AuthorID,
	).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NotFound("Book", b.ID)
		}
		return apperror.TranslatePG(fmt.Errorf("update book %d: %w", b.ID, err))
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.q(ctx).Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Book", id)
	}
	return nil
}

func (r *postgresRepository) ReplaceCategories(ctx context.Context, bookID int64, categoryIDs []int64) error {
	q := r.q(ctx)

	if _, err := q.Exec(ctx, `DELETE FROM book_categories WHERE book_id = $1`, bookID); err != nil {
		return fmt.Errorf("clear categories of book %d: %w", bookID, err)
	}
	if len(categoryIDs) == 0 {
		return nil
	}

	_, err := q.Exec(ctx, `
		INSERT INTO book_categories (book_id, category_id)
		SELECT $1, c FROM unnest($2::bigint[]) AS c
		ON CONFLICT DO NOTHING`,
		bookID, categoryIDs,
	)
	if err != nil {
		err = apperror.TranslatePG(fmt.Errorf("set categories of book %d: %w", bookID, err))
		return apperror.RenameField(err, "category_id", "category_ids")
	}
	return nil
}

func (r *postgresRepository) AddCategory(ctx context.Context, bookID, categoryID int64) error {
	_, err := r.q(ctx).Exec(ctx,
		`INSERT INTO book_categories (book_id, category_id) VALUES ($1, $2)`,
		bookID, categoryID,
	)
	if err != nil {
		return apperror.TranslatePG(fmt.Errorf("attach category %d to book %d: %w", categoryID, bookID, err))
	}
	return nil
}

func (r *postgresRepository) RemoveCategory(ctx context.Context, bookID, categoryID int64) error {
	tag, err := r.q(ctx).Exec(ctx,
		`DELETE FROM book_categories WHERE book_id = $1 AND category_id = $2`,
		bookID, categoryID,
	)
	if err != nil {
		return fmt.Errorf("detach category %d from book %d: %w", categoryID, bookID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.Invalid("category_id", apperror.CodeInvalid, "Category is not assigned to this book.")
	}
	return nil
}

func (r *postgresRepository) Touch(ctx context.Context, bookID int64) error {
	_, err := r.q(ctx).Exec(ctx, `UPDATE books SET updated_at = now() WHERE id = $1`, bookID)
	if err != nil {
		return fmt.Errorf("touch book %d: %w", bookID, err)
	}
	return nil
}
