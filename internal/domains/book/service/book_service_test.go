package service

import (
	"context"
	"errors"
	"encoding/json"
	"sort"
	"strings"
	"testing"
	"time"

	"catalog-api/internal/domains/book/model"
	"catalog-api/internal/shared/apperror"
	"catalog-api/internal/shared/filter"
	"catalog-api/pkg/cache"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// repoFake keeps books in memory and implements repository.RepositoryInterface.
type repoFake struct {
	books      map[int64]*model.Book
	authors    map[int64]model.AuthorRef
	categories map[int64]model.CategoryRef
	nextID     int64
	touched    []int64
	listCalls  int

	createFn func(ctx context.Context, b *model.Book) error
}

func newRepoFake() *repoFake {
	return &repoFake{
		books: map[int64]*model.Book{},
		authors: map[int64]model.AuthorRef{
			1: {ID: 1, Name: "Jane Doe", Email: "jane@example.com"},
			2: {ID: 2, Name: "John Roe", Email: "john@example.com"},
		},
		categories: map[int64]model.CategoryRef{
			10: {ID: 10, Name: "Fiction"},
			11: {ID: 11, Name: "Science"},
		},
		nextID: 100,
	}
}

func (f *repoFake) clone(b *model.Book) *model.Book {
	c := *b
	c.Author = f.authors[b.AuthorID]
	c.Categories = append([]model.CategoryRef{}, b.Categories...)
	return &c
}

func (f *repoFake) List(_ context.Context, req model.ListBooksRequest) ([]*model.Book, error) {
	f.listCalls++
	out := make([]*model.Book, 0, len(f.books))
	for _, b := range f.books {
		if req.AuthorID != nil && b.AuthorID != *req.AuthorID {
			continue
		}
		if len(req.CategoryIDs) > 0 && !hasAnyCategory(b, req.CategoryIDs) {
			continue
		}
		if req.Search != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(req.Search)) {
			continue
		}
		out = append(out, f.clone(b))
	}
	if len(req.Ordering) > 0 && req.Ordering[0].Field == "price" {
		desc := req.Ordering[0].Desc
		sort.Slice(out, func(i, j int) bool {
			if desc {
				return out[i].Price.GreaterThan(out[j].Price)
			}
			return out[i].Price.LessThan(out[j].Price)
		})
		return out, nil
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func hasAnyCategory(b *model.Book, ids []int64) bool {
	for _, c := range b.Categories {
		for _, id := range ids {
			if c.ID == id {
				return true
			}
		}
	}
	return false
}

func (f *repoFake) GetByID(_ context.Context, id int64) (*model.Book, error) {
	b, ok := f.books[id]
	if !ok {
		return nil, apperror.NotFound("Book", id)
	}
	return f.clone(b), nil
}

func (f *repoFake) LockByID(ctx context.Context, id int64) (*model.Book, error) {
	return f.GetByID(ctx, id)
}

func (f *repoFake) ISBNExists(_ context.Context, isbn string, excludeID int64) (bool, error) {
	for _, b := range f.books {
		if b.ISBN == isbn && b.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *repoFake) AuthorExists(_ context.Context, id int64) (bool, error) {
	_, ok := f.authors[id]
	return ok, nil
}

func (f *repoFake) CategoryExists(_ context.Context, id int64) (bool, error) {
	_, ok := f.categories[id]
	return ok, nil
}

func (f *repoFake) MissingCategoryIDs(_ context.Context, ids []int64) ([]int64, error) {
	var missing []int64
	for _, id := range ids {
		if _, ok := f.categories[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing, nil
}

func (f *repoFake) Create(ctx context.Context, b *model.Book) error {
	if f.createFn != nil {
		return f.createFn(ctx, b)
	}
	f.nextID++
	b.ID = f.nextID
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	stored := *b
	f.books[b.ID] = &stored
	return nil
}

func (f *repoFake) Update(_ context.Context, b *model.Book) error {
	stored, ok := f.books[b.ID]
	if !ok {
		return apperror.NotFound("Book", b.ID)
	}
	stored.Title, stored.ISBN, stored.Price, stored.AuthorID = b.Title, b.ISBN, b.Price, b.AuthorID
	stored.UpdatedAt = time.Now()
	return nil
}

func (f *repoFake) Delete(_ context.Context, id int64) error {
	delete(f.books, id)
	return nil
}

func (f *repoFake) ReplaceCategories(_ context.Context, bookID int64, ids []int64) error {
	b := f.books[bookID]
	b.Categories = nil
	for _, id := range ids {
		b.Categories = append(b.Categories, f.categories[id])
	}
	return nil
}

func (f *repoFake) AddCategory(_ context.Context, bookID, categoryID int64) error {
	b := f.books[bookID]
	b.Categories = append(b.Categories, f.categories[categoryID])
	return nil
}

func (f *repoFake) RemoveCategory(_ context.Context, bookID, categoryID int64) error {
	b := f.books[bookID]
	kept := b.Categories[:0]
	for _, c := range b.Categories {
		if c.ID != categoryID {
			kept = append(kept, c)
		}
	}
	b.Categories = kept
	return nil
}

func (f *repoFake) Touch(_ context.Context, bookID int64) error {
	f.touched = append(f.touched, bookID)
	return nil
}

type txFake struct{ calls int }

func (t *txFake) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

func newService(repo *repoFake) (*BookService, *txFake) {
	tx := &txFake{}
	return NewService(repo, tx, nil).(*BookService), tx
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func validCreate() model.CreateBookRequest {
	return model.CreateBookRequest{
		Title:       "Dune",
		ISBN:        "9780441172719",
		Price:       dec("12.50"),
		AuthorID:    1,
		CategoryIDs: []int64{10},
	}
}

func requireField(t *testing.T, err error, field, message string) {
	t.Helper()
	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, field, ve.Fields[0].Field)
	if message != "" {
		assert.Equal(t, message, ve.Fields[0].Message)
	}
}

func TestCreateBook_ReturnsDetail(t *testing.T) {
	repo := newRepoFake()
	svc, tx := newService(repo)

	got, err := svc.CreateBook(context.Background(), validCreate())

	require.NoError(t, err)
	assert.Equal(t, 1, tx.calls)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, "Jane Doe", got.Author.Name)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, "Fiction", got.Categories[0].Name)
	assert.Equal(t, "$12.50", got.PriceDisplay)
}

func TestCreateBook_UnknownAuthor(t *testing.T) {
	svc, _ := newService(newRepoFake())
	req := validCreate()
	req.AuthorID = 99

	_, err := svc.CreateBook(context.Background(), req)

	requireField(t, err, "author_id", "Author with this ID does not exist.")
}

func TestCreateBook_UnknownCategoriesAreListed(t *testing.T) {
	svc, _ := newService(newRepoFake())
	req := validCreate()
	req.CategoryIDs = []int64{10, 42, 7}

	_, err := svc.CreateBook(context.Background(), req)

	requireField(t, err, "category_ids", "Categories with IDs [7, 42] do not exist.")
}

func TestCreateBook_DuplicateISBN(t *testing.T) {
	repo := newRepoFake()
	svc, _ := newService(repo)
	_, err := svc.CreateBook(context.Background(), validCreate())
	require.NoError(t, err)

	req := validCreate()
	req.Title = "Another"
	_, err = svc.CreateBook(context.Background(), req)

	requireField(t, err, "isbn", "A book with this ISBN already exists")
	assert.Len(t, repo.books, 1)
}

func TestCreateBook_InvalidPayloadSkipsTransaction(t *testing.T) {
	svc, tx := newService(newRepoFake())
	req := validCreate()
	req.ISBN = "978044117271"

	_, err := svc.CreateBook(context.Background(), req)

	requireField(t, err, "isbn", "ISBN must be 13 characters long")
	assert.Zero(t, tx.calls)
}

func TestCreateBook_ConflictAtCommitSurfacesAsValidation(t *testing.T) {
	repo := newRepoFake()
	repo.createFn = func(context.Context, *model.Book) error {
		return apperror.Invalid("isbn", apperror.CodeUnique, "A book with this ISBN already exists")
	}
	svc, _ := newService(repo)

	_, err := svc.CreateBook(context.Background(), validCreate())

	requireField(t, err, "isbn", "A book with this ISBN already exists")
}

func TestUpdateBook_CategoryIDs(t *testing.T) {
	ctx := context.Background()
	repo := newRepoFake()
	svc, _ := newService(repo)
	created, err := svc.CreateBook(ctx, validCreate())
	require.NoError(t, err)

	title := "Dune (2nd ed.)"
	got, err := svc.UpdateBook(ctx, created.ID, model.UpdateBookRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Dune (2nd ed.)", got.Title)
	assert.Len(t, got.Categories, 1, "omitted category_ids leaves categories untouched")

	empty := []int64{}
	got, err = svc.UpdateBook(ctx, created.ID, model.UpdateBookRequest{CategoryIDs: &empty})
	require.NoError(t, err)
	assert.Empty(t, got.Categories, "empty category_ids clears categories")

	both := []int64{10, 11}
	got, err = svc.UpdateBook(ctx, created.ID, model.UpdateBookRequest{CategoryIDs: &both})
	require.NoError(t, err)
	assert.Len(t, got.Categories, 2)
}

func TestUpdateBook_ISBNUniquenessExcludesSelf(t *testing.T) {
	ctx := context.Background()
	repo := newRepoFake()
	svc, _ := newService(repo)
	first, err := svc.CreateBook(ctx, validCreate())
	require.NoError(t, err)

	second := validCreate()
	second.ISBN = "9780441172720"
	other, err := svc.CreateBook(ctx, second)
	require.NoError(t, err)

	same := first.ISBN
	_, err = svc.UpdateBook(ctx, first.ID, model.UpdateBookRequest{ISBN: &same})
	assert.NoError(t, err)

	_, err = svc.UpdateBook(ctx, other.ID, model.UpdateBookRequest{ISBN: &same})
	requireField(t, err, "isbn", "A book with this ISBN already exists")
}

func TestUpdateBook_ReassignAuthor(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(newRepoFake())
	created, err := svc.CreateBook(ctx, validCreate())
	require.NoError(t, err)

	author := int64(2)
	got, err := svc.UpdateBook(ctx, created.ID, model.UpdateBookRequest{AuthorID: &author})
	require.NoError(t, err)
	assert.Equal(t, "John Roe", got.Author.Name)

	missing := int64(50)
	_, err = svc.UpdateBook(ctx, created.ID, model.UpdateBookRequest{AuthorID: &missing})
	requireField(t, err, "author_id", "Author with this ID does not exist.")
}

func TestUpdateBook_NotFound(t *testing.T) {
	svc, _ := newService(newRepoFake())
	title := "x"

	_, err := svc.UpdateBook(context.Background(), 404, model.UpdateBookRequest{Title: &title})

	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteBook(t *testing.T) {
	ctx := context.Background()
	repo := newRepoFake()
	svc, _ := newService(repo)
	created, err := svc.CreateBook(ctx, validCreate())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBook(ctx, created.ID))
	assert.Empty(t, repo.books)

	assert.True(t, apperror.IsNotFound(svc.DeleteBook(ctx, created.ID)))
}

func TestAddCategory(t *testing.T) {
	ctx := context.Background()
	repo := newRepoFake()
	svc, _ := newService(repo)
	req := validCreate()
	req.CategoryIDs = nil
	created, err := svc.CreateBook(ctx, req)
	require.NoError(t, err)

	got, err := svc.AddCategory(ctx, created.ID, 10)
	require.NoError(t, err)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, []int64{created.ID}, repo.touched)

	_, err = svc.AddCategory(ctx, created.ID, 10)
	requireField(t, err, "category_id", "Category is already assigned to this book.")

	_, err = svc.AddCategory(ctx, created.ID, 77)
	requireField(t, err, "category_id", "Category with this ID does not exist.")

	_, err = svc.AddCategory(ctx, 999, 10)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRemoveCategory(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(newRepoFake())
	created, err := svc.CreateBook(ctx, validCreate())
	require.NoError(t, err)

	_, err = svc.RemoveCategory(ctx, created.ID, 11)
	requireField(t, err, "category_id", "Category is not assigned to this book.")

	got, err := svc.RemoveCategory(ctx, created.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, got.Categories)
}

func TestListBooks(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(newRepoFake())
	_, err := svc.CreateBook(ctx, validCreate())
	require.NoError(t, err)

	got, err := svc.ListBooks(ctx, model.ListBooksRequest{})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Jane Doe", got[0].AuthorName)
	assert.Equal(t, "12.50", got[0].Price)
}

func TestGetBook_PropagatesErrors(t *testing.T) {
	svc, _ := newService(newRepoFake())

	_, err := svc.GetBook(context.Background(), 1)

	var nf *apperror.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestFormatIDs(t *testing.T) {
	assert.Equal(t, "[3]", formatIDs([]int64{3}))
	assert.Equal(t, "[3, 7]", formatIDs([]int64{3, 7}))
}

func seedBooks(t *testing.T, svc *BookService) {
	t.Helper()
	ctx := context.Background()
	reqs := []model.CreateBookRequest{
		{Title: "Dune", ISBN: "9780441172719", Price: dec("12.50"), AuthorID: 1, CategoryIDs: []int64{10}},
		{Title: "Dune Messiah", ISBN: "9780593098233", Price: dec("9.99"), AuthorID: 1, CategoryIDs: []int64{11}},
		{Title: "Foundation", ISBN: "9780553293357", Price: dec("15.00"), AuthorID: 2, CategoryIDs: []int64{10, 11}},
	}
	for _, r := range reqs {
		_, err := svc.CreateBook(ctx, r)
		require.NoError(t, err)
	}
}

func titles(books []model.BookListResponse) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.Title)
	}
	return out
}

func TestListBooks_Filters(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(newRepoFake())
	seedBooks(t, svc)
	author := int64(2)

	tests := []struct {
		name string
		req  model.ListBooksRequest
		want []string
	}{
		{name: "by author", req: model.ListBooksRequest{AuthorID: &author}, want: []string{"Foundation"}},
		{name: "by any category", req: model.ListBooksRequest{CategoryIDs: []int64{11}}, want: []string{"Foundation", "Dune Messiah"}},
		{name: "search", req: model.ListBooksRequest{Search: "dune"}, want: []string{"Dune Messiah", "Dune"}},
		{
			name: "cheapest first",
			req:  model.ListBooksRequest{Ordering: filter.Ordering{{Field: "price"}}},
			want: []string{"Dune Messiah", "Dune", "Foundation"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ListBooks(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestListBooks_UnknownFilterValues(t *testing.T) {
	ctx := context.Background()
	repo := newRepoFake()
	svc, _ := newService(repo)
	missing := int64(99)

	_, err := svc.ListBooks(ctx, model.ListBooksRequest{AuthorID: &missing})
	requireField(t, err, "author", apperror.MsgInvalidChoice)

	_, err = svc.ListBooks(ctx, model.ListBooksRequest{CategoryIDs: []int64{10, 77}})
	requireField(t, err, "categories", "Select a valid choice. 77 is not one of the available choices.")

	assert.Zero(t, repo.listCalls)
}

// mapCache is an in-memory cache.Cache.
type mapCache struct{ data map[string][]byte }

func (m *mapCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *mapCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *mapCache) Increment(_ context.Context, key string) (int64, error) {
	var n int64
	if raw, ok := m.data[key]; ok {
		_ = json.Unmarshal(raw, &n)
	}
	n++
	raw, _ := json.Marshal(n)
	m.data[key] = raw
	return n, nil
}

func (m *mapCache) Ping(context.Context) error { return nil }

func TestListBooks_CacheKeyFollowsFilters(t *testing.T) {
	ctx := context.Background()
	repo := newRepoFake()
	versioned := cache.NewVersioned(&mapCache{data: map[string][]byte{}}, "catalog", time.Minute)
	svc := NewService(repo, &txFake{}, versioned).(*BookService)
	seedBooks(t, svc)
	author := int64(2)

	all, err := svc.ListBooks(ctx, model.ListBooksRequest{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	filtered, err := svc.ListBooks(ctx, model.ListBooksRequest{AuthorID: &author})
	require.NoError(t, err)
	assert.Equal(t, []string{"Foundation"}, titles(filtered))
	assert.Equal(t, 2, repo.listCalls, "a filtered list must not be served from the unfiltered entry")

	again, err := svc.ListBooks(ctx, model.ListBooksRequest{AuthorID: &author})
	require.NoError(t, err)
	assert.Equal(t, titles(filtered), titles(again))
	assert.Equal(t, 2, repo.listCalls, "same filters hit the cache")
}
