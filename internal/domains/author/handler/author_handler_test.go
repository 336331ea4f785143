package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"catalog-api/internal/domains/author/model"
	bookmodel "catalog-api/internal/domains/book/model"
	"catalog-api/internal/shared/apperror"
	"catalog-api/internal/shared/filter"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceMock struct {
	listFn   func(ctx context.Context, req model.ListAuthorsRequest) ([]model.AuthorListResponse, error)
	getFn    func(ctx context.Context, id int64) (*model.AuthorDetailResponse, error)
	createFn func(ctx context.Context, req model.CreateAuthorRequest) (*model.AuthorDetailResponse, error)
	updateFn func(ctx context.Context, id int64, req model.UpdateAuthorRequest) (*model.AuthorDetailResponse, error)
	deleteFn func(ctx context.Context, id int64) error
	booksFn  func(ctx context.Context, id int64) ([]bookmodel.BookListResponse, error)
	statsFn  func(ctx context.Context, id int64) (*model.StatisticsResponse, error)
}

func (m *serviceMock) ListAuthors(ctx context.Context, req model.ListAuthorsRequest) ([]model.AuthorListResponse, error) {
	return m.listFn(ctx, req)
}
func (m *serviceMock) GetAuthor(ctx context.Context, id int64) (*model.AuthorDetailResponse, error) {
	return m.getFn(ctx, id)
}
func (m *serviceMock) CreateAuthor(ctx context.Context, req model.CreateAuthorRequest) (*model.AuthorDetailResponse, error) {
	return m.createFn(ctx, req)
}
func (m *serviceMock) UpdateAuthor(ctx context.Context, id int64, req model.UpdateAuthorRequest) (*model.AuthorDetailResponse, error) {
	return m.updateFn(ctx, id, req)
}
func (m *serviceMock) DeleteAuthor(ctx context.Context, id int64) error { return m.deleteFn(ctx, id) }
func (m *serviceMock) ListAuthorBooks(ctx context.Context, id int64) ([]bookmodel.BookListResponse, error) {
	return m.booksFn(ctx, id)
}
func (m *serviceMock) GetStatistics(ctx context.Context, id int64) (*model.StatisticsResponse, error) {
	return m.statsFn(ctx, id)
}

func setupRouter(svc *serviceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAuthorHandler(svc)
	r.GET("/authors", h.ListAuthors)
	r.POST("/authors", h.CreateAuthor)
	r.GET("/authors/:id", h.GetAuthor)
	r.PUT("/authors/:id", h.UpdateAuthor)
	r.DELETE("/authors/:id", h.DeleteAuthor)
	r.GET("/authors/:id/books", h.ListAuthorBooks)
	r.GET("/authors/:id/statistics", h.GetStatistics)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateAuthor(t *testing.T) {
	svc := &serviceMock{
		createFn: func(_ context.Context, req model.CreateAuthorRequest) (*model.AuthorDetailResponse, error) {
			assert.Equal(t, "Jane Doe", req.Name)
			return &model.AuthorDetailResponse{ID: 1, Name: req.Name, Email: req.Email}, nil
		},
	}

	w := do(setupRouter(svc), http.MethodPost, "/authors", `{"name":"Jane Doe","email":"jane@example.com"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	var body struct {
		Success bool                       `json:"success"`
		Message string                     `json:"message"`
		Data    model.AuthorDetailResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Author created successfully", body.Message)
	assert.Equal(t, int64(1), body.Data.ID)
}

func TestCreateAuthor_DuplicateEmail(t *testing.T) {
	svc := &serviceMock{
		createFn: func(context.Context, model.CreateAuthorRequest) (*model.AuthorDetailResponse, error) {
			return nil, apperror.Invalid("email", apperror.CodeUnique, "Author with this email already exists.")
		},
	}

	w := do(setupRouter(svc), http.MethodPost, "/authors", `{"name":"Jane","email":"jane@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"email"`)
	assert.Contains(t, w.Body.String(), "Author with this email already exists.")
}

func TestGetAuthor_NotFoundAndBadID(t *testing.T) {
	svc := &serviceMock{
		getFn: func(_ context.Context, id int64) (*model.AuthorDetailResponse, error) {
			return nil, apperror.NotFound("Author", id)
		},
	}
	r := setupRouter(svc)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/authors/9", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/authors/abc", "").Code)
}

func TestUpdateAuthor(t *testing.T) {
	svc := &serviceMock{
		updateFn: func(_ context.Context, id int64, req model.UpdateAuthorRequest) (*model.AuthorDetailResponse, error) {
			require.NotNil(t, req.Bio)
			assert.Nil(t, req.Name)
			return &model.AuthorDetailResponse{ID: id, Bio: *req.Bio}, nil
		},
	}

	w := do(setupRouter(svc), http.MethodPut, "/authors/4", `{"bio":"Sand."}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Author updated successfully")
}

func TestDeleteAuthor(t *testing.T) {
	svc := &serviceMock{
		deleteFn: func(_ context.Context, id int64) error {
			if id == 1 {
				return apperror.Guard("Cannot delete author. Author has 2 book(s) assigned. Please reassign or delete the books first.")
			}
			return nil
		},
	}
	r := setupRouter(svc)

	w := do(r, http.MethodDelete, "/authors/1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Author has 2 book(s)")

	w = do(r, http.MethodDelete, "/authors/2", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestListAuthorBooks(t *testing.T) {
	svc := &serviceMock{
		booksFn: func(_ context.Context, id int64) ([]bookmodel.BookListResponse, error) {
			return []bookmodel.BookListResponse{{ID: 3, Title: "Dune", AuthorName: "Jane"}}, nil
		},
	}

	w := do(setupRouter(svc), http.MethodGet, "/authors/1/books", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"author_name":"Jane"`)
}

func TestGetStatistics(t *testing.T) {
	svc := &serviceMock{
		statsFn: func(context.Context, int64) (*model.StatisticsResponse, error) {
			return &model.StatisticsResponse{TotalBooks: 0, AveragePrice: "0.00"}, nil
		},
	}

	w := do(setupRouter(svc), http.MethodGet, "/authors/1/statistics", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"average_price":"0.00"`)
	assert.Contains(t, w.Body.String(), `"latest_book":null`)
}

func TestListAuthors_SearchAndOrdering(t *testing.T) {
	var got model.ListAuthorsRequest
	svc := &serviceMock{
		listFn: func(_ context.Context, req model.ListAuthorsRequest) ([]model.AuthorListResponse, error) {
			got = req
			return []model.AuthorListResponse{{ID: 1, Name: "Jane Doe"}}, nil
		},
	}
	r := setupRouter(svc)

	w := do(r, http.MethodGet, "/authors?search=jane&ordering=-email,bio", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Jane Doe"`)
	assert.Equal(t, "jane", got.Search)
	assert.Equal(t, filter.Ordering{{Field: "email", Desc: true}}, got.Ordering)

	w = do(r, http.MethodGet, "/authors", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.ListAuthorsRequest{}, got)
}
