package handler

import (
	"context"
	"net/http"

	"catalog-api/internal/domains/book/model"
	"catalog-api/internal/domains/book/service"
	"catalog-api/internal/shared/filter"
	"catalog-api/internal/shared/request"
	"catalog-api/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// Handler - HTTP handler for /api/v1/books
type Handler struct {
	service service.ServiceInterface
}

// NewHandler - Constructor with DI
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// ListBooks - GET /api/v1/books?author=&categories=&search=&ordering=
func (h *Handler) ListBooks(c *gin.Context) {
	authorID, err := request.QueryID(c, "author")
	if err != nil {
		response.HandleError(c, err)
		return
	}
	categoryIDs, err := request.QueryIDs(c, "categories")
	if err != nil {
		response.HandleError(c, err)
		return
	}

	req := model.ListBooksRequest{
		AuthorID:    authorID,
		CategoryIDs: categoryIDs,
		Search:      c.Query("search"),
		Ordering:    filter.ParseOrdering(c.Query("ordering"), model.BookOrderingFields...),
	}

	books, err := h.service.ListBooks(c.Request.Context(), req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, books)
}

// GetBook - GET /api/v1/books/:id
func (h *Handler) GetBook(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	book, err := h.service.GetBook(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, book)
}

// CreateBook - POST /api/v1/books
func (h *Handler) CreateBook(c *gin.Context) {
	var req model.CreateBookRequest
	if !request.BindJSON(c, &req) {
		return
	}

	book, err := h.service.CreateBook(c.Request.Context(), req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusCreated, "Book created successfully", book)
}

// UpdateBook - PUT/PATCH /api/v1/books/:id
func (h *Handler) UpdateBook(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateBookRequest
	if !request.BindJSON(c, &req) {
		return
	}

	book, err := h.service.UpdateBook(c.Request.Context(), id, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Book updated successfully", book)
}

// DeleteBook - DELETE /api/v1/books/:id
func (h *Handler) DeleteBook(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteBook(c.Request.Context(), id); err != nil {
		response.HandleError(c, err)
		return
	}
	response.NoContent(c)
}

// AddCategory - POST /api/v1/books/:id/add_category
func (h *Handler) AddCategory(c *gin.Context) {
	h.categoryAction(c, h.service.AddCategory, "Category added to book successfully")
}

// RemoveCategory - POST /api/v1/books/:id/remove_category
func (h *Handler) RemoveCategory(c *gin.Context) {
	h.categoryAction(c, h.service.RemoveCategory, "Category removed from book successfully")
}

func (h *Handler) categoryAction(
	c *gin.Context,
	action func(ctx context.Context, bookID, categoryID int64) (*model.BookDetailResponse, error),
	message string,
) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	var req model.CategoryActionRequest
	if !request.BindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(c, err)
		return
	}

	book, err := action(c.Request.Context(), id, req.CategoryID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, message, book)
}
