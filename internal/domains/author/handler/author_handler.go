package handler

import (
	"net/http"

	"catalog-api/internal/domains/author/model"
	"catalog-api/internal/domains/author/service"
	"catalog-api/internal/shared/filter"
	"catalog-api/internal/shared/request"
	"catalog-api/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// AuthorHandler - HTTP handler for /api/v1/authors
type AuthorHandler struct {
	service service.ServiceInterface
}

func NewAuthorHandler(service service.ServiceInterface) *AuthorHandler {
	return &AuthorHandler{service: service}
}

// ListAuthors - GET /api/v1/authors?search=&ordering=
func (h *AuthorHandler) ListAuthors(c *gin.Context) {
	req := model.ListAuthorsRequest{
		Search:   c.Query("search"),
		Ordering: filter.ParseOrdering(c.Query("ordering"), model.AuthorOrderingFields...),
	}

	authors, err := h.service.ListAuthors(c.Request.Context(), req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, authors)
}

// GetAuthor - GET /api/v1/authors/:id
func (h *AuthorHandler) GetAuthor(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	author, err := h.service.GetAuthor(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, author)
}

// CreateAuthor - POST /api/v1/authors
func (h *AuthorHandler) CreateAuthor(c *gin.Context) {
	var req model.CreateAuthorRequest
	if !request.BindJSON(c, &req) {
		return
	}

	author, err := h.service.CreateAuthor(c.Request.Context(), req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusCreated, "Author created successfully", author)
}

// UpdateAuthor - PUT/PATCH /api/v1/authors/:id
func (h *AuthorHandler) UpdateAuthor(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateAuthorRequest
	if !request.BindJSON(c, &req) {
		return
	}

	author, err := h.service.UpdateAuthor(c.Request.Context(), id, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Author updated successfully", author)
}

// DeleteAuthor - DELETE /api/v1/authors/:id
func (h *AuthorHandler) DeleteAuthor(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteAuthor(c.Request.Context(), id); err != nil {
		response.HandleError(c, err)
		return
	}
	response.NoContent(c)
}

// ListAuthorBooks - GET /api/v1/authors/:id/books
func (h *AuthorHandler) ListAuthorBooks(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	books, err := h.service.ListAuthorBooks(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, books)
}

// GetStatistics - GET /api/v1/authors/:id/statistics
func (h *AuthorHandler) GetStatistics(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	stats, err := h.service.GetStatistics(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}
