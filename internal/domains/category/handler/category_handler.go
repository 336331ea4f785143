package handler

import (
	"net/http"
	"strconv"

	"catalog-api/internal/domains/category/model"
	"catalog-api/internal/domains/category/service"
	"catalog-api/internal/shared/apperror"
	"catalog-api/internal/shared/filter"
	"catalog-api/internal/shared/request"
	"catalog-api/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// CategoryHandler - HTTP handler for /api/v1/categories
type CategoryHandler struct {
	service service.ServiceInterface
}

func NewCategoryHandler(svc service.ServiceInterface) *CategoryHandler {
	return &CategoryHandler{service: svc}
}

// ListCategories - GET /api/v1/categories?search=&ordering=
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	req := model.ListCategoriesRequest{
		Search:   c.Query("search"),
		Ordering: filter.ParseOrdering(c.Query("ordering"), model.CategoryOrderingFields...),
	}

	categories, err := h.service.ListCategories(c.Request.Context(), req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, categories)
}

// GetCategory - GET /api/v1/categories/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	category, err := h.service.GetCategory(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, category)
}

// CreateCategory - POST /api/v1/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req model.CreateCategoryRequest
	if !request.BindJSON(c, &req) {
		return
	}

	category, err := h.service.CreateCategory(c.Request.Context(), req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusCreated, "Category created successfully", category)
}

// UpdateCategory - PUT/PATCH /api/v1/categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateCategoryRequest
	if !request.BindJSON(c, &req) {
		return
	}

	category, err := h.service.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Category updated successfully", category)
}

// DeleteCategory - DELETE /api/v1/categories/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(c.Request.Context(), id); err != nil {
		response.HandleError(c, err)
		return
	}
	response.NoContent(c)
}

// ListCategoryBooks - GET /api/v1/categories/:id/books
func (h *CategoryHandler) ListCategoryBooks(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	books, err := h.service.ListCategoryBooks(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, books)
}

// GetStatistics - GET /api/v1/categories/:id/statistics
func (h *CategoryHandler) GetStatistics(c *gin.Context) {
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

// PopularCategories - GET /api/v1/categories/popular?limit=10
func (h *CategoryHandler) PopularCategories(c *gin.Context) {
	limit := model.DefaultPopularLimit
	if raw, present := c.GetQuery("limit"); present {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.HandleError(c, apperror.Invalid("limit", apperror.CodeInvalid, "A valid integer is required."))
			return
		}
		limit = n
	}

	categories, err := h.service.PopularCategories(c.Request.Context(), limit)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, categories)
}
