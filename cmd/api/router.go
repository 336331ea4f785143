package main

import (
	"context"
	"net/http"
	"time"

	"catalog-api/internal/shared/middleware"
	"catalog-api/pkg/container"

	"github.com/gin-gonic/gin"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(c.Config.App.AllowedOrigins),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		write := writeMiddleware(c)
		setupAuthorRoutes(v1, c, write)
		setupBookRoutes(v1, c, write)
		setupCategoryRoutes(v1, c, write)
	}

	return router
}

// writeMiddleware guards mutating routes. Both parts are optional: rate
// limiting needs Redis and auth needs AUTH_JWT_SECRET.
func writeMiddleware(c *container.Container) []gin.HandlerFunc {
	var chain []gin.HandlerFunc
	if c.RateLimiter != nil {
		chain = append(chain, middleware.RateLimit(c.RateLimiter))
	}
	if c.JWTManager != nil {
		chain = append(chain, middleware.Auth(c.JWTManager))
	}
	return chain
}

func with(chain []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(chain)+1)
	out = append(out, chain...)
	return append(out, h)
}

// ========================================
// AUTHOR ROUTES
// ========================================
func setupAuthorRoutes(v1 *gin.RouterGroup, c *container.Container, write []gin.HandlerFunc) {
	h := c.AuthorHandler
	author := v1.Group("/authors")
	{
		author.GET("", h.ListAuthors)
		author.POST("", with(write, h.CreateAuthor)...)
		author.GET("/:id", h.GetAuthor)
		author.PUT("/:id", with(write, h.UpdateAuthor)...)
		author.PATCH("/:id", with(write, h.UpdateAuthor)...)
		author.DELETE("/:id", with(write, h.DeleteAuthor)...)
		author.GET("/:id/books", h.ListAuthorBooks)
		author.GET("/:id/statistics", h.GetStatistics)
	}
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(v1 *gin.RouterGroup, c *container.Container, write []gin.HandlerFunc) {
	h := c.BookHandler
	book := v1.Group("/books")
	{
		book.GET("", h.ListBooks)
		book.POST("", with(write, h.CreateBook)...)
		book.GET("/:id", h.GetBook)
		book.PUT("/:id", with(write, h.UpdateBook)...)
		book.PATCH("/:id", with(write, h.UpdateBook)...)
		book.DELETE("/:id", with(write, h.DeleteBook)...)
		book.POST("/:id/add_category", with(write, h.AddCategory)...)
		book.POST("/:id/remove_category", with(write, h.RemoveCategory)...)
	}
}

// ========================================
// CATEGORY ROUTES
// ========================================
func setupCategoryRoutes(v1 *gin.RouterGroup, c *container.Container, write []gin.HandlerFunc) {
	h := c.CategoryHandler
	category := v1.Group("/categories")
	{
		category.GET("", h.ListCategories)
		category.POST("", with(write, h.CreateCategory)...)
		category.GET("/popular", h.PopularCategories)
		category.GET("/:id", h.GetCategory)
		category.PUT("/:id", with(write, h.UpdateCategory)...)
		category.PATCH("/:id", with(write, h.UpdateCategory)...)
		category.DELETE("/:id", with(write, h.DeleteCategory)...)
		category.GET("/:id/books", h.ListCategoryBooks)
		category.GET("/:id/statistics", h.GetStatistics)
	}
}

// healthCheckHandler reports 503 only when PostgreSQL is down; Redis is
// optional and only shows up in the payload.
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		dbStatus := "ok"
		if appCtx.DB == nil {
			dbStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.Ping(ctx); err != nil {
				dbStatus = "error: " + err.Error()
			} else if stats, err := appCtx.DB.Stats(); err == nil {
				health["pool"] = stats
			}
		}

		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = "error: " + err.Error()
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			health["status"] = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
