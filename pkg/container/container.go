package container

import (
	"context"
	"fmt"
	"time"

	"catalog-api/internal/config"
	infraCache "catalog-api/internal/infrastructure/cache"
	"catalog-api/internal/infrastructure/database"
	"catalog-api/pkg/cache"
	pkgdb "catalog-api/pkg/database"
	"catalog-api/pkg/jwt"
	"catalog-api/pkg/logger"

	authorHandler "catalog-api/internal/domains/author/handler"
	authorRepo "catalog-api/internal/domains/author/repository"
	authorService "catalog-api/internal/domains/author/service"
	bookHandler "catalog-api/internal/domains/book/handler"
	bookRepo "catalog-api/internal/domains/book/repository"
	bookService "catalog-api/internal/domains/book/service"
	categoryHandler "catalog-api/internal/domains/category/handler"
	categoryRepo "catalog-api/internal/domains/category/repository"
	categoryService "catalog-api/internal/domains/category/service"

	"github.com/rs/zerolog/log"
)

// Container holds every dependency of the API. Build order:
// config -> infrastructure -> repositories -> services -> handlers.
type Container struct {
	// Infrastructure
	Config       *config.Config
	DB           *database.PostgresDB
	Redis        *infraCache.RedisClient
	Cache        cache.Cache
	CatalogCache *cache.Versioned // nil when caching is off or Redis is down
	RateLimiter  cache.RateLimiter
	JWTManager   *jwt.Manager // nil when AUTH_JWT_SECRET is unset
	Tx           pkgdb.Transactor

	// Repositories
	AuthorRepo   authorRepo.RepositoryInterface
	BookRepo     bookRepo.RepositoryInterface
	CategoryRepo categoryRepo.RepositoryInterface

	// Services
	AuthorService   authorService.ServiceInterface
	BookService     bookService.ServiceInterface
	CategoryService categoryService.ServiceInterface

	// Handlers
	AuthorHandler   *authorHandler.AuthorHandler
	BookHandler     *bookHandler.Handler
	CategoryHandler *categoryHandler.CategoryHandler
}

// NewContainer builds the whole dependency graph.
func NewContainer() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)

	c := &Container{Config: cfg}

	if err := c.initDatabase(); err != nil {
		c.Cleanup()
		return nil, err
	}
	if err := c.initRedis(); err != nil {
		c.Cleanup()
		return nil, err
	}
	if cfg.Auth.Enabled() {
		c.JWTManager = jwt.NewManager(cfg.Auth.JWTSecret)
	}

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	logger.Info("container initialized", map[string]interface{}{
		"env":        cfg.App.Environment,
		"cache":      c.CatalogCache != nil,
		"auth":       c.JWTManager != nil,
		"rate_limit": c.RateLimiter != nil,
	})
	return c, nil
}

func (c *Container) initDatabase() error {
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db
	c.Tx = pkgdb.NewTransactor(db.Pool)

	if c.Config.Database.AutoMigrate {
		if err := migrate(ctx, dbConfig.DSN()); err != nil {
			return err
		}
	}
	return nil
}

func migrate(ctx context.Context, dsn string) error {
	m, sqlDB, err := database.OpenMigrator(dsn)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	applied, err := m.Up(ctx)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	log.Info().Strs("versions", applied).Msg("schema up to date")
	return nil
}

// initRedis never fails on an unreachable Redis: the catalog keeps serving
// from PostgreSQL without cache and rate limiting.
func (c *Container) initRedis() error {
	cfg := c.Config
	if !cfg.Cache.Enabled && !cfg.RateLimit.Enabled() {
		return nil
	}

	rc, err := infraCache.NewRedisClient(infraCache.RedisConfig{
		URL:      cfg.Redis.URL,
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	c.Redis = rc

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, running without cache and rate limiting")
		return nil
	}

	c.Cache = infraCache.NewRedisCache(rc.Client)
	if cfg.Cache.Enabled {
		c.CatalogCache = cache.NewVersioned(c.Cache, cfg.Cache.Namespace, cfg.Cache.TTL)
	}
	if cfg.RateLimit.Enabled() {
		c.RateLimiter = infraCache.NewTokenBucket(rc.Client, cfg.RateLimit.RatePerSecond, cfg.RateLimit.Burst)
	}
	return nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.AuthorRepo = authorRepo.NewPostgresRepository(pool)
	c.BookRepo = bookRepo.NewPostgresRepository(pool)
	c.CategoryRepo = categoryRepo.NewPostgresRepository(pool)
}

// All three services share one cache namespace: any catalog write can change
// what the other domains render (book counts, author names, statistics).
func (c *Container) initServices() {
	c.AuthorService = authorService.NewAuthorService(c.AuthorRepo, c.Tx, c.CatalogCache)
	c.BookService = bookService.NewService(c.BookRepo, c.Tx, c.CatalogCache)
	c.CategoryService = categoryService.NewCategoryService(c.CategoryRepo, c.Tx, c.CatalogCache)
}

func (c *Container) initHandlers() {
	c.AuthorHandler = authorHandler.NewAuthorHandler(c.AuthorService)
	c.BookHandler = bookHandler.NewHandler(c.BookService)
	c.CategoryHandler = categoryHandler.NewCategoryHandler(c.CategoryService)
}

// Cleanup releases the pool and the Redis client.
func (c *Container) Cleanup() {
	if c.DB != nil {
		_ = c.DB.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logger.Error("failed to close Redis", err)
		}
	}
}
