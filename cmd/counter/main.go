// Command counter serves the Redis visit counter on its own port.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-api/internal/config"
	"catalog-api/internal/domains/counter/handler"
	"catalog-api/internal/domains/counter/service"
	"catalog-api/internal/infrastructure/cache"
	"catalog-api/internal/shared/middleware"
	"catalog-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	rc, err := cache.NewRedisClient(cache.RedisConfig{
		URL:      cfg.Redis.URL,
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid Redis configuration")
	}
	defer rc.Close()

	// The counter starts even when Redis is down; Index reports "unavailable".
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rc.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("Redis not reachable yet")
	}
	cancel()

	svc := service.NewCounterService(cache.NewRedisCache(rc.Client), cfg.Counter.Key)
	h := handler.NewCounterHandler(svc)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery())
	h.Register(router)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Counter.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Counter.Port).Str("key", cfg.Counter.Key).Msg("counter starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start counter")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("counter forced to shutdown")
	}
}
