package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/boxboxd/boxboxd/internal/api"
	"github.com/boxboxd/boxboxd/internal/cache"
	"github.com/boxboxd/boxboxd/internal/chat"
	"github.com/boxboxd/boxboxd/internal/db"
	"github.com/boxboxd/boxboxd/internal/feed"
	"github.com/boxboxd/boxboxd/internal/leaderboard"
	"github.com/boxboxd/boxboxd/pkg/config"
	"github.com/boxboxd/boxboxd/pkg/logging"
	"github.com/boxboxd/boxboxd/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting BoxBoxd API Server")

	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	redisCache, err := cache.New(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisCache.Close()

	services := buildServices(cfg, database, redisCache)

	if cfg.Logging.Level == "DEBUG" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	api.NewRouter(services).SetupRoutes(engine)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// buildServices wires repositories into the domain services. Redis is
// optional: without it display names and leaderboards go uncached and the
// chat rate limit falls back to querying the last stored message.
func buildServices(cfg *config.Config, database *db.DB, redisCache *cache.Cache) api.Services {
	repo := db.NewRepository(database.DB)

	names := feed.NewNameResolver(
		feed.NewProfileNames(db.NewProfileRepository(repo)),
		feed.WithLookupTimeout(cfg.Feed.LookupTimeout),
		feed.WithLookupConcurrency(cfg.Feed.LookupConcurrency),
		feed.WithNameCache(redisCache, cfg.Feed.DisplayNameTTL),
	)
	feeds := feed.NewService(
		feed.NewReviewSource(db.NewReviewRepository(repo)),
		db.NewBlockRepository(repo),
		names,
		cfg.Feed.PoolSize,
	)

	boards := leaderboard.NewService(db.NewGridRepository(repo), redisCache, cfg.Feed.LeaderboardTTL)

	chatRepo := db.NewChatRepository(repo)
	var limiter chat.Limiter = chat.NewQueryLimiter(chatRepo, cfg.Chat.RateWindow)
	checks := map[string]api.HealthChecker{"database": database}
	if redisCache != nil {
		limiter = chat.NewRedisLimiter(redisCache, cfg.Chat.RateWindow)
		checks["redis"] = redisCache
	}
	chats := chat.NewService(chatRepo, limiter, cfg.Chat.MaxLength, cfg.Chat.HistoryLimit)

	return api.Services{
		Feed:        feeds,
		Leaderboard: boards,
		Chat:        chats,
		Checks:      checks,
	}
}
