package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blood-request-coordinator/internal/config"
	"blood-request-coordinator/internal/database"
	"blood-request-coordinator/internal/handler"
	"blood-request-coordinator/internal/logging"
	"blood-request-coordinator/internal/metrics"
	"blood-request-coordinator/internal/middleware"
	"blood-request-coordinator/internal/realtime"
	"blood-request-coordinator/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// 1. Load configuration
	cfg := config.LoadConfig()

	// 2. Initialize loggers
	logging.Setup(cfg.Server.LogFile, cfg.Server.Environment, cfg.IsRelease())
	logging.API.Info("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize the store. A missing configuration is not fatal.
	st, err := database.Open(ctx, cfg)
	if err != nil {
		logging.Store.WithError(err).Fatal("Failed to open store")
	}

	// 4. Change feed and hospital name lock, shared through redis when configured
	redisClient, err := database.OpenRedis(ctx, cfg.Redis.URL)
	if err != nil {
		logging.Store.WithError(err).Fatal("Failed to connect to redis")
	}
	feed, names := realtimeStack(ctx, redisClient)

	// 5. Initialize services
	hospitalService := service.NewHospitalService(st, feed, names)
	requestService := service.NewRequestService(st, feed, cfg.Requests.AllowClosedEdits)
	queryService := service.NewQueryService(st, feed)
	shareService := service.NewShareService(queryService, cfg.Server.PublicBaseURL)

	var generator service.Generator
	if gemini := service.NewGeminiClient(cfg.Chat); gemini != nil {
		generator = gemini
	} else {
		logging.API.Warn("GEMINI_API_KEY not set, chat assistant disabled")
	}
	chatService := service.NewChatService(generator, cfg.Chat.Timeout)

	// 6. Start background worker
	workerService := service.NewWorkerService(st, cfg.Stats.Schedule)
	if err := workerService.Start(ctx); err != nil {
		logging.Worker.WithError(err).Fatal("Failed to start stats worker")
	}

	// 7. Setup Gin mode and router
	gin.SetMode(cfg.Server.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logging.API))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg))

	// 8. Register handlers and routes
	r.GET("/health", handler.NewHealthHandler(st).Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	handler.RegisterRoutes(r.Group("/api/v1"), handler.Handlers{
		Hospital: handler.NewHospitalHandler(hospitalService, queryService),
		Request:  handler.NewRequestHandler(requestService, queryService, shareService),
		Chat:     handler.NewChatHandler(chatService),
	})

	// 9. Serve with graceful shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logging.API.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.API.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.API.Info("Shutting down server...")

	// Stop the worker and open subscriptions before draining connections
	cancel()
	if err := feed.Close(); err != nil {
		logging.API.WithError(err).Warn("Failed to close change feed")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.API.WithError(err).Warn("Server shutdown incomplete")
	}
	if st != nil {
		if err := st.Close(shutdownCtx); err != nil {
			logging.Store.WithError(err).Warn("Failed to close store")
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	logging.API.Info("Server exited")
}

// realtimeStack picks redis-backed notifications and name locks when a
// client is available and falls back to in-process ones otherwise.
func realtimeStack(ctx context.Context, client *redis.Client) (realtime.Feed, service.NameLock) {
	if client == nil {
		logging.API.Info("REDIS_URL not set, using in-process change feed")
		return realtime.NewLocalFeed(), service.NewLocalNameLock()
	}

	feed, err := realtime.NewRedisFeed(ctx, client)
	if err != nil {
		logging.API.WithError(err).Warn("Redis change feed unavailable, using in-process feed")
		return realtime.NewLocalFeed(), service.NewRedisNameLock(client)
	}
	return feed, service.NewRedisNameLock(client)
}
