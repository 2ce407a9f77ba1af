package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-cover-api/internal/handler"
	"github.com/noah-isme/sma-cover-api/internal/middleware"
	"github.com/noah-isme/sma-cover-api/internal/repository"
	"github.com/noah-isme/sma-cover-api/internal/service"
	"github.com/noah-isme/sma-cover-api/pkg/cache"
	"github.com/noah-isme/sma-cover-api/pkg/config"
	"github.com/noah-isme/sma-cover-api/pkg/database"
	"github.com/noah-isme/sma-cover-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-cover-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-cover-api/pkg/middleware/requestid"
	"github.com/noah-isme/sma-cover-api/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, run caching disabled", "error", err)
		redisClient = nil
	}

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	validate := validator.New()

	timetableRepo := repository.NewTimetableRepository(db)
	runRepo := repository.NewCoverageRunRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsService := service.NewMetricsService()
	timetableService := service.NewTimetableService(timetableRepo, validate, logr)
	coverageService := service.NewCoverageService(timetableRepo, runRepo, cacheRepo, metricsService, validate, logr, cfg.Coverage)
	exportService := service.NewExportService(coverageService, exportStore, signer, logr, service.ExportServiceConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
	})
	tokenService := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Expiration)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	exportService.Start(workerCtx)
	defer exportService.Stop()

	timetableHandler := handler.NewTimetableHandler(timetableService)
	coverageHandler := handler.NewCoverageHandler(coverageService, exportService)
	exportHandler := handler.NewExportHandler(exportService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(metricsService.GinMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	authRequired := middleware.Auth(tokenService, cfg.Auth.Enabled)

	api := r.Group(cfg.APIPrefix)
	{
		timetables := api.Group("/timetables")
		{
			timetables.PUT("/:kind", authRequired, timetableHandler.Upload)
			timetables.GET("/:kind", timetableHandler.Latest)
		}

		coverage := api.Group("/coverage")
		{
			coverage.POST("/generate", authRequired, coverageHandler.Generate)
			coverage.GET("/runs", coverageHandler.ListRuns)
			coverage.GET("/runs/:id", coverageHandler.GetRun)
			coverage.GET("/runs/:id/export", coverageHandler.Export)
			coverage.POST("/runs/:id/export", authRequired, exportHandler.Enqueue)
		}

		api.GET("/exports/:token", exportHandler.Download)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}

	logr.Sugar().Infow("server stopped", "env", cfg.Env)
}
