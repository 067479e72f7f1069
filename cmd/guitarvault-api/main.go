package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/bondst/guitarvault/api/swagger"
	"github.com/bondst/guitarvault/internal/acl"
	"github.com/bondst/guitarvault/internal/handler"
	"github.com/bondst/guitarvault/internal/middleware"
	"github.com/bondst/guitarvault/internal/repository"
	"github.com/bondst/guitarvault/internal/service"
	"github.com/bondst/guitarvault/pkg/cache"
	"github.com/bondst/guitarvault/pkg/config"
	"github.com/bondst/guitarvault/pkg/database"
	"github.com/bondst/guitarvault/pkg/logger"
	corsmiddleware "github.com/bondst/guitarvault/pkg/middleware/cors"
	reqidmiddleware "github.com/bondst/guitarvault/pkg/middleware/requestid"
	"github.com/bondst/guitarvault/pkg/objectstore"
)

// @title Guitar Vault API
// @version 1.0.0
// @description Guitar catalog with image storage
// @BasePath /
// @schemes http https

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

	if err := cfg.ObjectStorage.Validate(); err != nil {
		logr.Fatal("invalid object storage configuration", zap.Error(err))
	}

	ctx := context.Background()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	backend, closeBackend, err := newObjectBackend(ctx, cfg.ObjectStorage)
	if err != nil {
		logr.Fatal("failed to init object storage", zap.Error(err))
	}
	defer closeBackend()

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Catalog.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("catalog cache disabled: redis unavailable", zap.Error(err))
		} else {
			defer client.Close()
			cacheRepo = repository.NewCacheRepository(client, "guitarvault")
		}
	}
	catalogCache := service.NewCatalogCache(cacheRepo, metricsSvc, cfg.Catalog.CacheTTL, logr, cacheRepo != nil)

	guitarRepo := repository.NewGuitarRepository(db)
	objectSvc := service.NewObjectService(backend, acl.NewEvaluator(acl.NewRegistry()), cfg.ObjectStorage, metricsSvc, logr)
	guitarSvc := service.NewGuitarService(guitarRepo, service.NewGuitarValidator(validator.New()), objectSvc, catalogCache, metricsSvc, logr)
	exportSvc := service.NewExportService(guitarSvc, logr)

	guitarHandler := handler.NewGuitarHandler(guitarSvc, exportSvc)
	objectHandler := handler.NewObjectHandler(objectSvc, cfg.ObjectStorage.DownloadCacheTTL, logr)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, guitarRepo, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins, cfg.Identity.Header))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.Identity(cfg.Identity.Header))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(apiPrefix(cfg.APIPrefix))
	guitars := api.Group("/guitars")
	guitars.GET("", guitarHandler.List)
	guitars.GET("/export", guitarHandler.Export)
	guitars.GET("/:id", guitarHandler.Get)
	guitars.POST("", guitarHandler.Create)
	guitars.PUT("/:id", guitarHandler.Update)
	guitars.DELETE("/:id", guitarHandler.Delete)
	api.POST("/objects/upload", objectHandler.Upload)

	r.GET("/objects/*objectPath", objectHandler.Download)
	r.GET("/public-objects/*filePath", objectHandler.PublicDownload)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func newObjectBackend(ctx context.Context, cfg config.ObjectStorageConfig) (objectstore.Backend, func(), error) {
	switch cfg.Provider {
	case config.ProviderS3:
		backend, err := objectstore.NewS3Backend(ctx, objectstore.S3Config{Region: cfg.S3Region, Endpoint: cfg.S3Endpoint})
		if err != nil {
			return nil, nil, err
		}
		return backend, func() {}, nil
	default:
		backend, err := objectstore.NewGCSBackend(ctx, cfg.GCSCredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return backend, func() { _ = backend.Close() }, nil
	}
}

func apiPrefix(prefix string) string {
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		return "/api"
	}
	return prefix
}
