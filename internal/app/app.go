package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"video_ingest/database"
	"video_ingest/internal/config"
	"video_ingest/internal/handlers"
	"video_ingest/internal/logger"
	"video_ingest/internal/middleware"
	"video_ingest/internal/reconcile"
	"video_ingest/internal/repositories"
	"video_ingest/internal/routes"
	"video_ingest/internal/services"
	"video_ingest/internal/storage"
	"video_ingest/internal/validator"
	"video_ingest/internal/workers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

const shutdownTimeout = 30 * time.Second

func Run() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Connecting to database...")
	gormDB, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}
	logger.Info("Database connected")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, err := NewObjectStore(cfg, registry)
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type, "endpoint", cfg.Storage.Endpoint)

	// Без бакетов сервер не запускаем
	if err := EnsureBuckets(context.Background(), store, cfg); err != nil {
		logger.Fatal("Failed to prepare buckets", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB, store, registry)

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// интервал уже проверен в config.Load
	if interval, _ := cfg.ReconcileInterval(); interval > 0 {
		auditor := reconcile.NewAuditor(gormDB, repositories.NewVideoRepository(), store,
			cfg.Storage.VideoBucket, cfg.Storage.CoverBucket)
		workers.NewReconcileWorker(auditor, interval).Start(ctx)
		logger.Info("Reconcile worker started", "interval", interval)
	}

	go func() {
		logger.Info("Server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Server exited")
}

// NewObjectStore создает хранилище из конфига и оборачивает его метриками Prometheus.
// reg == nil отключает метрики.
func NewObjectStore(cfg *config.Config, reg prometheus.Registerer) (storage.ObjectStore, error) {
	backend, err := storage.NewStorage(storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		Endpoint:  cfg.Storage.Endpoint,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return backend, nil
	}

	observer, err := storage.NewPrometheusObserver("", reg)
	if err != nil {
		return nil, err
	}
	return storage.NewInstrumentedStore(backend, observer), nil
}

// EnsureBuckets создает бакеты для обложек и видео, если их нет
func EnsureBuckets(ctx context.Context, store storage.ObjectStore, cfg *config.Config) error {
	for _, bucket := range []string{cfg.Storage.VideoBucket, cfg.Storage.CoverBucket} {
		if err := store.EnsureBucket(ctx, bucket); err != nil {
			return err
		}
		logger.Info("Bucket ready", "bucket", bucket)
	}
	return nil
}

// SetupRouter собирает сервисы, хэндлеры и middleware.
// Если registry == nil, /metrics не регистрируется.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB, store storage.ObjectStore, registry *prometheus.Registry) *gin.Engine {
	// 1. Инициализируем сервисы
	serviceContainer := initializeServices(cfg, store)
	// 2. Инициализируем хэндлеры
	appHandlers := initializeHandlers(cfg, serviceContainer)
	// 3. Роутер и middleware
	ginRouter := initializeGinRouter(cfg, gormDB)

	var metricsHandler http.Handler
	if registry != nil {
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}
	routes.RegisterRoutes(ginRouter, appHandlers, metricsHandler)

	return ginRouter
}

func initializeServices(cfg *config.Config, store storage.ObjectStore) *services.ServiceContainer {
	videoRepo := repositories.NewVideoRepository()

	buckets := services.Buckets{
		Video: cfg.Storage.VideoBucket,
		Cover: cfg.Storage.CoverBucket,
	}

	return &services.ServiceContainer{
		UploadService: services.NewUploadService(videoRepo, store, services.NewNamer(), buckets),
		VideoService:  services.NewVideoService(videoRepo),
	}
}

func initializeHandlers(cfg *config.Config, services *services.ServiceContainer) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New())

	return &handlers.AppHandlers{
		HealthHandler: handlers.NewHealthHandler(),
		UploadHandler: handlers.NewUploadHandler(baseHandler, services.UploadService, cfg.Upload.MaxMemory),
		VideoHandler:  handlers.NewVideoHandler(baseHandler, services.VideoService),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(middleware.DBMiddleware(db))
	return router
}
