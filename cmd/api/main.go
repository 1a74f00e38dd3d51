package main

import (
	"context"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"casedocs/internal/config"
	"casedocs/internal/database"
	"casedocs/internal/database/migration"
	"casedocs/internal/filetype"
	handlers "casedocs/internal/http/handler"
	"casedocs/internal/http/middleware"
	"casedocs/internal/ocr"
	"casedocs/internal/otel"
	"casedocs/internal/repository/postgres"
	"casedocs/internal/service"
	"casedocs/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	ctx := context.Background()

	// Tracing is optional; a missing collector only logs a warning.
	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.WithError(err).Warn("tracing disabled")
	} else {
		defer shutdownTracing(context.Background())
	}

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	// Select the blob store backend: local filesystem by default, MinIO
	// for S3-compatible deployments.
	var store storage.Store
	switch cfg.Storage.Backend {
	case "minio":
		store, err = storage.NewMinIO(cfg.Storage.MinIO)
	default:
		store, err = storage.NewLocal(cfg.Storage.LocalPath)
	}
	if err != nil {
		log.WithError(err).Fatal("failed to initialize blob store")
	}

	registry := prometheus.NewRegistry()

	ocrMetrics, err := ocr.NewMetrics(registry)
	if err != nil {
		log.WithError(err).Fatal("failed to register ocr metrics")
	}
	ocrClient := ocr.NewClient(cfg.Ollama, log, ocr.WithMetrics(ocrMetrics))

	// Repositories and services
	docRepo := postgres.NewDocumentPostgres(db)
	caseRepo := postgres.NewCasePostgres(db)
	validator := filetype.NewValidator(cfg.Storage.MaxFileSize)
	docSvc := service.NewDocumentService(validator, store, docRepo, caseRepo, ocrClient, log)
	caseSvc := service.NewCaseService(caseRepo)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1024*1024,
	})

	// Global middleware: request id, JSON request logs, traces, metrics.
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promMw, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		log.WithError(err).Fatal("failed to register http metrics")
	}
	app.Use(promMw.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, docSvc, caseSvc, cfg.Auth.JWTSecret)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}
