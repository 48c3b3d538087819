package main

import (
	"context"
	"errors"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"assetvaluer/internal/config"
	"assetvaluer/internal/database"
	"assetvaluer/internal/database/migration"
	handlers "assetvaluer/internal/http/handler"
	"assetvaluer/internal/http/middleware"
	"assetvaluer/internal/locale"
	"assetvaluer/internal/logger"
	"assetvaluer/internal/metrics"
	"assetvaluer/internal/money"
	tracing "assetvaluer/internal/otel"
	"assetvaluer/internal/repository/postgres"
	"assetvaluer/internal/sanitize"
	"assetvaluer/internal/service"
	"assetvaluer/internal/storage"
	"assetvaluer/internal/templates"
)

const shutdownTimeout = 10 * time.Second

// @title AI Asset Valuer API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := cfg.Location()

	log, err := logger.New(cfg.LogLevel, loc)
	if err != nil {
		stdlog.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	fatal := func(msg string, err error) {
		log.Error(msg, zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, log)
	if err != nil {
		fatal("failed to initialize tracing", err)
	}

	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		fatal("failed to connect to database", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		fatal("failed to migrate database", err)
	}

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		fatal("failed to initialize object storage", err)
	}

	// Settings, sanitizer and formatter are immutable after start-up.
	settings := locale.FromConfig(cfg.Asset)
	san := sanitize.New(settings)
	formatter := money.New(san, cfg.Asset.Formatter)
	log.Info("formatter selected",
		zap.String("strategy", formatter.Strategy()),
		zap.Strings("languages", settings.Languages()),
		zap.String("default_language", settings.DefaultLanguage()),
		zap.String("default_currency", settings.DefaultCurrency()),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	assetMetrics, err := metrics.NewAssetMetrics(reg)
	if err != nil {
		fatal("failed to register asset metrics", err)
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		fatal("failed to register http metrics", err)
	}

	opts := []service.Option{
		service.WithMetaPrefix(cfg.Asset.MetaPrefix),
		service.WithLogger(log),
		service.WithMetrics(assetMetrics),
		service.WithDateFormat(cfg.Asset.DateFormat),
		service.WithLocation(loc),
		service.WithThumbnailTTL(time.Duration(cfg.Asset.ThumbnailURLTTLSec) * time.Second),
	}
	assetRepo := postgres.NewAssetPostgres(db)
	svc := handlers.Services{
		Assets: service.NewAssetService(objStore, assetRepo, san, opts...),
		Table:  service.NewTableService(assetRepo, objStore, san, formatter, opts...),
		Widget: service.NewWidgetService(san, templates.Embedded(), opts...),
	}

	if cfg.Auth.JWTSecret == "" {
		log.Warn("JWT_SECRET is empty, asset creation is disabled")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    16 * 1024 * 1024,
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, svc, middleware.RequireScope(cfg.Auth.JWTSecret, cfg.Auth.WriteScope))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", handlers.Swagger(cfg.AppHost))

	addr := ":" + cfg.Port
	serveErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", addr))
		serveErr <- app.Listen(addr)
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			fatal("failed to start server", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("http shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown failed", zap.Error(err))
	}
}
