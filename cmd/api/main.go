package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"prdapi/docs"
	"prdapi/internal/config"
	"prdapi/internal/database"
	"prdapi/internal/database/migration"
	handlers "prdapi/internal/http/handler"
	"prdapi/internal/http/middleware"
	"prdapi/internal/logging"
	"prdapi/internal/metrics"
	"prdapi/internal/otel"
	"prdapi/internal/repository/postgres"
	"prdapi/internal/service"
	"prdapi/internal/storage"
)

// multipartOverhead leaves room for the form fields and part headers around the file.
const multipartOverhead = 1 << 20

// @title PRD Upload API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", "error_message", err.Error())
	}

	logger, loc := logging.Setup(cfg.Log.Level, cfg.Log.Timezone)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		logger.Fatal("failed to initialize tracing", "error_message", err.Error())
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", "error_message", err.Error())
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger, database.Host(cfg.Database)); err != nil {
		logger.Fatal("failed to migrate database", "error_message", err.Error())
	}

	objStore, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("failed to initialize object storage", "error_message", err.Error())
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	uploadMetrics, err := metrics.NewUploadMetrics(reg)
	if err != nil {
		logger.Fatal("failed to register upload metrics", "error_message", err.Error())
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		logger.Fatal("failed to register http metrics", "error_message", err.Error())
	}

	prdRepo := postgres.NewPRDPostgres(db)
	uploadSvc := service.NewUploadService(objStore, prdRepo, service.Config{
		StorageRoot:      cfg.Supabase.URL,
		Bucket:           cfg.Storage.Bucket,
		MaxUploadSize:    cfg.Upload.MaxSizeBytes(),
		MaxExtractedSize: cfg.Upload.MaxExtractedSizeBytes(),
	}, service.WithLogger(logger), service.WithMetrics(uploadMetrics))

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// Oversize files must reach the pipeline's size check rather than die in the transport.
		BodyLimit: int(2*cfg.Upload.MaxSizeBytes()) + multipartOverhead,
	})

	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.LoggerWithWriter(os.Stdout, loc))
	app.Use(httpMetrics.Handler())

	handlers.RegisterRoutes(app, db, uploadSvc, reg, cfg.Upload.MaxSizeBytes())

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("server_shutdown_failed", "error_message", err.Error())
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("tracing_shutdown_failed", "error_message", err.Error())
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("server_starting", "addr", addr, "storage_driver", cfg.Storage.Driver, "bucket", cfg.Storage.Bucket)

	if err := app.Listen(addr); err != nil {
		logger.Fatal("failed to start server", "error_message", err.Error())
	}
}
