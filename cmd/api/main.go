package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/envelope/envelope-backend/internal/config"
	"github.com/dafibh/envelope/envelope-backend/internal/domain"
	"github.com/dafibh/envelope/envelope-backend/internal/events"
	"github.com/dafibh/envelope/envelope-backend/internal/handler"
	"github.com/dafibh/envelope/envelope-backend/internal/messaging"
	"github.com/dafibh/envelope/envelope-backend/internal/middleware"
	"github.com/dafibh/envelope/envelope-backend/internal/repository/memory"
	"github.com/dafibh/envelope/envelope-backend/internal/repository/postgres"
	"github.com/dafibh/envelope/envelope-backend/internal/repository/storage"
	"github.com/dafibh/envelope/envelope-backend/internal/service"
	"github.com/dafibh/envelope/envelope-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// ENV may come from .env, which is only read by config.Load
	if cfg.IsProduction() {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx := context.Background()

	// Ledger store
	ledgerRepo, closeStore := openLedgerStore(ctx, cfg)
	defer closeStore()

	// Event publishers
	hub := websocket.NewHub()
	publishers := events.MultiPublisher{hub}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := messaging.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to message broker")
		}
		defer func() {
			if err := amqpPublisher.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close message broker connection")
			}
		}()
		publishers = append(publishers, amqpPublisher)
		log.Info().Str("exchange", cfg.AMQPExchange).Msg("Publishing ledger events to message broker")
	}

	// Snapshot export
	var snapshotRepo storage.SnapshotRepository
	if cfg.S3.Enabled() {
		s3Repo, err := storage.NewS3SnapshotRepository(ctx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize snapshot storage")
		}
		snapshotRepo = s3Repo
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Snapshot export enabled")
	}

	// Initialize services
	accountService := service.NewAccountService(ledgerRepo, publishers)
	categoryService := service.NewCategoryService(ledgerRepo, publishers)
	transactionService := service.NewTransactionService(ledgerRepo, publishers)
	calculationService := service.NewCalculationService(ledgerRepo)
	exportService := service.NewExportService(ledgerRepo, snapshotRepo)

	// Initialize handlers
	handlers := handler.Handlers{
		Account:     handler.NewAccountHandler(accountService, calculationService),
		Category:    handler.NewCategoryHandler(categoryService, calculationService),
		Transaction: handler.NewTransactionHandler(transactionService),
		Transfer:    handler.NewTransferHandler(categoryService, accountService),
		Budget:      handler.NewBudgetHandler(categoryService, calculationService),
		Export:      handler.NewExportHandler(exportService),
		WebSocket:   handler.NewWebSocketHandler(hub, cfg.CORSOrigins),
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	e := newServer(cfg, handlers, rateLimiter)

	// Start server in goroutine
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("reference_policy", string(ledgerRepo.Policy())).
			Str("system_available_category_id", ledgerRepo.SystemAvailableCategoryID().String()).
			Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// openLedgerStore returns the postgres store when DATABASE_URL is set and the
// in-memory store otherwise.
func openLedgerStore(ctx context.Context, cfg *config.Config) (domain.LedgerRepository, func()) {
	systemID := cfg.SystemAvailableCategoryID

	if cfg.DatabaseURL == "" {
		log.Info().Msg("No DATABASE_URL set, using in-memory ledger store")
		return memory.NewLedgerStore(systemID, cfg.ReferencePolicy), func() {}
	}

	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Verify database connection
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	repo, err := postgres.NewLedgerRepository(ctx, pool, cfg.ReferencePolicy, systemID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize ledger repository")
	}
	return repo, pool.Close
}

// newServer builds the Echo instance with the shared middleware chain. Rate
// limiting applies to /api/v1 only so health checks are never throttled.
func newServer(cfg *config.Config, handlers handler.Handlers, rl *middleware.RateLimiter) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(
		echomiddleware.RequestID(),
		echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins: cfg.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
			MaxAge:       int((24 * time.Hour).Seconds()),
		}),
		echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
			XSSProtection:         "1; mode=block",
			ContentTypeNosniff:    "nosniff",
			XFrameOptions:         "DENY",
			HSTSMaxAge:            int((365 * 24 * time.Hour).Seconds()),
			ContentSecurityPolicy: "default-src 'self'",
			ReferrerPolicy:        "no-referrer",
		}),
		middleware.RequestLogger(),
		echomiddleware.Recover(),
	)

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	handler.RegisterRoutes(e, handlers, middleware.RateLimit(rl))
	return e
}
