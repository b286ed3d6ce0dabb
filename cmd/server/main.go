package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	logging.Setup(cfg.LogLevel)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	logging.Attach(pgLogHandler)

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	// Cache: one client for the life of the process
	var shopCache cache.Cache = cache.Disabled{}
	var redisCache *cache.Redis
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		rc, err := cache.Connect(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			slog.Error("cache unavailable, serving from database only", "error", err)
		} else {
			redisCache = rc
			shopCache = rc
		}
	} else {
		slog.Warn("REDIS_URL not set, cache disabled")
	}

	// Services
	clock := services.NewClock(cfg.Location())
	txr := database.NewTxRunner(database.DB, cfg.DBMaxOpenConns, cfg.TxMaxWait, cfg.TxTimeout)
	tracker := services.NewStockTracker(clock)
	reconciler := services.NewProductReconciler(tracker)
	shopDirectory := services.NewShopDirectory(database.DB, shopCache, cache.Keys{Prefix: cfg.CacheKeyPrefix}, cfg.RedisExpire, txr, reconciler)
	productService := services.NewProductService(txr, tracker, shopDirectory)
	salesService := services.NewSalesService(database.DB, clock)
	actions := services.NewActions(shopDirectory, productService, salesService, services.ModeRaise)

	// Handlers
	healthHandler := handlers.NewHealthHandler(database.DB, shopCache)
	shopHandler := handlers.NewShopHandler(actions)
	productHandler := handlers.NewProductHandler(actions)
	salesHandler := handlers.NewSalesHandler(actions)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${respHeader:X-Request-ID}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, actions, healthHandler, shopHandler, productHandler, salesHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			slog.Error("cache close error", "error", err)
		}
	}
	if err := database.Close(database.DB); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
