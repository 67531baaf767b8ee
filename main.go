package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrops-br/shopverse-api/internal/app/service"
	"github.com/mrops-br/shopverse-api/internal/app/session"
	"github.com/mrops-br/shopverse-api/internal/domain"
	"github.com/mrops-br/shopverse-api/internal/infrastructure/config"
	"github.com/mrops-br/shopverse-api/internal/infrastructure/http"
	"github.com/mrops-br/shopverse-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/shopverse-api/internal/infrastructure/kv"
	"github.com/mrops-br/shopverse-api/internal/infrastructure/messaging/kafka"
	"github.com/mrops-br/shopverse-api/internal/infrastructure/repository/memory"
	"github.com/mrops-br/shopverse-api/internal/infrastructure/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	shipping, err := cfg.Shop.ShippingPolicy()
	if err != nil {
		log.Fatalf("Invalid shipping policy: %v", err)
	}

	// Initialize OpenTelemetry
	var telem *telemetry.Telemetry
	if cfg.OTLP.Enabled {
		telem, err = telemetry.NewTelemetry(&cfg.OTLP, level)
	} else {
		telem, err = telemetry.NewNoOpTelemetry(&cfg.OTLP, level)
	}
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ensure telemetry is shutdown on exit
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := telem.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	// Get tracer, meter, and logger instances
	tracer := telem.TracerProvider.Tracer("shopverse-api")
	meter := telem.MeterProvider.Meter("shopverse-api")
	logger := telem.Logger

	logger.Info("Starting Shopverse API",
		slog.String("storage_backend", cfg.Storage.Backend),
		slog.Bool("kafka_enabled", cfg.Kafka.Brokers != ""),
	)

	// Snapshot storage for carts, wishlists and signed-in users
	var snapshots domain.SnapshotStore
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		redisStore := kv.NewRedisStore(cfg.Storage.RedisURL, tracer, logger)
		defer redisStore.Close()
		if err := redisStore.Initialize(ctx, 5); err != nil {
			logger.Error("Redis unavailable", slog.String("error", err.Error()))
			return
		}
		snapshots = redisStore
	default:
		snapshots = kv.NewMemoryStore()
	}

	// Initialize repository (dependency injection)
	catalog, err := memory.NewSampleCatalogRepository(tracer, logger)
	if err != nil {
		logger.Error("Invalid catalog data", slog.String("error", err.Error()))
		return
	}

	sessions := session.NewRegistry(snapshots, catalog, cfg.Storage.KeyPrefix, logger)
	go sessions.RunSweeper(ctx, cfg.Session.SweepInterval, cfg.Session.IdleTimeout)

	publisher := kafka.NewPublisher(kafka.ParseBrokers(cfg.Kafka.Brokers), cfg.Kafka.OrdersTopic, tracer, logger)
	defer publisher.Close()

	// Initialize services
	catalogService := service.NewCatalogService(catalog, cfg.Shop.FeaturedLimit, tracer, meter, logger)
	cartService := service.NewCartService(sessions, catalog, shipping, tracer, meter, logger)
	wishlistService := service.NewWishlistService(sessions, catalog, tracer, meter, logger)
	authService := service.NewAuthService(sessions, cfg.Shop.AuthDelay, tracer, meter, logger)
	checkoutService := service.NewCheckoutService(sessions, shipping, publisher, cfg.Shop.CheckoutDelay, tracer, meter, logger)

	// Initialize handlers
	handlers := http.Handlers{
		Catalog:  handler.NewCatalogHandler(catalogService, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Wishlist: handler.NewWishlistHandler(wishlistService, logger),
		Auth:     handler.NewAuthHandler(authService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
	}

	// Initialize HTTP server
	server := http.NewServer(&cfg.Server, handlers, snapshots.Ping, telem.MeterProvider, logger)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("Server error", "error", err.Error())
			cancel()
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("Shutting down server...")
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("Server stopped")
}
