package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gridspire/arena-server-go/internal/catalog"
	"github.com/gridspire/arena-server-go/internal/config"
	"github.com/gridspire/arena-server-go/internal/game"
	"github.com/gridspire/arena-server-go/internal/repository"
	"github.com/gridspire/arena-server-go/internal/server"
)

var (
	configPath = flag.String("config", "", "path to configuration file (optional)")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting arena server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	if cfg.Auth.AdminPassword == "" {
		logger.Warn("admin password not configured; admin API access disabled")
	}
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create context that listens for termination signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Card source: Postgres when configured, the embedded set otherwise
	var (
		cards game.CardSource = catalog.Default()
		db    *repository.DB
		repo  *repository.CardRepository
	)
	if cfg.Database.URL != "" {
		db, err = repository.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		// Log database stats
		stats := db.Stats()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)

		repo = repository.NewCardRepository(db, logger)
		cards = repo
	} else {
		logger.Info("no database configured, using the embedded card set",
			zap.Int("cards", catalog.Default().Size()),
		)
	}

	// Initialize rules engine
	engine := game.NewEngine(logger, cards)
	if cfg.Game.Seed != 0 {
		engine.SetSeed(cfg.Game.Seed)
		logger.Info("match randomness pinned", zap.Int64("seed", cfg.Game.Seed))
	}

	// Initialize websocket hub and wire it to engine notifications
	hub := server.NewHub(cfg.Server.WebSocket, logger)
	go hub.Run(ctx)
	engine.SetNotificationHandler(hub.Notify)

	handler := server.NewHandler(engine, cards, hub, logger, server.Options{
		MaxMatches: cfg.Game.MaxMatches,
		AdminHash:  cfg.Auth.AdminPassword,
		DB:         db,
		Repo:       repo,
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTP.Address,
		Handler: handler.Router(),
	}

	// Start HTTP server
	go func() {
		logger.Info("starting HTTP server", zap.String("address", cfg.Server.HTTP.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(serveErr))
		}
	}()

	logger.Info("arena server initialized",
		zap.String("http_address", cfg.Server.HTTP.Address),
		zap.Int("max_matches", cfg.Game.MaxMatches),
	)

	// Wait for termination signal
	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	// Graceful shutdown
	logger.Info("shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	cancel()

	logger.Info("arena server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
