package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"StockTracker/internal/collector"
	"StockTracker/internal/config"
	"StockTracker/internal/recorder"
	"StockTracker/internal/scheduler"
	"StockTracker/internal/view"
	"StockTracker/internal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := createLogger(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Error("config validation", zap.Error(err))
		return err
	}
	logger.Info("StockTracker starting", zap.String("config", cfgPath))

	// Init fetcher
	fetcher := newFetcher(cfg, logger)
	if cfg.DataSource.MaxRetries > 0 {
		fetcher = collector.NewRetryingFetcher(fetcher, cfg.DataSource.MaxRetries, cfg.DataSource.RetryInterval, logger)
	}
	logger.Info("data source", zap.String("provider", fetcher.Name()), zap.Int("max_retries", cfg.DataSource.MaxRetries))

	loader := collector.NewLoader(fetcher, logger)

	// Init recorder
	rec := newRecorder(cfg.History.SQLitePath, logger)
	defer rec.Close()

	v := view.New(loader, rec, cfg.Chart.Layout, logger)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, v, rec, cfg.History.Retention, logger)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.PruneCron); err != nil {
		logger.Error("register cron tasks", zap.Error(err))
		return err
	}

	// HTTP server
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv, err := web.NewServer(v, rec, logger)
	if err != nil {
		logger.Error("init web server", zap.Error(err))
		return err
	}
	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Initial chart
	go func() {
		if err := v.Load(ctx, cfg.Chart.DefaultSymbol); err != nil && !errors.Is(err, view.ErrSuperseded) {
			logger.Warn("initial load failed", zap.String("symbol", cfg.Chart.DefaultSymbol), zap.Error(err))
		}
	}()

	sched.Start()
	defer sched.Stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", cfg.Server.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Wait for shutdown signal or a listener failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		logger.Info("shutdown signal received, stopping...")
	case err := <-serveErr:
		logger.Error("Failed to start server", zap.Error(err))
		return err
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("StockTracker stopped")
	return nil
}

// newRecorder opens the SQLite load history, falling back to a no-op
// recorder when no path is configured or the database cannot be opened.
func newRecorder(path string, logger *zap.Logger) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.Warn("create sqlite directory", zap.Error(err))
	}
	sr, err := recorder.NewSQLiteRecorder(path, logger)
	if err != nil {
		logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		return recorder.NewNoopRecorder()
	}
	return sr
}

func newFetcher(cfg *config.Config, logger *zap.Logger) collector.Fetcher {
	ds := cfg.DataSource
	switch ds.Provider {
	case config.ProviderYahoo:
		return collector.NewYahooFetcher(ds.BaseURL, cfg.Proxy, ds.Timeout, logger)
	case config.ProviderMock:
		return &collector.MockFetcher{}
	default:
		return collector.NewAlphaVantageFetcher(ds.BaseURL, ds.APIKey, cfg.Proxy, ds.Timeout, logger)
	}
}

func createLogger(level string) (*zap.Logger, error) {
	// Parse log level
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
