package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"review-bot-go/internal/analysis"
	"review-bot-go/internal/cache"
	"review-bot-go/internal/config"
	"review-bot-go/internal/controller"
	"review-bot-go/internal/enrich"
	"review-bot-go/internal/github"
	"review-bot-go/internal/handler"
	"review-bot-go/internal/store"
	"review-bot-go/internal/task"
	"review-bot-go/internal/worker"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	var appConfigPath = flag.String("app", "app.yaml", "Path to app configuration file")
	var dbPath = flag.String("db", "", "Path to the task database (overrides config)")
	var port = flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	cfgZap := zap.NewProductionConfig()
	cfgZap.Level.SetLevel(zapcore.DebugLevel)
	cfgZap.OutputPaths = []string{"stdout", "all.log"}
	logger, err := cfgZap.Build()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig(*appConfigPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if *dbPath != "" {
		cfg.App.DatabasePath = *dbPath
	}
	if *port != 0 {
		cfg.App.Port = *port
	}
	logger.Info("Configuration loaded successfully", zap.Any("config", cfg))

	taskStore, err := store.Open(cfg.App.DatabasePath, logger)
	if err != nil {
		logger.Fatal("Failed to open task store", zap.Error(err))
	}
	defer taskStore.Close()

	manager := task.NewManager(taskStore,
		time.Duration(cfg.Worker.StaleTimeoutSec)*time.Second, logger)
	source := github.NewClient(cfg.GitHub, logger)
	engine := analysis.NewEngine(cfg.Analysis, logger)
	results := cache.New(cfg.Cache.MaxEntries,
		time.Duration(cfg.Cache.TTLSec)*time.Second, logger)

	var enricher worker.Enricher
	if cfg.Ollama.Enabled {
		logger.Info("Commentary enrichment enabled",
			zap.String("url", cfg.Ollama.URL),
			zap.String("model", cfg.Ollama.Model))
		enricher = enrich.NewOllamaCommentator(cfg.Ollama, logger)
	} else {
		logger.Info("Commentary enrichment disabled")
	}

	retry := worker.RetryPolicy{
		MaxRetries: cfg.Worker.MaxRetries,
		BaseDelay:  time.Duration(cfg.Worker.RetryBaseMs) * time.Millisecond,
		MaxDelay:   time.Duration(cfg.Worker.RetryMaxMs) * time.Millisecond,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := worker.NewPool(cfg.Worker.Count,
		time.Duration(cfg.Worker.PollIntervalMs)*time.Millisecond,
		retry, manager, source, engine, results, enricher, logger)
	pool.Start(ctx)

	go runJanitor(ctx, taskStore, cfg.Retention, logger)

	reviewController := controller.NewReviewController(manager, taskStore, logger)
	router := handler.SetupRouter(reviewController, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", zap.Int("port", cfg.App.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	pool.Wait()
}

// runJanitor periodically deletes finished tasks past the retention
// age. Retention is operational policy, kept out of the lifecycle
// contract.
func runJanitor(ctx context.Context, taskStore *store.TaskStore, cfg config.RetentionConfig, logger *zap.Logger) {
	interval := time.Duration(cfg.SweepIntervalMin) * time.Minute
	maxAge := time.Duration(cfg.MaxAgeDays) * 24 * time.Hour

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-maxAge)
			removed, err := taskStore.DeleteTerminalOlderThan(ctx, cutoff)
			if err != nil {
				logger.Error("Task cleanup failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Info("Cleaned up old tasks", zap.Int64("removed", removed))
			}
		}
	}
}
