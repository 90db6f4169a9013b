// Command server starts the Agriflow BNPL scoring API.
//
// Usage:
//
//	go run ./cmd/server [flags]
//
// Flags:
//
//	-config  Path to a YAML config file (default: search ./configs)
//
// Configuration is read from configs/config.yaml with environment variable
// overrides (SERVER_PORT, LOGGING_LEVEL, ...). If seed.dataset_path points
// at a generated CSV dataset, it is scored and loaded into the audit store
// on startup so the reporting endpoints have data from the first request.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"agriflow/bnpl-api/internal/api"
	"agriflow/bnpl-api/internal/config"
	"agriflow/bnpl-api/internal/generator"
	"agriflow/bnpl-api/internal/logger"
	"agriflow/bnpl-api/internal/store"
	"agriflow/bnpl-api/internal/webhook"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		// Logger is not up yet.
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Most PaaS platforms inject PORT as an env var; it takes precedence.
	if envPort := os.Getenv("PORT"); envPort != "" {
		if p, err := strconv.Atoi(envPort); err == nil {
			cfg.Server.Port = p
		}
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()

	// ── Wire dependencies ─────────────────────────────────────────────────────
	db, err := store.InitDB(cfg.Database.Path)
	if err != nil {
		log.Fatal("open database failed", zap.String("path", cfg.Database.Path), zap.Error(err))
	}
	defer db.Close()

	decisions := store.NewDecisionRepo(db)
	webhooks := store.NewWebhookRepo(db)
	notifier := webhook.New(webhooks, log, time.Duration(cfg.Webhooks.TimeoutSeconds)*time.Second)
	handler := api.NewHandler(decisions, webhooks, notifier, log)
	router := api.NewRouter(handler, log)

	// ── Load seed dataset ─────────────────────────────────────────────────────
	if cfg.Seed.DatasetPath != "" {
		if err := loadDataset(decisions, cfg.Seed.DatasetPath, log); err != nil {
			// Non-fatal: the API works fine without seed data.
			log.Warn("seed dataset not loaded",
				zap.String("file", cfg.Seed.DatasetPath), zap.Error(err))
		}
	}

	// ── Start HTTP server ─────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("db", cfg.Database.Path),
			zap.String("environment", cfg.App.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	log.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	log.Info("server stopped")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// loadDataset reads a generated CSV dataset, runs the scoring pipeline on
// every profile, and persists the decisions so the API starts with
// historical context.
func loadDataset(decisions *store.DecisionRepo, filePath string, log *zap.Logger) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	profiles, err := generator.ParseCSV(data)
	if err != nil {
		return err
	}

	var loaded, skipped int
	for i := range profiles {
		decision := api.RunPipeline(&profiles[i].ApplicantProfile)
		if err := decisions.Save(decision); err != nil {
			skipped++
		} else {
			loaded++
		}
	}

	log.Info("seed dataset loaded",
		zap.String("file", filePath),
		zap.Int("loaded", loaded),
		zap.Int("skipped", skipped),
	)
	return nil
}
