// cmd/filebox/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/SDRoan/Filebox-sub002/internal/api"
	"github.com/SDRoan/Filebox-sub002/internal/config"
	"github.com/SDRoan/Filebox-sub002/internal/database"
	"github.com/SDRoan/Filebox-sub002/internal/organizer"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// Create logger
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// Connect to PostgreSQL and make sure the schema exists
	pg, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer func() { _ = pg.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := pg.Ping(ctx); err != nil {
		cancel()
		logger.Fatal("database unreachable", zap.Error(err))
	}
	if err := pg.CreateTables(ctx); err != nil {
		cancel()
		logger.Fatal("failed to create tables", zap.Error(err))
	}
	cancel()

	// Explanations are optional; without an API key the engine falls
	// back to built-in descriptions.
	var explainer organizer.ExplanationGenerator
	if cfg.OpenAI.APIKey != "" {
		explainer = organizer.NewOpenAIExplainer(
			cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.MaxTokens, logger)
		logger.Info("AI explanations enabled", zap.String("model", cfg.OpenAI.Model))
	}

	store := organizer.NewPostgresStore(pg.DB(), logger)
	svc := organizer.NewService(store, cfg.Organizer, explainer, logger)

	server := api.NewServer(cfg, logger, svc)

	// Handle shutdown gracefully
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
		os.Exit(0)
	}()

	if err := server.Start(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
