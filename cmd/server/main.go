package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerylCAtieno/eia-document-api/internal/config"
	"github.com/BerylCAtieno/eia-document-api/internal/db"
	"github.com/BerylCAtieno/eia-document-api/internal/handlers"
	"github.com/BerylCAtieno/eia-document-api/internal/llm"
	"github.com/BerylCAtieno/eia-document-api/internal/metrics"
	"github.com/BerylCAtieno/eia-document-api/internal/queue"
	"github.com/BerylCAtieno/eia-document-api/internal/repository"
	"github.com/BerylCAtieno/eia-document-api/internal/router"
	"github.com/BerylCAtieno/eia-document-api/internal/services"
	"github.com/BerylCAtieno/eia-document-api/internal/storage"
	"github.com/BerylCAtieno/eia-document-api/internal/utils"

	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database and run migrations
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to open database", "error", err, "dialect", db.Dialect(cfg.DatabaseURL))
	}
	defer database.Close()

	store, err := storage.New(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err, "backend", cfg.StorageBackend)
	}

	m := metrics.NewMetrics()

	registry, err := llm.NewRegistryFromConfig(ctx, cfg, logger, m)
	if err != nil {
		logger.Fatal("Failed to initialize LLM providers", "error", err)
	}
	if registry.Len() == 0 {
		logger.Warn("No LLM provider configured; analysis, chat and persona generation will fail")
	}

	jobs, err := newQueue(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize job queue", "error", err)
	}
	defer jobs.Close()

	// Repositories
	documentRepo := repository.NewDocumentRepository(database)
	personaRepo := repository.NewPersonaRepository(database)
	analysisRepo := repository.NewAnalysisRepository(database)
	searchRepo := repository.NewSearchResultRepository(database)

	// Services
	analyses := services.NewAnalysisService(documentRepo, personaRepo, analysisRepo,
		registry.Resolve(cfg.AnalysisProvider), logger, m)

	svc := router.Services{
		Documents: services.NewDocumentService(documentRepo, searchRepo, store, jobs, services.DocumentOptions{
			MaxFileSize:            cfg.MaxFileSize,
			ExtractBinaryDocuments: cfg.ExtractBinaryDocuments,
		}, logger, m),
		Analyses: analyses,
		Chat: services.NewChatService(documentRepo, personaRepo, searchRepo,
			registry.Resolve(cfg.ChatProvider), registry.Get(llm.ProviderPerplexity),
			services.ChatOptions{MatchVisibleText: cfg.ChatMatchVisibleText}, logger),
		Pages:    services.NewPageService(registry.ResolveImage(cfg.PageProvider), cfg.PageAnalysisInterval, logger),
		Personas: services.NewPersonaService(personaRepo, registry.Resolve(cfg.PersonaProvider), logger),
	}

	worker := queue.NewWorker(jobs, analyses.HandleJob, queue.WorkerOptions{
		Concurrency: cfg.WorkerConcurrency,
		MaxAttempts: cfg.JobMaxAttempts,
		RetryDelay:  cfg.JobRetryDelay,
	}, logger, m)

	// one LLM call, retries included
	llmBudget := time.Duration(cfg.LLMMaxRetries+1) * cfg.LLMTimeout

	handler := router.NewRouter(svc, handlers.FunctionOptions{
		MaxFileSize: cfg.MaxFileSize,
		PageBudget:  llmBudget + cfg.PageAnalysisInterval,
	}, m, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      llmBudget + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return worker.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server exited")
}

func newQueue(ctx context.Context, cfg *config.Config) (queue.Queue, error) {
	if cfg.RedisURL != "" {
		return queue.NewRedisQueue(ctx, cfg.RedisURL, queue.DefaultRedisKey)
	}
	return queue.NewMemoryQueue(cfg.QueueSize), nil
}
