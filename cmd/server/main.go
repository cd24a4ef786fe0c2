// Command server starts the FinanceFirst credit risk evaluation API.
//
// Usage:
//
//	go run ./cmd/server [flags]
//
// Flags:
//
//	-config  Path to a YAML config file (default: configs/default.yaml)
//
// Every external dependency is optional. Without a DATABASE_URL the service
// keeps evaluations in memory; without a REDIS_URL intelligence caches are
// in-process; without a BUREAU_URL a deterministic simulated bureau answers
// credit report lookups, which keeps local development self-contained.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"financefirst/risk-api/internal/api"
	"financefirst/risk-api/internal/cache"
	"financefirst/risk-api/internal/config"
	"financefirst/risk-api/internal/domain"
	"financefirst/risk-api/internal/orchestrator"
	"financefirst/risk-api/internal/providers"
	"financefirst/risk-api/internal/retrieval"
	"financefirst/risk-api/internal/scoring"
	"financefirst/risk-api/internal/store"
	"financefirst/risk-api/internal/trends"
	"financefirst/risk-api/internal/webhook"
)

func main() {
	configPath := flag.String("config", "configs/default.yaml", "path to YAML config file")
	flag.Parse()

	// Structured logging — JSON in production, text-friendly in development.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// ── Storage ───────────────────────────────────────────────────────────────
	var evalStore store.EvaluationStore
	if cfg.DatabaseURL != "" {
		pg, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("postgres connect failed", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			slog.Error("postgres schema setup failed", "error", err)
			os.Exit(1)
		}
		evalStore = pg
		slog.Info("using postgres store")
	} else {
		evalStore = store.NewMemory()
		slog.Info("using in-memory store")
	}

	// ── Caches ────────────────────────────────────────────────────────────────
	var trendCache, insightCache cache.Cache[[]domain.MarketInsight]
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("redis connect failed", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		trendCache = cache.NewRedis[[]domain.MarketInsight](client, "risk:")
		insightCache = cache.NewRedis[[]domain.MarketInsight](client, "risk:")
		slog.Info("using redis cache")
	} else {
		trendCache = cache.NewMemory[[]domain.MarketInsight]()
		insightCache = cache.NewMemory[[]domain.MarketInsight]()
	}

	// ── External providers ────────────────────────────────────────────────────
	httpClient := &http.Client{Timeout: cfg.ProviderTimeout}

	var bureau providers.CreditBureauProvider
	if cfg.BureauURL != "" {
		bc := providers.DefaultBureauConfig()
		bc.BaseURL = cfg.BureauURL
		bc.APIKey = cfg.BureauKey
		bureau = providers.NewHTTPBureau(bc, httpClient)
	} else {
		bureau = providers.NewSimulatedBureau()
		slog.Info("using simulated credit bureau")
	}

	var policy providers.PolicyContextProvider
	if cfg.PolicyURL != "" {
		policy = providers.NewHTTPPolicy(cfg.PolicyURL, cfg.PolicyKey, httpClient)
	}

	var market providers.MarketIntelligenceProvider
	if cfg.MarketURL != "" {
		market = providers.NewHTTPMarket(cfg.MarketURL, cfg.MarketKey, httpClient)
	} else if static, err := providers.LoadStaticMarket(cfg.SeedFile); err == nil {
		market = static
		slog.Info("using static market intelligence", "file", cfg.SeedFile)
	} else {
		slog.Warn("market intelligence disabled", "file", cfg.SeedFile, "reason", err.Error())
	}

	var reasoner providers.Reasoner
	if cfg.ReasonerURL != "" {
		reasoner = providers.NewHTTPReasoner(cfg.ReasonerURL, cfg.ReasonerKey, cfg.ReasonerModel, httpClient)
	} else {
		slog.Info("narrative enrichment disabled, evaluations stay numeric")
	}

	// ── Wire the evaluation pipeline ──────────────────────────────────────────
	engine := scoring.New()
	analyzer := trends.NewAnalyzer(trendCache, slog.Default())
	retriever := retrieval.New(bureau, policy, market, analyzer, insightCache, retrieval.Options{
		ProviderTimeout: cfg.ProviderTimeout,
		PolicyBudget:    cfg.PolicyBudget,
		Logger:          slog.Default(),
	})
	orch := orchestrator.New(engine, retriever, reasoner, evalStore, orchestrator.Options{
		EvaluationTimeout: cfg.EvaluationTimeout,
		Logger:            slog.Default(),
	})
	pool := orchestrator.NewPool(orch, cfg.Workers)
	notifier := webhook.New(evalStore)
	handler := api.NewHandler(pool, evalStore, engine, notifier)
	router := api.NewRouter(handler)

	// ── Load applicant seed data ──────────────────────────────────────────────
	if cfg.ApplicantSeedFile != "" {
		// Non-fatal: the API works fine without pre-loaded history.
		if err := loadSeedApplicants(ctx, pool, cfg.ApplicantSeedFile); err != nil {
			slog.Warn("applicant seed not loaded", "file", cfg.ApplicantSeedFile, "reason", err.Error())
		}
	}

	// ── Start HTTP server ─────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server listening", "port", cfg.Port, "workers", cfg.Workers)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}

// loadSeedApplicants reads a JSON file of evaluation requests and runs each
// through the worker pool so the API starts with evaluation history. The
// pool bounds concurrency the same way it does for live traffic.
func loadSeedApplicants(ctx context.Context, pool *orchestrator.Pool, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	var requests []domain.EvaluationRequest
	if err := json.Unmarshal(data, &requests); err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	var wg sync.WaitGroup
	var loaded, skipped atomic.Int64
	for i := range requests {
		req := &requests[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := pool.Submit(ctx, req); err != nil {
				skipped.Add(1)
			} else {
				loaded.Add(1)
			}
		}()
	}
	wg.Wait()

	slog.Info("applicant seed loaded", "file", filePath, "loaded", loaded.Load(), "skipped", skipped.Load())
	return nil
}
