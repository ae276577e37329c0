package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/treasury-stress-go/internal/config"
	"github.com/boddenberg/treasury-stress-go/internal/domain"
	"github.com/boddenberg/treasury-stress-go/internal/handler"
	"github.com/boddenberg/treasury-stress-go/internal/infra/cache"
	"github.com/boddenberg/treasury-stress-go/internal/infra/client"
	"github.com/boddenberg/treasury-stress-go/internal/infra/observability"
	"github.com/boddenberg/treasury-stress-go/internal/infra/resilience"
	"github.com/boddenberg/treasury-stress-go/internal/infra/supabase"
	"github.com/boddenberg/treasury-stress-go/internal/port"
	"github.com/boddenberg/treasury-stress-go/internal/scheduler"
	"github.com/boddenberg/treasury-stress-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv()

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("use_supabase", cfg.UseSupabase),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.String("policy_file", cfg.PolicyFile),
		zap.String("refresh_cron", cfg.RefreshCron),
		zap.Bool("auth_enabled", cfg.JWTSecret != ""),
	)

	// --- Policy ---
	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		logger.Fatal("failed to load treasury policy", zap.Error(err))
	}
	logger.Info("treasury policy loaded",
		zap.Int64("start_cash", int64(policy.StartCash)),
		zap.Int("projection_buffer_days", policy.ProjectionBufferDays),
		zap.Int("fixed_expenses", len(policy.FixedExpenses)),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, observability.ServiceName)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	runCache := cache.New[*domain.SimulationRun](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("treasury-store")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Store ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var store port.TreasuryStore
	if cfg.UseSupabase && cfg.SupabaseURL != "" {
		logger.Info("using Supabase as data backend",
			zap.String("supabase_url", cfg.SupabaseURL),
		)
		store = supabase.NewClient(
			httpClient,
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			cb,
			resilienceCfg,
			logger,
		)
	} else {
		logger.Info("using ops API as data backend", zap.String("ops_api_url", cfg.OpsAPIURL))
		store = client.NewOpsClient(httpClient, cfg.OpsAPIURL, cb, resilienceCfg)
	}

	// --- Services ---
	treasurySvc := service.NewTreasuryService(store, runCache, policy, bulkhead, metrics, logger)

	// --- Scheduler ---
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	sched := scheduler.New(ctx, treasurySvc, 2*cfg.HTTPTimeout, logger)
	if err := sched.Register(cfg.RefreshCron); err != nil {
		logger.Fatal("failed to register baseline refresh", zap.Error(err))
	}
	if cfg.RefreshOnStart {
		go func() {
			if err := sched.RunNow(); err != nil {
				logger.Warn("initial baseline refresh failed", zap.Error(err))
			}
		}()
	}
	sched.Start()

	// --- Router ---
	router := handler.NewRouter(treasurySvc, metrics, logger, cfg.JWTSecret)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	stop()
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
