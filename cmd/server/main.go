package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/ziadbensaada/PersonaTracker/internal/app"
	"github.com/ziadbensaada/PersonaTracker/internal/config"
	"github.com/ziadbensaada/PersonaTracker/internal/logger"
	"github.com/ziadbensaada/PersonaTracker/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Init(false)
		logger.Error("config error", "error", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := app.New(ctx, cfg)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      server.New(a.Aggregator, a.Builder, a.Store, cfg.MaxArticles).Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // report generation is slow
	}

	// re-run recent searches on a schedule so the cache stays warm
	warmer := cron.New()
	if _, err := warmer.AddFunc(cfg.WarmupSchedule, func() { warmCache(ctx, a, cfg) }); err != nil {
		logger.Error("invalid warmup schedule", "schedule", cfg.WarmupSchedule, "error", err)
		os.Exit(1)
	}
	warmer.Start()
	defer warmer.Stop()

	go func() {
		logger.Info("server listening", "addr", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

func warmCache(ctx context.Context, a *app.App, cfg *config.Config) {
	queries, err := a.Store.RecentQueries(time.Now().Add(-24 * time.Hour))
	if err != nil {
		logger.Error("cache warmup: history lookup failed", "error", err)
		return
	}
	logger.Info("cache warmup starting", "queries", len(queries))

	for _, q := range queries {
		if ctx.Err() != nil {
			return
		}
		articles := a.Aggregator.GetNewsAbout(ctx, q, cfg.MaxArticles, "", "")
		logger.Debug("cache warmed", "query", q, "articles", len(articles))
	}
}
