// Package app wires the configuration into a ready pipeline shared by the
// CLI and the server.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ziadbensaada/PersonaTracker/internal/analysis"
	"github.com/ziadbensaada/PersonaTracker/internal/cache"
	"github.com/ziadbensaada/PersonaTracker/internal/config"
	"github.com/ziadbensaada/PersonaTracker/internal/feeds"
	"github.com/ziadbensaada/PersonaTracker/internal/fetch"
	"github.com/ziadbensaada/PersonaTracker/internal/images"
	"github.com/ziadbensaada/PersonaTracker/internal/logger"
	"github.com/ziadbensaada/PersonaTracker/internal/news"
	"github.com/ziadbensaada/PersonaTracker/internal/ratelimit"
	"github.com/ziadbensaada/PersonaTracker/internal/report"
	"github.com/ziadbensaada/PersonaTracker/internal/retry"
	"github.com/ziadbensaada/PersonaTracker/internal/rss"
	"github.com/ziadbensaada/PersonaTracker/internal/scraper"
	"github.com/ziadbensaada/PersonaTracker/internal/store"
	"github.com/ziadbensaada/PersonaTracker/internal/tts"
)

// App holds the assembled pipeline.
type App struct {
	Config     *config.Config
	Aggregator *news.Aggregator
	Builder    *report.Builder // nil without a Gemini key
	Store      *store.Store

	analyzer *analysis.Client
}

// New builds the pipeline from configuration. The returned cleanup closes
// the store and the analysis client.
func New(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	feedList, err := feeds.Load(cfg.FeedsConfigPath)
	if err != nil {
		return nil, nil, err
	}

	retryCfg := retry.Config{
		MaxAttempts: cfg.RetryAttempts,
		Delay:       cfg.RetryDelay,
		Backoff:     true,
	}

	pageClient := fetch.NewClient(cfg.RequestTimeout)
	imageClient := fetch.NewClient(cfg.ImageCheckTimeout)

	imgs := images.New(imageClient, cfg.CheckImageAccess)
	scr := scraper.New(pageClient, imgs)
	parser := rss.NewParser(pageClient, retryCfg)

	disk, err := cache.NewDisk(cfg.CacheDir, cfg.CacheTTL)
	if err != nil {
		return nil, nil, err
	}

	agg := news.NewAggregator(news.Options{
		Feeds:             feedList,
		Parser:            parser,
		Scraper:           scr,
		Cache:             disk,
		MaxEntriesPerFeed: cfg.MaxEntriesPerFeed,
		MinContentLength:  cfg.MinContentLength,
	})

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return nil, nil, err
	}
	if err := st.EnsureAdmin(cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("ensure admin account: %w", err)
	}

	app := &App{Config: cfg, Aggregator: agg, Store: st}

	if cfg.GeminiAPIKey != "" {
		limiter := ratelimit.New(cfg.MaxSentimentRequests, cfg.SentimentDelay)
		analyzer, err := analysis.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, limiter)
		if err != nil {
			st.Close()
			return nil, nil, err
		}
		app.analyzer = analyzer

		speech, err := tts.New(fetch.NewClient(cfg.RequestTimeout), cfg.TTSDir, retryCfg)
		if err != nil {
			st.Close()
			analyzer.Close()
			return nil, nil, err
		}
		app.Builder = report.NewBuilder(analyzer, speech, cfg.SentimentDelay, cfg.TTSLanguage)
	} else {
		logger.Warn("GEMINI_API_KEY not set, sentiment analysis disabled")
	}

	cleanup := func() {
		if app.analyzer != nil {
			app.analyzer.Close()
		}
		st.Close()
	}
	return app, cleanup, nil
}

// RunSearch executes one search from the CLI and prints the results.
func (a *App) RunSearch(ctx context.Context, query string, maxArticles int, startDate, endDate string, analyze, audio bool) error {
	if maxArticles <= 0 {
		maxArticles = a.Config.MaxArticles
	}

	started := time.Now()
	articles := a.Aggregator.GetNewsAbout(ctx, query, maxArticles, startDate, endDate)
	logger.Info("search complete", "query", query, "articles", len(articles), "took", time.Since(started))

	if len(articles) == 0 {
		fmt.Printf("No articles found for %q\n", query)
		return nil
	}

	if analyze {
		if a.Builder == nil {
			return fmt.Errorf("analysis requested but GEMINI_API_KEY is not set")
		}
		rep, err := a.Builder.Build(ctx, query, articles, audio)
		if err != nil {
			return err
		}
		printReport(rep)
		return nil
	}

	for i, art := range articles {
		fmt.Printf("%d. [%s] %s\n   %s\n   %s\n\n", i+1, art.PublishDate, art.Title, art.Source, art.URL)
	}
	return nil
}

func printReport(rep *report.Report) {
	fmt.Printf("Report for %q: %d articles, %d analyzed\n", rep.Query, len(rep.Articles), rep.AnalyzedCount)
	fmt.Printf("Overall sentiment: %s (%.2f)\n\n", rep.OverallLabel, rep.OverallScore)

	for i, art := range rep.Articles {
		fmt.Printf("%d. [%s] %s (%s)\n", i+1, art.PublishDate, art.Title, art.Source)
		if art.Sentiment != nil {
			fmt.Printf("   %s (%.2f): %s\n", art.Sentiment.Label, art.Sentiment.Score, art.Sentiment.Summary)
			if len(art.Sentiment.Keywords) > 0 {
				fmt.Printf("   keywords: %s\n", strings.Join(art.Sentiment.Keywords, ", "))
			}
		}
		fmt.Printf("   %s\n\n", art.URL)
	}

	if rep.OverallSummary != "" {
		fmt.Printf("Overall summary:\n%s\n", rep.OverallSummary)
	}
	if rep.AudioPath != "" {
		fmt.Printf("\nAudio summary: %s\n", rep.AudioPath)
	}
}
