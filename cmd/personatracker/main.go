package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ziadbensaada/PersonaTracker/internal/app"
	"github.com/ziadbensaada/PersonaTracker/internal/config"
	"github.com/ziadbensaada/PersonaTracker/internal/logger"
)

func main() {
	query := flag.String("query", "", "person or company to search for (required)")
	maxArticles := flag.Int("max", 0, "maximum articles to return (default from config)")
	startDate := flag.String("start", "", "earliest publish date, YYYY-MM-DD")
	endDate := flag.String("end", "", "latest publish date, YYYY-MM-DD")
	analyze := flag.Bool("analyze", false, "run sentiment analysis on the results")
	audio := flag.Bool("audio", false, "generate a spoken summary (implies -analyze)")
	flag.Parse()

	if *query == "" {
		fmt.Fprintln(os.Stderr, "usage: personatracker -query \"Person Name\" [-max N] [-start YYYY-MM-DD] [-end YYYY-MM-DD] [-analyze] [-audio]")
		os.Exit(2)
	}
	if *audio {
		*analyze = true
	}

	// optional; real deployments use the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
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

	if err := a.RunSearch(ctx, *query, *maxArticles, *startDate, *endDate, *analyze, *audio); err != nil {
		logger.Error("search failed", "query", *query, "error", err)
		os.Exit(1)
	}
}
