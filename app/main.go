package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sonilab/marketmood/app/aggregator"
	"github.com/sonilab/marketmood/app/analysis"
	"github.com/sonilab/marketmood/app/api"
	"github.com/sonilab/marketmood/app/cfg"
	"github.com/sonilab/marketmood/app/crawler"
	"github.com/sonilab/marketmood/app/database"
	"github.com/sonilab/marketmood/app/engine"
	"github.com/sonilab/marketmood/app/llm"
	"github.com/sonilab/marketmood/app/marketdata"
	"github.com/sonilab/marketmood/app/tasks"
	"github.com/sonilab/marketmood/app/tickers"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting MarketMood server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "migration_version", version, "dirty", dirty)

	sites := crawler.NewConfigCache(appCfg.SitesDir)
	if err := sites.Run(); err != nil {
		slog.Error("Failed to load site configurations", "dir", appCfg.SitesDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Site configurations loaded", "count", sites.GetSiteCount())

	dictionary, err := tickers.Load(appCfg.TickerFile)
	if err != nil {
		slog.Error("Failed to load ticker dictionary", "file", appCfg.TickerFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Ticker dictionary loaded", "tickers", dictionary.Size())

	ctx := context.Background()

	generator, err := llm.NewGeminiGenerator(ctx, appCfg.GoogleAPIKey, appCfg.LLMModel, appCfg.LLMMaxTokens)
	if err != nil {
		slog.Error("Failed to initialize Gemini client", "error", err)
		os.Exit(1)
	}
	governor := llm.NewGovernor(appCfg.CallsPerMinute, appCfg.DailyTokenBudget)
	model := llm.NewClient(generator, governor, llm.DefaultRetryPolicy())
	analyzer := analysis.NewAnalyzer(model)

	articleRepo := database.NewArticleRepository(db)
	watermarkRepo := database.NewWatermarkRepository(db)

	fetcher := crawler.NewFetcher(appCfg.UserAgent,
		time.Duration(appCfg.FetchTimeout)*time.Second,
		time.Duration(appCfg.FetchDelayMs)*time.Millisecond)

	crawlService := crawler.NewService(sites, fetcher, dictionary, articleRepo, watermarkRepo,
		appCfg.UserAgent, time.Duration(appCfg.FetchTimeout)*time.Second)

	agg := aggregator.New(articleRepo, sites.Sources)

	location, err := time.LoadLocation(appCfg.Timezone)
	if err != nil {
		location = time.Local
	}

	eng := engine.New(agg, analyzer, fetcher, location)
	quotes := marketdata.NewClient(appCfg.MarketDataURL)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval_seconds", appCfg.CrawlInterval)
	scheduler := tasks.NewScheduler(crawlService)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(eng, quotes, crawlService, dictionary, articleRepo, sites, location)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("MarketMood server started successfully")

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("MarketMood server shutdown complete")
}
