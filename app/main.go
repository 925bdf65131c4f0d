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

	"fireside/app/api"
	"fireside/app/cfg"
	"fireside/app/database"
	"fireside/app/feed"
	"fireside/app/seeds"
	"fireside/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
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

	slog.Info("Starting Fireside server", "version", appCfg.Version)

	db, err := database.NewConnection(
		appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
		appCfg.DBPassword, appCfg.DBName)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "schema_version", version, "dirty", dirty)

	feedRepo := database.NewFeedRepository(db)
	itemRepo := database.NewItemRepository(db)
	catalogRepo := database.NewCatalogRepository(db)
	subRepo := database.NewSubscriptionRepository(db)

	httpClient := &http.Client{Timeout: 30 * time.Second}

	fetcher := feed.NewFetcher(httpClient, appCfg.UserAgent)
	processor := feed.NewProcessor(feedRepo, itemRepo, catalogRepo, subRepo)
	refresher := feed.NewRefresher(fetcher, processor)
	contentExtractor := feed.NewContentExtractor()

	if err := registerSeeds(appCfg.SeedsFile, feedRepo); err != nil {
		slog.Error("Failed to register seed feeds", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval_seconds", appCfg.RefreshInterval)
	scheduler := tasks.NewScheduler(feedRepo, itemRepo, refresher, contentExtractor, httpClient)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(feedRepo, itemRepo, subRepo, refresher)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}

// registerSeeds inserts any seed feed URLs not yet known. The first scheduler
// tick picks them up for fetching.
func registerSeeds(path string, feedRepo database.FeedStore) error {
	seedList, err := seeds.Load(path)
	if err != nil {
		return err
	}
	if len(seedList) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	registered := 0
	for _, seed := range seedList {
		existing, err := feedRepo.GetFeedByURL(ctx, seed.URL)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if _, err := feedRepo.InsertFeed(ctx, seed.URL, "Untitled Feed", ""); err != nil {
			return err
		}
		registered++
	}

	slog.Info("Seed feeds registered", "total", len(seedList), "new", registered)
	return nil
}
