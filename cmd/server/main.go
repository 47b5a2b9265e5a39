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

	"github.com/pulseai/pulse/app/api"
	"github.com/pulseai/pulse/app/cfg"
	"github.com/pulseai/pulse/app/collector"
	"github.com/pulseai/pulse/app/feed"
	"github.com/pulseai/pulse/app/store"
	"github.com/pulseai/pulse/app/tasks"
)

func main() {
	config, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if config == nil {
		// Help was shown
		return
	}

	setupLogger(config.Debug)

	slog.Info("Starting Pulse server", "version", config.Version)

	registry, err := feed.LoadRegistry(config.SourcesFile)
	if err != nil {
		slog.Error("Failed to load source registry", "path", config.SourcesFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Source registry loaded", "sources", registry.Len(), "enabled", len(registry.Sources()))

	monitor := openStore(config)
	monitor.Start()
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := monitor.Close(closeCtx); err != nil {
			slog.Error("Failed to close store", "error", err)
		}
	}()

	httpClient := &http.Client{}
	client := feed.NewClient(httpClient, feed.NewParser(), config.UserAgent, config.FetchTimeout)

	newsCollector := collector.NewCollector(registry, client, monitor, collector.Params{
		SlackFactor: config.SlackFactor,
		Spread:      config.SourceSpread,
		Concurrency: config.FetchConcurrency,
	})

	scheduler := tasks.NewScheduler(newsCollector,
		time.Duration(config.SchedulerInterval)*time.Second, config.SchedulerCount)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(newsCollector, monitor, registry, api.HandlerOptions{
		DefaultCount: config.DefaultCount,
		MaxCount:     config.MaxCount,
		Version:      config.Version,
		BaseURL:      config.BaseUrl,
	})
	server := api.NewServer(handler, api.ServerOptions{
		APIAccessKey: config.APIAccessKey,
		CORSOrigins:  config.CORSOrigins,
		Debug:        config.Debug,
	})

	// Collection can run for several fetch timeouts, so writes get more room.
	httpServer := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", config.Port, "base_url", config.BaseUrl)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

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
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

// openStore connects the configured backend. A failed connection leaves the
// service running without persistence.
func openStore(config *cfg.Cfg) *store.Monitor {
	ctx, cancel := context.WithTimeout(context.Background(), config.StoreTimeout)
	defer cancel()

	backend, err := store.Open(ctx, store.Options{
		Driver:          config.StoreDriver,
		Path:            config.DBPath,
		MongoURI:        config.MongoURI,
		MongoDatabase:   config.MongoDatabase,
		MongoCollection: config.MongoCollection,
	})
	if err != nil {
		slog.Warn("Store not available, continuing without persistence", "driver", config.StoreDriver, "error", err)
		backend = nil
	}
	if backend == nil && err == nil {
		slog.Info("Persistence disabled", "driver", config.StoreDriver)
	}

	return store.NewMonitor(backend, config.StoreHealthInterval)
}
