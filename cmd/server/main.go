package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iconidentify/tikgrab/internal/api"
	"github.com/iconidentify/tikgrab/internal/api/handler"
	"github.com/iconidentify/tikgrab/internal/config"
	"github.com/iconidentify/tikgrab/internal/domain"
	"github.com/iconidentify/tikgrab/internal/downloader"
	"github.com/iconidentify/tikgrab/internal/repository"
	"github.com/iconidentify/tikgrab/internal/service"
	"github.com/iconidentify/tikgrab/internal/worker"
	"github.com/iconidentify/tikgrab/pkg/tiktok"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("tikgrab-server %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting tikgrab server",
		"version", Version,
		"build_time", BuildTime,
	)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize dependencies
	eventSvc, err := service.NewEventService(cfg.Events, logger)
	if err != nil {
		logger.Error("failed to initialize event service", "error", err)
		os.Exit(1)
	}
	defer eventSvc.Close()

	sessions := repository.NewInMemorySessionRepository()
	client := tiktok.NewClient(cfg.Resolver, logger)
	dl := downloader.NewHTTPDownloader(cfg.Download, logger)

	// Initialize services
	resolveSvc := service.NewResolveService(client, sessions, eventSvc, logger)

	// Initialize handlers
	resolveHandler := handler.NewResolveHandler(resolveSvc, dl, eventSvc, logger)
	healthHandler := handler.NewHealthHandler(sessions, eventSvc, cfg.Download.Dir, cfg.Download.MinFreeBytes)
	eventHandler := handler.NewEventHandler(eventSvc, logger)
	uiHandler := handler.NewUIHandler()

	// Setup router
	router := api.NewRouter(resolveHandler, healthHandler, eventHandler, uiHandler, cfg.Server.APIKey)

	// Prune idle sessions in the background
	sweeper := worker.NewSweeper(
		worker.SweeperConfig{
			Interval:    cfg.Session.SweepInterval,
			IdleTimeout: cfg.Session.IdleTimeout,
		},
		sessions,
		eventSvc,
		logger,
	)
	sweeper.Start()

	// Setup HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	eventSvc.Emit(domain.Event{
		Severity: domain.EventSeverityInfo,
		Category: domain.EventCategorySystem,
		Source:   "server",
		Message:  "server started",
		Metadata: domain.EventMetadata{"version": Version, "addr": srv.Addr}.ToJSON(),
	})

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop accepting new requests
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := sweeper.Stop(5 * time.Second); err != nil {
		logger.Error("sweeper shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
