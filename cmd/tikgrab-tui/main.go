// tikgrab TUI - resolve TikTok links to direct media from the terminal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tuiconfig "github.com/iconidentify/tikgrab/cmd/tikgrab-tui/internal/config"
	"github.com/iconidentify/tikgrab/cmd/tikgrab-tui/internal/ui"
	"github.com/iconidentify/tikgrab/internal/app"
	"github.com/iconidentify/tikgrab/internal/clipboard"
	"github.com/iconidentify/tikgrab/internal/config"
	"github.com/iconidentify/tikgrab/internal/downloader"
	"github.com/iconidentify/tikgrab/internal/repository"
	"github.com/iconidentify/tikgrab/internal/service"
	"github.com/iconidentify/tikgrab/internal/worker"
	"github.com/iconidentify/tikgrab/pkg/tiktok"
)

func main() {
	tuiCfg := tuiconfig.Load()

	cfg, err := config.Load(tuiCfg.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if tuiCfg.DownloadDir != "" {
		cfg.Download.Dir = tuiCfg.DownloadDir
	}

	logFile, err := os.OpenFile(tuiCfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Activity log stays in memory for the TUI
	cfg.Events.PersistToSQLite = false
	eventSvc, err := service.NewEventService(cfg.Events, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing activity log: %v\n", err)
		os.Exit(1)
	}
	defer eventSvc.Close()

	client := tiktok.NewClient(cfg.Resolver, logger)
	resolveSvc := service.NewResolveService(client, repository.NewInMemorySessionRepository(), eventSvc, logger)
	dl := downloader.NewHTTPDownloader(cfg.Download, logger)
	saver := downloader.NewSaver(dl, worker.NewPool(cfg.Download.Workers, logger), cfg.Download, logger)

	tui := ui.NewApp(ui.Options{
		Config:    tuiCfg,
		Clipboard: clipboard.System{},
		Prober:    dl,
		Activity:  eventSvc,
	})

	controller := app.New(app.Config{
		Resolver:      resolveSvc,
		Presenter:     tui,
		Clipboard:     clipboard.System{},
		Saver:         saver,
		PasteDebounce: cfg.Session.PasteDebounce,
		Logger:        logger,
	})
	defer controller.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	controller.Bind(ctx, tui)

	if err := tui.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
