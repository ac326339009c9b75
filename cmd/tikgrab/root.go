package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/iconidentify/tikgrab/internal/app"
	"github.com/iconidentify/tikgrab/internal/clipboard"
	"github.com/iconidentify/tikgrab/internal/config"
	"github.com/iconidentify/tikgrab/internal/downloader"
	"github.com/iconidentify/tikgrab/internal/repository"
	"github.com/iconidentify/tikgrab/internal/service"
	"github.com/iconidentify/tikgrab/internal/worker"
	"github.com/iconidentify/tikgrab/pkg/tiktok"
)

// env holds the process-level dependencies of the commands.
type env struct {
	stdout     io.Writer
	stderr     io.Writer
	isTerminal func() bool
	clipboard  clipboard.Writer
	newFetcher func(cfg config.ResolverConfig, logger *slog.Logger) service.Fetcher
}

func defaultEnv() *env {
	return &env{
		stdout: os.Stdout,
		stderr: os.Stderr,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdout.Fd()))
		},
		clipboard: clipboard.System{},
		newFetcher: func(cfg config.ResolverConfig, logger *slog.Logger) service.Fetcher {
			return tiktok.NewClient(cfg, logger)
		},
	}
}

type globalFlags struct {
	configPath string
	verbose    bool
	json       bool
}

func newRootCmd(e *env) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "tikgrab",
		Short:         "Resolve TikTok links to direct video and photo URLs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(e.stdout)
	root.SetErr(e.stderr)

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to config file")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log debug output to stderr")
	root.PersistentFlags().BoolVar(&flags.json, "json", false, "Print results as JSON (default when stdout is not a terminal)")

	root.AddCommand(
		newResolveCmd(e, flags),
		newDownloadCmd(e, flags),
		newVersionCmd(),
	)
	return root
}

// runner is what a command needs to drive the controller.
type runner struct {
	cfg       *config.Config
	logger    *slog.Logger
	presenter *terminalPresenter
	app       *app.App
}

func setup(cmd *cobra.Command, e *env, flags *globalFlags, dir string) (*runner, error) {
	level := slog.LevelWarn
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(e.stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		fmt.Fprintf(e.stderr, "error: %v\n", err)
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dir != "" {
		cfg.Download.Dir = dir
	}

	asJSON := flags.json
	if !cmd.Flags().Changed("json") {
		asJSON = !e.isTerminal()
	}
	presenter := newTerminalPresenter(e.stdout, e.stderr, asJSON)

	resolveSvc := service.NewResolveService(e.newFetcher(cfg.Resolver, logger), repository.NewInMemorySessionRepository(), nil, logger)
	dl := downloader.NewHTTPDownloader(cfg.Download, logger)
	saver := downloader.NewSaver(dl, worker.NewPool(cfg.Download.Workers, logger), cfg.Download, logger)

	return &runner{
		cfg:       cfg,
		logger:    logger,
		presenter: presenter,
		app: app.New(app.Config{
			Resolver:  resolveSvc,
			Presenter: presenter,
			Clipboard: e.clipboard,
			Saver:     saver,
			Logger:    logger,
		}),
	}, nil
}
