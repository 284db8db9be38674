package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/daily-inspiration/internal/adapters/clients"
	"github.com/jsamuelsen/daily-inspiration/internal/adapters/clients/acl"
	"github.com/jsamuelsen/daily-inspiration/internal/adapters/storage/memory"
	"github.com/jsamuelsen/daily-inspiration/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/daily-inspiration/internal/adapters/tui"
	"github.com/jsamuelsen/daily-inspiration/internal/app"
	"github.com/jsamuelsen/daily-inspiration/internal/platform/clock"
	"github.com/jsamuelsen/daily-inspiration/internal/platform/config"
	"github.com/jsamuelsen/daily-inspiration/internal/platform/logging"
	"github.com/jsamuelsen/daily-inspiration/internal/ports"
)

const (
	appDirName     = "daily-inspiration"
	storeFileName  = "favorites.db"
	logFileName    = "quote.log"
	defaultProfile = "local"
)

// options are the persistent flags shared by every command.
type options struct {
	configDir string
	profile   string
	proxyURL  string
	storePath string
	retries   int
	ephemeral bool
	verbose   bool
}

// runtime holds the wired dependencies of one command invocation.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
	view   *app.QuoteView
	close  func() error
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "quote",
		Short:        "Daily inspiration in your terminal",
		Long:         "Fetch random quotes through the quote proxy, keep favorites and share them.",
		Version:      Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer rt.shutdown()

			return tui.Run(cmd.Context(), rt.view, rt.retries(opts))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configDir, "config-dir", "configs", "directory holding base.yaml and profile files")
	flags.StringVar(&opts.profile, "profile", "", "config profile (defaults to $APP_ENVIRONMENT or local)")
	flags.StringVar(&opts.proxyURL, "proxy", "", "quote proxy base URL (overrides view.proxy_url)")
	flags.StringVar(&opts.storePath, "store", "", "favorites database path (overrides view.storage_path)")
	flags.IntVar(&opts.retries, "retries", 0, "proxy attempts per fetch (overrides view.retries)")
	flags.BoolVar(&opts.ephemeral, "ephemeral", false, "keep favorites in memory only")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr at debug level")

	root.AddCommand(
		newFetchCmd(opts),
		newFavoritesCmd(opts),
		newShareCmd(opts),
	)

	return root
}

// setup loads configuration and wires the quote view. interactive routes
// logs away from the terminal.
func setup(ctx context.Context, opts *options, interactive bool) (*runtime, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg, opts, interactive)
	if err != nil {
		return nil, err
	}

	clk := clock.New()

	store, closeStore, err := openStore(cfg, opts, clk)
	if err != nil {
		return nil, err
	}

	fetcher, err := newProxyFetcher(cfg, logger)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	view := app.NewQuoteView(app.QuoteViewConfig{
		Fetcher:        fetcher,
		Store:          store,
		Clock:          clk,
		AttemptTimeout: cfg.View.AttemptTimeout,
		RetryDelay:     cfg.View.RetryDelay,
		Logger:         logger,
	})

	if err := view.Load(ctx); err != nil {
		_ = closeStore()
		return nil, err
	}

	return &runtime{cfg: cfg, logger: logger, view: view, close: closeStore}, nil
}

func (rt *runtime) retries(opts *options) int {
	if opts.retries > 0 {
		return opts.retries
	}

	return rt.cfg.View.Retries
}

func (rt *runtime) shutdown() {
	if err := rt.close(); err != nil {
		rt.logger.Error("closing favorites store", slog.Any("error", err))
	}
}

func loadConfig(opts *options) (*config.Config, error) {
	profile := opts.profile
	if profile == "" {
		profile = os.Getenv("APP_ENVIRONMENT")
	}

	if profile == "" {
		profile = defaultProfile
	}

	cfg, err := config.LoadFrom(opts.configDir, profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if opts.proxyURL != "" {
		cfg.View.ProxyURL = opts.proxyURL
	}

	if opts.storePath != "" {
		cfg.View.StoragePath = opts.storePath
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// newLogger writes to the configured rolling file when enabled. The terminal
// view cannot share stderr, so it falls back to a file in the user's config
// directory.
func newLogger(cfg *config.Config, opts *options, interactive bool) (*slog.Logger, error) {
	logCfg := &logging.Config{
		Level:   cfg.Log.Level,
		Format:  "text",
		Service: "quote",
		Version: Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	}

	if opts.verbose {
		logCfg.Level = "debug"
	}

	var w io.Writer = os.Stderr

	switch {
	case interactive:
		w = io.Discard

		if !logCfg.File.Enabled {
			dir, err := appDir()
			if err != nil {
				return nil, err
			}

			logCfg.File.Enabled = true
			logCfg.File.Path = filepath.Join(dir, logFileName)
		}
	case !opts.verbose:
		logCfg.Level = "warn"
	}

	logger := logging.NewWithWriter(logCfg, w)
	logging.SetDefault(logger)

	return logger, nil
}

// openStore returns the favorites store and its close function.
func openStore(cfg *config.Config, opts *options, clk clock.Real) (ports.KeyValueStore, func() error, error) {
	if opts.ephemeral {
		return memory.New(), func() error { return nil }, nil
	}

	path := cfg.View.StoragePath
	if path == "" {
		dir, err := appDir()
		if err != nil {
			return nil, nil, err
		}

		path = filepath.Join(dir, storeFileName)
	}

	store, err := sqlite.Open(path, clk.Now)
	if err != nil {
		return nil, nil, fmt.Errorf("opening favorites store: %w", err)
	}

	return store, store.Close, nil
}

// newProxyFetcher builds a single-attempt client for the proxy with no
// circuit breaker; the quote view owns the retry loop and every attempt must
// reach the proxy.
func newProxyFetcher(cfg *config.Config, logger *slog.Logger) (*acl.ProxyClient, error) {
	retry := cfg.Client.Retry
	retry.MaxAttempts = 1

	circuit := cfg.Client.CircuitBreaker
	circuit.MaxFailures = 0

	client, err := clients.New(&clients.Config{
		BaseURL:     cfg.View.ProxyURL,
		ServiceName: acl.ProxyServiceName,
		Timeout:     cfg.View.AttemptTimeout,
		Retry:       retry,
		Circuit:     circuit,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating proxy client: %w", err)
	}

	return acl.NewProxyClient(client, logger), nil
}

func appDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}

	return filepath.Join(base, appDirName), nil
}
