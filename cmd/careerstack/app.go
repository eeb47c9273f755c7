package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/careerstack/internal/cache"
	"github.com/jonathan/careerstack/internal/config"
	"github.com/jonathan/careerstack/internal/db"
	"github.com/jonathan/careerstack/internal/fetch"
	"github.com/jonathan/careerstack/internal/llm"
	"github.com/jonathan/careerstack/internal/logger"
	"github.com/jonathan/careerstack/internal/notion"
	"github.com/jonathan/careerstack/internal/observability"
	"github.com/jonathan/careerstack/internal/pipeline"
	"github.com/jonathan/careerstack/internal/retry"
	"github.com/jonathan/careerstack/internal/secrets"
	"github.com/jonathan/careerstack/internal/selectors"
)

// app holds the collaborators shared by the subcommands. Everything past the config and logger
// is built on first use so commands only pay for what they touch.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	printer *observability.Printer
	store   cache.Store
	loader  *selectors.Loader
	closers []func()
}

// loadConfig reads the effective configuration and applies the --verbose override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Writer: cmd.ErrOrStderr(),
	})

	if cfg.HasEncryptedSecrets() {
		box, err := secrets.Open(cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open key file: %w", err)
		}
		if err := cfg.DecryptSecrets(box); err != nil {
			return nil, err
		}
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		printer: observability.NewPrinter(cmd.OutOrStdout()),
	}
	a.store = a.openStore(ctx)
	return a, nil
}

// openStore prefers a shared Redis cache and falls back to files under the cache dir.
func (a *app) openStore(ctx context.Context) cache.Store {
	if a.cfg.RedisAddr != "" {
		store, err := cache.NewRedisStore(ctx, cache.RedisConfig{Addr: a.cfg.RedisAddr}, a.log)
		if err == nil {
			a.closers = append(a.closers, func() { _ = store.Close() })
			return store
		}
		a.log.Warn("redis unavailable, using file cache", zap.String("addr", a.cfg.RedisAddr), zap.Error(err))
	}
	return cache.NewFileStore(a.cfg.CacheDir)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.log.Sync()
}

func (a *app) selectorLoader() *selectors.Loader {
	if a.loader == nil {
		a.loader = selectors.NewLoader(a.store, selectors.LoaderOptions{
			Sources: a.cfg.Selectors.Sources,
			TTL:     a.cfg.Selectors.TTL.Std(),
			Logger:  a.log,
		})
		// let a background refresh finish before the process exits
		a.closers = append(a.closers, a.loader.Wait)
	}
	return a.loader
}

func (a *app) analyzer(ctx context.Context) (*llm.Analyzer, error) {
	llmConfig := llm.DefaultConfig(llm.ParseProvider(a.cfg.AI.Provider))
	if a.cfg.AI.BaseURL != "" {
		llmConfig.BaseURL = a.cfg.AI.BaseURL
	}
	if a.cfg.AI.Model != "" {
		llmConfig = llmConfig.WithModel(llm.TierStandard, a.cfg.AI.Model)
	}

	client, err := llm.NewClient(ctx, llmConfig, a.cfg.AI.APIKey)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	return llm.NewAnalyzer(client, retry.DefaultPolicy(), a.log), nil
}

func (a *app) resume() (string, error) {
	resume, err := a.cfg.ReadResume()
	if err != nil {
		return "", err
	}
	if resume == "" {
		return "", llm.ErrMissingResume
	}
	return resume, nil
}

func (a *app) notionClient() (*notion.Client, error) {
	return notion.NewClient(notion.Config{
		Secret:     a.cfg.Notion.Secret,
		DatabaseID: a.cfg.Notion.DatabaseID,
		Logger:     a.log,
	})
}

// history connects to the save history database, or returns nil when none is configured.
func (a *app) history(ctx context.Context) (*db.DB, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, nil
	}
	database, err := db.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, err
	}
	a.closers = append(a.closers, database.Close)
	return database, nil
}

// runOptions are the per-command choices that shape the pipeline.
type runOptions struct {
	browser     bool
	noFallback  bool
	concurrency int
	progress    bool
	// requireAnalysis turns an analysis failure into a command failure.
	requireAnalysis bool
}

// baseOptions holds the pipeline settings every command shares: loader, selectors, cache and
// concurrency.
func (a *app) baseOptions(cmd *cobra.Command, ro runOptions) pipeline.Options {
	opts := pipeline.Options{
		Loader: &pipeline.WebLoader{
			Fetch:  fetch.DefaultOptions(),
			Logger: a.log,
		},
		Selectors:       a.selectorLoader(),
		Cache:           pipeline.NewJobCache(a.store, pipeline.DefaultJobCacheTTL, nil),
		UseBrowser:      ro.browser || a.cfg.UseBrowser,
		BrowserFallback: !ro.noFallback,
		Concurrency:     a.cfg.Concurrency,
		Logger:          a.log,
	}
	if ro.concurrency > 0 {
		opts.Concurrency = ro.concurrency
	}
	if ro.progress {
		out := cmd.ErrOrStderr()
		opts.OnProgress = func(e pipeline.ProgressEvent) {
			_, _ = fmt.Fprintf(out, "[%s] %s: %s\n", e.Step, e.Source, e.Message)
		}
	}
	return opts
}

// runner wires the pipeline for steps. Collaborators a step does not need are left out.
func (a *app) runner(ctx context.Context, cmd *cobra.Command, steps pipeline.Steps, ro runOptions) (*pipeline.Runner, error) {
	opts := a.baseOptions(cmd, ro)

	if steps.Analyze {
		analyzer, err := a.analyzer(ctx)
		if err != nil {
			return nil, err
		}
		resume, err := a.resume()
		if err != nil {
			return nil, err
		}
		opts.Analyzer = analyzer
		opts.Resume = resume
	}

	if steps.Save {
		client, err := a.notionClient()
		if err != nil {
			return nil, err
		}
		opts.Saver = client

		database, err := a.history(ctx)
		if err != nil {
			return nil, err
		}
		if database != nil {
			opts.History = database
		}
	}

	return pipeline.New(opts), nil
}
