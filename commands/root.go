package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-cost-tracker/internal/config"
	"github.com/penwyp/go-cost-tracker/internal/core/pricing"
	"github.com/penwyp/go-cost-tracker/internal/presentation/formatter"
	"github.com/penwyp/go-cost-tracker/internal/provider"
	"github.com/penwyp/go-cost-tracker/internal/storage"
	"github.com/penwyp/go-cost-tracker/internal/store"
	"github.com/penwyp/go-cost-tracker/internal/util"
)

var (
	configPath   string
	outputFormat string
	timezone     string
	debug        bool
	watchMode    bool

	rootCmd = &cobra.Command{
		Use:   "go-cost-tracker",
		Short: "AI API cost tracking and aggregation tool",
		Long: `go-cost-tracker tracks manually entered AI spend (API usage, subscriptions,
hardware, one-time purchases) and aggregates it into daily/monthly/yearly
totals, per-provider and per-type breakdowns, and a trailing monthly trend.

Examples:
  go-cost-tracker                                  # Print the cost report
  go-cost-tracker --output json                    # Report as JSON
  go-cost-tracker sources add --name "Claude Max" --type subscription --billing monthly --cost 100
  go-cost-tracker sync --days 7                    # Pull last week's provider usage
  go-cost-tracker providers test                   # Health-check configured providers`,
		RunE: runReport,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath,
		"Config file path")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table",
		"Output format (table, json, csv)")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "",
		"Timezone for trend months (e.g. UTC, Asia/Shanghai); overrides config")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Mirror debug logs to the console")
	rootCmd.Flags().BoolVar(&watchMode, "watch", false,
		"Keep running and reprint the report when the stored data changes")

	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(providersCmd)
}

// app holds the wired application: config, storage, store, registry.
// Everything is constructed explicitly here; no package carries global state
// beyond the logger and time provider.
type app struct {
	cfg      *config.Config
	storage  storage.Store
	store    *store.CostSourceStore
	registry *provider.Registry
	pricing  pricing.Provider
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	util.InitLogger(cfg.Log.Level, cfg.Log.File, debug || cfg.Log.Debug)

	tz := cfg.Timezone
	if timezone != "" {
		tz = timezone
	}
	if err := util.InitializeTimeProvider(tz); err != nil {
		return nil, err
	}

	var st storage.Store
	switch cfg.Storage.Backend {
	case "sqlite":
		st, err = storage.NewSQLiteStore(util.ExpandPath(cfg.Storage.Path) + "/cost-tracker.db")
	default:
		st, err = storage.NewFileStore(util.ExpandPath(cfg.Storage.Path))
	}
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	pricingProvider, err := pricing.CreateProvider(&pricing.SourceConfig{
		PricingSource:      cfg.Pricing.Source,
		PricingOfflineMode: cfg.Pricing.Offline,
	}, cfg.Pricing.CacheDir)
	if err != nil {
		st.Close()
		return nil, err
	}

	registry := provider.NewRegistry()
	provider.RegisterBuiltins(registry)

	costStore := store.NewCostSourceStore(st)
	costStore.SeedDefaultCurrency(cfg.DefaultCurrency)

	a := &app{
		cfg:      cfg,
		storage:  st,
		store:    costStore,
		registry: registry,
		pricing:  pricingProvider,
	}
	return a, nil
}

func (a *app) close() {
	if err := a.storage.Close(); err != nil {
		util.LogWarnf("Closing storage: %v", err)
	}
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	f, err := formatter.New(outputFormat)
	if err != nil {
		return err
	}

	render := func() error {
		report := formatter.Report{
			Summary:     a.store.Summary(),
			Sources:     a.store.ExportSources(),
			Currency:    a.store.DefaultCurrency(),
			GeneratedAt: util.GetTimeProvider().Now(),
		}
		return f.Format(cmd.OutOrStdout(), report)
	}
	if err := render(); err != nil {
		return err
	}
	if !watchMode {
		return nil
	}
	return watchAndRender(cmd, a, render)
}

// watchAndRender reloads the store and reprints the report whenever the
// persisted sources change on disk, until the command context ends. Only the
// file backend has a directory to watch.
func watchAndRender(cmd *cobra.Command, a *app, render func() error) error {
	fileStore, ok := a.storage.(*storage.FileStore)
	if !ok {
		return fmt.Errorf("--watch requires the file storage backend")
	}
	watcher, err := storage.NewWatcher(fileStore)
	if err != nil {
		return fmt.Errorf("watch storage: %w", err)
	}
	defer watcher.Close()

	for {
		select {
		case event := <-watcher.Events():
			if event.Key != storage.KeySources {
				continue
			}
			a.store.Reload()
			if err := render(); err != nil {
				return err
			}
		case <-cmd.Context().Done():
			return nil
		}
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
