package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/penwyp/go-cost-tracker/internal/core/model"
	costsync "github.com/penwyp/go-cost-tracker/internal/sync"
	"github.com/penwyp/go-cost-tracker/internal/util"
)

var syncDays int

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull live usage from every enabled provider",
	Long: `sync fetches token usage from each enabled provider concurrently,
normalizes it, prices it against the configured rate cards, and caches the
result locally. One provider failing does not abort the others.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		configs := a.cfg.EnabledProviders()
		if len(configs) == 0 {
			return fmt.Errorf("no enabled providers in %s", configPath)
		}

		service := costsync.NewService(a.registry, a.storage, a.pricing)
		to := util.GetTimeProvider().Now()
		from := to.AddDate(0, 0, -syncDays)

		result := service.SyncUsage(cmd.Context(), configs, from, to)

		if outputFormat == "json" {
			data, err := sonic.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		fmt.Fprint(cmd.OutOrStdout(), formatSyncSummary(result, a.store.DefaultCurrency()))
		return nil
	},
}

// formatSyncSummary renders the human-readable sync outcome, providers in
// stable order. Rate cards price in USD; the total converts to the display
// currency.
func formatSyncSummary(result *costsync.Result, displayCurrency string) string {
	var b strings.Builder

	names := make([]string, 0, len(result.Usage))
	for name := range result.Usage {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		records := result.Usage[name]
		tokens := 0
		for _, r := range records {
			tokens += r.TotalTokens
		}
		fmt.Fprintf(&b, "%s: %d usage records (%s tokens)\n", name, len(records), util.FormatNumber(tokens))
	}

	failed := make([]string, 0, len(result.Errors))
	for name := range result.Errors {
		failed = append(failed, name)
	}
	sort.Strings(failed)
	for _, name := range failed {
		fmt.Fprintf(&b, "%s: FAILED - %s\n", name, result.Errors[name])
	}

	total := util.ConvertCurrency(result.Costs.Total, model.CurrencyUSD, displayCurrency)
	fmt.Fprintf(&b, "Total token cost: %s\n", util.FormatCurrency(total, displayCurrency))
	return b.String()
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Inspect provider configuration",
}

var providersTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Health-check every configured provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if len(a.cfg.Providers) == 0 {
			return fmt.Errorf("no providers configured in %s", configPath)
		}

		// Field-level validation first; connection tests only for configs
		// that pass it.
		var testable []model.ProviderConfig
		for _, cfg := range a.cfg.Providers {
			adapter, err := a.registry.Get(cfg.Provider)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", cfg.Provider, err)
				continue
			}
			if fieldErrs := adapter.ValidateConfig(cfg); len(fieldErrs) > 0 {
				for _, fe := range fieldErrs {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: invalid config - %s\n", cfg.Provider, fe.Error())
				}
				continue
			}
			testable = append(testable, cfg)
		}

		service := costsync.NewService(a.registry, a.storage, a.pricing)
		results := service.TestConnections(cmd.Context(), testable)
		for name, err := range results {
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: FAILED - %v\n", name, err)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: OK\n", name)
			}
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().IntVar(&syncDays, "days", 7, "How many days of usage to fetch")
	providersCmd.AddCommand(providersTestCmd)
}
