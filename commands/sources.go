package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/penwyp/go-cost-tracker/internal/core/model"
	"github.com/penwyp/go-cost-tracker/internal/presentation/formatter"
	"github.com/penwyp/go-cost-tracker/internal/store"
	"github.com/penwyp/go-cost-tracker/internal/util"
)

var (
	addName        string
	addType        string
	addProvider    string
	addBilling     string
	addCost        float64
	addCurrency    string
	addStartDate   string
	addEndDate     string
	addDescription string
	addDisabled    bool

	transferFile string
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage cost sources",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all cost sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		f, err := formatter.New(outputFormat)
		if err != nil {
			return err
		}
		report := formatter.Report{
			Sources:     a.store.ExportSources(),
			Currency:    a.store.DefaultCurrency(),
			GeneratedAt: util.GetTimeProvider().Now(),
		}
		return f.Format(cmd.OutOrStdout(), report)
	},
}

var sourcesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a cost source",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		currency := addCurrency
		if currency == "" {
			currency = a.store.DefaultCurrency()
		}
		candidate := model.CostSource{
			Name:        addName,
			Type:        model.SourceType(addType),
			Provider:    addProvider,
			BillingMode: model.BillingMode(addBilling),
			Cost:        addCost,
			Currency:    currency,
			StartDate:   addStartDate,
			EndDate:     addEndDate,
			Description: addDescription,
		}
		if fieldErrs := model.ValidateSource(candidate); len(fieldErrs) > 0 {
			messages := make([]string, len(fieldErrs))
			for i, fe := range fieldErrs {
				messages[i] = fe.Error()
			}
			return fmt.Errorf("invalid source:\n  %s", strings.Join(messages, "\n  "))
		}

		id := a.store.AddSource(store.SourceInput{
			Name:        candidate.Name,
			Type:        candidate.Type,
			Provider:    candidate.Provider,
			BillingMode: candidate.BillingMode,
			Cost:        candidate.Cost,
			Currency:    candidate.Currency,
			StartDate:   candidate.StartDate,
			EndDate:     candidate.EndDate,
			IsEnabled:   !addDisabled,
			Description: candidate.Description,
		})
		fmt.Fprintf(cmd.OutOrStdout(), "Added source %s\n", id)
		return nil
	},
}

func setEnabledCmd(use, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if enabled {
				a.store.BulkEnable(args)
			} else {
				a.store.BulkDisable(args)
			}
			return nil
		},
	}
}

var sourcesDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete cost sources",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		a.store.BulkDelete(args)
		return nil
	},
}

var sourcesDuplicateCmd = &cobra.Command{
	Use:   "duplicate <id>",
	Short: "Duplicate a cost source (the copy starts disabled)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		newID := a.store.DuplicateSource(args[0])
		if newID == "" {
			return fmt.Errorf("no source with id %s", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", newID)
		return nil
	},
}

var sourcesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all cost sources as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		data, err := sonic.MarshalIndent(a.store.ExportSources(), "", "  ")
		if err != nil {
			return err
		}
		if transferFile == "" {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		return os.WriteFile(transferFile, data, 0644)
	},
}

var sourcesImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import cost sources from a JSON or CSV file (fresh ids are assigned)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if transferFile == "" {
			return fmt.Errorf("--file is required")
		}
		data, err := os.ReadFile(transferFile)
		if err != nil {
			return err
		}

		var records []model.CostSource
		if strings.EqualFold(filepath.Ext(transferFile), ".csv") {
			records, err = formatter.ParseCSV(bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("parse %s: %w", transferFile, err)
			}
		} else if err := sonic.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("parse %s: %w", transferFile, err)
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		a.store.ImportSources(records)
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d sources\n", len(records))
		return nil
	},
}

func init() {
	sourcesAddCmd.Flags().StringVar(&addName, "name", "", "Source name (required)")
	sourcesAddCmd.Flags().StringVar(&addType, "type", string(model.TypeAPI),
		"Source type (api, subscription, hardware, one-time)")
	sourcesAddCmd.Flags().StringVar(&addProvider, "provider", "", "Provider label")
	sourcesAddCmd.Flags().StringVar(&addBilling, "billing", string(model.BillingMonthly),
		"Billing mode (daily, monthly, yearly, one-time)")
	sourcesAddCmd.Flags().Float64Var(&addCost, "cost", 0, "Cost amount (required)")
	sourcesAddCmd.Flags().StringVar(&addCurrency, "currency", "", "Currency (CNY, USD, EUR); defaults to the store's currency")
	sourcesAddCmd.Flags().StringVar(&addStartDate, "start", "", "Active from (YYYY-MM-DD)")
	sourcesAddCmd.Flags().StringVar(&addEndDate, "end", "", "Active until (YYYY-MM-DD)")
	sourcesAddCmd.Flags().StringVar(&addDescription, "description", "", "Free-text description")
	sourcesAddCmd.Flags().BoolVar(&addDisabled, "disabled", false, "Create the source disabled")

	sourcesExportCmd.Flags().StringVar(&transferFile, "file", "", "Write to file instead of stdout")
	sourcesImportCmd.Flags().StringVar(&transferFile, "file", "", "JSON file to import")

	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesAddCmd)
	sourcesCmd.AddCommand(setEnabledCmd("enable", "Enable cost sources", true))
	sourcesCmd.AddCommand(setEnabledCmd("disable", "Disable cost sources", false))
	sourcesCmd.AddCommand(sourcesDeleteCmd)
	sourcesCmd.AddCommand(sourcesDuplicateCmd)
	sourcesCmd.AddCommand(sourcesExportCmd)
	sourcesCmd.AddCommand(sourcesImportCmd)
}
