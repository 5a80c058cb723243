package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"brigade/internal/analytics"
	"brigade/internal/store"
)

var (
	reportRestaurant uint
	reportModule     string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print an analytics report as JSON",
	Long: `Report loads a restaurant's data and prints one report as indented JSON.
--module is one of: dashboard, inventory, kitchen, menu, reservations, revenue.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().UintVar(&reportRestaurant, "restaurant", 1, "Restaurant ID")
	reportCmd.Flags().StringVar(&reportModule, "module", "dashboard", "Report to print")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	engine := analytics.NewEngine(
		store.New(db, cfg.Analytics.LookbackDays, logger),
		cfg.Analytics.Policy,
		analytics.WithLogger(logger),
	)

	report, err := buildReport(cmd.Context(), engine, reportModule, reportRestaurant)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func buildReport(ctx context.Context, engine *analytics.Engine, module string, restaurantID uint) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	switch module {
	case "dashboard":
		return engine.Dashboard(ctx, restaurantID)
	case string(analytics.ModuleInventory):
		return engine.Inventory(ctx, restaurantID)
	case string(analytics.ModuleKitchen):
		return engine.Kitchen(ctx, restaurantID)
	case string(analytics.ModuleMenu):
		return engine.Menu(ctx, restaurantID)
	case string(analytics.ModuleReservations):
		return engine.Reservations(ctx, restaurantID)
	case string(analytics.ModuleRevenue):
		return engine.Revenue(ctx, restaurantID)
	default:
		return nil, fmt.Errorf("unknown module %q", module)
	}
}
