package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jinzhu/gorm"
	"github.com/spf13/cobra"

	"brigade/internal/config"
	"brigade/internal/database"
)

var (
	configPath  string
	port        int
	metricsPort int
)

var rootCmd = &cobra.Command{
	Use:   "brigade",
	Short: "Brigade - restaurant operations analytics",
	Long: `Brigade turns a restaurant's orders, kitchen timings, stock movements and
reservations into inventory predictions, kitchen bottlenecks, menu engineering,
reservation insights, revenue forecasts and a single operations health score.

Run it as a server to expose the insight endpoints, or use the CLI commands to
migrate and seed a database and print reports.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().IntVar(&port, "port", 8080, "API server port")
	rootCmd.PersistentFlags().IntVar(&metricsPort, "metrics-port", 9090, "Metrics server port")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies any flags set on the command line
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}
	if cmd.Flags().Changed("metrics-port") {
		cfg.Server.MetricsPort = metricsPort
	}
	return cfg, cfg.NewLogger(cmd.ErrOrStderr()), nil
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
