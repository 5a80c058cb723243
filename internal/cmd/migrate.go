package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"brigade/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	logger.Info("migration complete", "component", "cmd", "driver", cfg.Database.Driver)
	fmt.Fprintln(cmd.OutOrStdout(), "database migrated")
	return nil
}
