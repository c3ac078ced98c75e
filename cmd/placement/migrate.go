package main

import (
	"fmt"

	"github.com/jonathan/placement-cell/internal/observability"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	database, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer database.Close()

	applied, err := database.Migrate(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintMigrations(applied)
	return nil
}
