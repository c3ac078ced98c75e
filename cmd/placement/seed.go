package main

import (
	"fmt"

	"github.com/jonathan/placement-cell/internal/config"
	"github.com/jonathan/placement-cell/internal/observability"
	"github.com/spf13/cobra"
)

var seedPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create demo accounts, a demo student and demo companies",
	Long:  `Create the demo admin, officer and student logins plus sample companies. Records that already exist are skipped.`,
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", "demo123", "Password shared by the demo accounts")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	if seedPassword == "" {
		return fmt.Errorf("--password must not be empty")
	}

	passwords, err := config.NewPasswordConfig()
	if err != nil {
		return fmt.Errorf("failed to create password config: %w", err)
	}
	hash, err := passwords.HashPassword(seedPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	database, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer database.Close()

	if _, err := database.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	report, err := database.Seed(cmd.Context(), hash)
	if err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintSeedReport(report.Users, report.Students, report.Companies)
	return nil
}
