// Package main provides the entry point for the placement cell service and its admin commands.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/placement-cell/internal/config"
	"github.com/jonathan/placement-cell/internal/db"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var dbURL string

var rootCmd = &cobra.Command{
	Use:          "placement",
	Short:        "Training and placement cell service",
	Long:         "placement tracks students, recruiting companies and job applications for a college placement cell, and evaluates student eligibility against company requirements.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "PostgreSQL connection URL (overrides configuration)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// databaseURL resolves the connection URL from --db-url or the loaded configuration.
func databaseURL() (string, error) {
	if dbURL != "" {
		return dbURL, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg.DatabaseURL, nil
}

// connect opens the database for the admin commands. Callers must Close it.
func connect(ctx context.Context) (*db.DB, error) {
	url, err := databaseURL()
	if err != nil {
		return nil, err
	}
	database, err := db.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}
