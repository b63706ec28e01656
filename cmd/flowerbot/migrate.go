package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abdulachik/flowerbot/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run journal migrations",
	Long:  `Run all pending migrations to set up or update the journal schema.`,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if journalPath == "" {
		return errors.New("journal is disabled")
	}

	slog.Info("connecting to journal", "path", journalPath)
	store, err := db.NewStore(ctx, journalPath)
	if err != nil {
		return fmt.Errorf("connect to journal: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("migrations completed successfully")
	return nil
}
