package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database/postgres"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Apply pending schema migrations to the attendance database and
print the applied versions. The serve command migrates automatically
on startup; this command is for running migrations ahead of a deploy.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()

	ctx := context.Background()
	if err := pool.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	versions, err := pool.MigrationsApplied(ctx)
	if err != nil {
		return fmt.Errorf("listing applied migrations: %w", err)
	}

	fmt.Printf("Schema up to date, %d migration(s) applied:\n", len(versions))
	for _, v := range versions {
		fmt.Printf("  %s\n", v)
	}
	return nil
}
