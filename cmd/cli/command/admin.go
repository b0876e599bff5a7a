package command

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"bloghub/database"
	"bloghub/database/seed"
	"bloghub/internal/config"
	"bloghub/internal/jobs"
	"bloghub/internal/microservices/http-api/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(_ context.Context, db *gorm.DB, _ *config.Config, log *slog.Logger) error {
			return database.Migrate(db, log)
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed permissions, roles and the bootstrap administrator",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(ctx context.Context, db *gorm.DB, cfg *config.Config, log *slog.Logger) error {
			var admin *seed.Admin
			if cfg.AdminEmail != "" {
				admin = &seed.Admin{Email: cfg.AdminEmail, Password: cfg.AdminPassword}
			}
			if err := seed.Run(ctx, db, admin, log); err != nil {
				return err
			}
			fmt.Println("✓ Seed complete")
			return nil
		})
	},
}

var reapCmd = &cobra.Command{
	Use:   "reap",
	Short: "Soft-delete stale posts without confirmed comments (one pass)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(ctx context.Context, db *gorm.DB, cfg *config.Config, log *slog.Logger) error {
			reaper := jobs.NewReaper(repository.NewPostRepository(db), cfg.ReaperMaxAge, log)
			n, err := reaper.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Reaped %d stale post(s)\n", n)
			return nil
		})
	},
}

// withDatabase loads the server configuration, opens the database and runs fn.
func withDatabase(fn func(ctx context.Context, db *gorm.DB, cfg *config.Config, log *slog.Logger) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := cfg.NewLogger(os.Stderr)

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	return fn(context.Background(), db, cfg, log)
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(reapCmd)
}
