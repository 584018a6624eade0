package commands

import (
	"context"
	"fmt"

	"megashop/cmd/megashopctl/output"
	"megashop/internal/database"
	"megashop/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run the embedded schema migrations against the configured database.

Subcommands:
  up       - Apply pending migrations
  down     - Roll back the last migration
  status   - Show migration status
  version  - Print the current schema version`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(commandContext(cmd), func(db database.Service, log *zap.Logger) error {
			if err := database.RunMigrations(db.DB(), log); err != nil {
				return err
			}
			output.Success("Migrations applied")
			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(commandContext(cmd), func(db database.Service, log *zap.Logger) error {
			if err := database.RollbackMigration(db.DB(), log); err != nil {
				return err
			}
			output.Success("Rolled back one migration")
			return nil
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(commandContext(cmd), func(db database.Service, log *zap.Logger) error {
			return database.GetMigrationStatus(db.DB(), log)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(commandContext(cmd), func(db database.Service, log *zap.Logger) error {
			version, err := database.MigrationVersion(db.DB(), log)
			if err != nil {
				return err
			}
			if jsonOutput {
				return output.JSON(map[string]int64{"version": version})
			}
			output.Info("Schema version %d", version)
			return nil
		})
	},
}

// seedCmd loads the demo data
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo categories, products and promo codes",
	Long: `Load the demo catalog and promo codes (including SAVE10 and WELCOME20).
Existing rows are left untouched, so seeding twice is safe.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(commandContext(cmd), func(db database.Service, log *zap.Logger) error {
			if err := database.Seed(commandContext(cmd), db.DB(), log); err != nil {
				return err
			}
			output.Success("Database seeded")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, seedCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd, migrateVersionCmd)
}

// withDatabase opens the pool for one operator command and closes it after
func withDatabase(ctx context.Context, fn func(db database.Service, log *zap.Logger) error) error {
	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(db, log)
}
