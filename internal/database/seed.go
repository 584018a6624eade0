package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"go.uber.org/zap"
)

//go:embed seed/seed.sql
var seedSQL string

// Seed loads the demo catalog and promo codes in a single transaction. It
// can be re-run; existing rows are left untouched.
func Seed(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	logger.Info("Running seed script")

	if _, err := tx.ExecContext(ctx, seedSQL); err != nil {
		return fmt.Errorf("failed to execute seed script: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}

	logger.Info("Database seeded successfully")
	return nil
}
