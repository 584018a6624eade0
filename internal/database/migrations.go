package database

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// gooseLogger routes goose output through zap
type gooseLogger struct {
	sugar *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.sugar.Fatalf(format, v...)
}

func configureGoose(logger *zap.Logger) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{sugar: logger.Named("goose").Sugar()})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// RunMigrations executes all pending database migrations
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	if err := configureGoose(logger); err != nil {
		return err
	}

	logger.Info("Checking for pending migrations...", zap.String("dir", migrationsDir))

	if err := goose.Up(db, migrationsDir); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Migrations completed successfully")
	return nil
}

// RollbackMigration reverts the most recently applied migration
func RollbackMigration(db *sql.DB, logger *zap.Logger) error {
	if err := configureGoose(logger); err != nil {
		return err
	}

	if err := goose.Down(db, migrationsDir); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// GetMigrationStatus logs the applied/pending state of every migration
func GetMigrationStatus(db *sql.DB, logger *zap.Logger) error {
	if err := configureGoose(logger); err != nil {
		return err
	}

	return goose.Status(db, migrationsDir)
}

// MigrationVersion returns the version of the last applied migration
func MigrationVersion(db *sql.DB, logger *zap.Logger) (int64, error) {
	if err := configureGoose(logger); err != nil {
		return 0, err
	}

	return goose.GetDBVersion(db)
}
