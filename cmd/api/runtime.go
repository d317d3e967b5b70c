package main

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"conclusio/internal/config"
	"conclusio/internal/database"
	"conclusio/internal/database/migration"
	"conclusio/internal/logging"
)

// runtime bundles what every subcommand opens first.
type runtime struct {
	cfg    *config.AppConfig
	logger *zap.Logger
	db     *sql.DB
}

func openRuntime() (*runtime, error) {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &runtime{cfg: cfg, logger: logger, db: db}, nil
}

func (r *runtime) Close() {
	_ = r.db.Close()
	_ = r.logger.Sync()
}

// migrateAndSeed creates the schema when missing and loads the reference data.
func (r *runtime) migrateAndSeed(ctx context.Context) error {
	if err := migration.EnsureMigrated(ctx, r.db, r.logger, r.cfg.Database.Host); err != nil {
		return err
	}
	data, err := migration.LoadReferenceData()
	if err != nil {
		return err
	}
	return migration.Seed(ctx, r.db, r.logger, data)
}
