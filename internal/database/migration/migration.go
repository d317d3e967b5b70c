package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  email      TEXT        NOT NULL UNIQUE,
  name       TEXT        NOT NULL DEFAULT '',
  picture    TEXT        NOT NULL DEFAULT '',
  credits    INTEGER     NOT NULL DEFAULT 0 CHECK (credits >= 0),
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_conclusions",
		SQL: `CREATE TABLE IF NOT EXISTS conclusions (
  id              UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id         UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  type            TEXT        NOT NULL CHECK (type IN ('jaf', 'penal')),
  parties         JSONB       NOT NULL DEFAULT '{}'::jsonb,
  faits           TEXT        NOT NULL,
  demandes        TEXT        NOT NULL,
  conclusion_text TEXT        NOT NULL DEFAULT '',
  status          TEXT        NOT NULL DEFAULT 'draft',
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_conclusions_user_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_conclusions_user_created_at ON conclusions (user_id, created_at DESC);`,
	},
	{
		// The numbering constraint is deferred so renumbering inside one transaction
		// may pass through intermediate duplicates.
		Name: "create_table_pieces",
		SQL: `CREATE TABLE IF NOT EXISTS pieces (
  id                UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  conclusion_id     UUID        NOT NULL REFERENCES conclusions (id) ON DELETE CASCADE,
  user_id           UUID        NOT NULL,
  numero            INTEGER     NOT NULL CHECK (numero > 0),
  nom               TEXT        NOT NULL,
  description       TEXT        NOT NULL DEFAULT '',
  filename          TEXT        NOT NULL UNIQUE,
  original_filename TEXT        NOT NULL,
  file_size         BIGINT      NOT NULL CHECK (file_size >= 0),
  mime_type         TEXT        NOT NULL,
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT pieces_conclusion_numero_key UNIQUE (conclusion_id, numero) DEFERRABLE INITIALLY DEFERRED
);`,
	},
	{
		Name: "create_index_pieces_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_pieces_user_id ON pieces (user_id);`,
	},
	{
		Name: "create_table_code_civil_articles",
		SQL: `CREATE TABLE IF NOT EXISTS code_civil_articles (
  id        TEXT PRIMARY KEY,
  numero    TEXT NOT NULL,
  titre     TEXT NOT NULL,
  contenu   TEXT NOT NULL,
  categorie TEXT NOT NULL
);`,
	},
	{
		Name: "create_index_code_civil_articles_categorie",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_code_civil_articles_categorie ON code_civil_articles (categorie);`,
	},
	{
		Name: "create_table_conclusion_templates",
		SQL: `CREATE TABLE IF NOT EXISTS conclusion_templates (
  id                  TEXT  PRIMARY KEY,
  name                TEXT  NOT NULL,
  description         TEXT  NOT NULL DEFAULT '',
  type                TEXT  NOT NULL,
  category            TEXT  NOT NULL DEFAULT '',
  faits_template      TEXT  NOT NULL DEFAULT '',
  demandes_template   TEXT  NOT NULL DEFAULT '',
  articles_pertinents JSONB NOT NULL DEFAULT '[]'::jsonb
);`,
	},
	{
		Name: "create_index_conclusion_templates_type",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_conclusion_templates_type ON conclusion_templates (type);`,
	},
}

// EnsureMigrated checks if the 'pieces' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *zap.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	query := "SELECT to_regclass('public.pieces') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("reason", "schema already exists"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
