// Package migration bootstraps the asset schema on an empty database.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"assetvaluer/internal/logger"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is checked before migrating; when it exists the schema is assumed current.
const sentinelTable = "public.assets"

var steps = []migrationStep{
	{
		Name: "create_table_assets",
		SQL: `CREATE TABLE IF NOT EXISTS assets (
  id           UUID        PRIMARY KEY,
  title        TEXT        NOT NULL,
  body         TEXT        NOT NULL DEFAULT '',
  excerpt      TEXT        NOT NULL DEFAULT '',
  thumbnail_id UUID,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_asset_meta",
		SQL: `CREATE TABLE IF NOT EXISTS asset_meta (
  asset_id   UUID NOT NULL REFERENCES assets (id) ON DELETE CASCADE,
  meta_key   TEXT NOT NULL,
  meta_value TEXT NOT NULL,
  PRIMARY KEY (asset_id, meta_key)
);`,
	},
	{
		Name: "create_table_asset_attachments",
		SQL: `CREATE TABLE IF NOT EXISTS asset_attachments (
  id           UUID        PRIMARY KEY,
  asset_id     UUID        NOT NULL REFERENCES assets (id) ON DELETE CASCADE,
  filename     TEXT        NOT NULL,
  storage_path TEXT        NOT NULL UNIQUE,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  content_type TEXT        NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "add_fk_assets_thumbnail",
		SQL: `ALTER TABLE assets
  ADD CONSTRAINT fk_assets_thumbnail
  FOREIGN KEY (thumbnail_id) REFERENCES asset_attachments (id) ON DELETE SET NULL;`,
	},
	{
		Name: "create_index_assets_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_assets_created_at ON assets (created_at DESC, id DESC);`,
	},
	{
		Name: "create_index_asset_meta_key_value",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_asset_meta_key_value ON asset_meta (meta_key, meta_value);`,
	},
	{
		Name: "create_index_asset_attachments_asset_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_asset_attachments_asset_id ON asset_attachments (asset_id);`,
	},
}

// EnsureMigrated runs every step when the assets table does not exist yet. All steps share
// one transaction, so a failed step leaves no partial schema behind and the sentinel stays
// absent for the next attempt.
func EnsureMigrated(ctx context.Context, db *sql.DB, log logger.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinelTable).Scan(&exists)
	if err != nil {
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

	log.Info("db_migration_start", zap.String("status", "in_progress"), zap.Int("steps", len(steps)))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to begin migration: %w", err)
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
			_ = tx.Rollback()
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

	if err := tx.Commit(); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
