package storage

import (
	"database/sql"
	"fmt"
	"gomarket_sync/pkg/dbconnect/migration"
	"gomarket_sync/pkg/logger"
)

const (
	MarketsyncSchemaMigration  = "marketsync.schema"
	MarketsyncRunsMigration    = "marketsync.runs"
	MarketsyncBatchesMigration = "marketsync.batches"
)

// Migrations возвращает миграции журнала в порядке применения.
func Migrations(log logger.Logger) []migration.MigrationInterface {
	return []migration.MigrationInterface{
		&MigrationsSchema{},
		&tracked{name: MarketsyncSchemaMigration, log: log, query: `CREATE SCHEMA IF NOT EXISTS marketsync;`},
		&tracked{name: MarketsyncRunsMigration, log: log, query: `
			CREATE TABLE IF NOT EXISTS marketsync.runs (
				run_id UUID PRIMARY KEY,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				finished_at TIMESTAMP WITH TIME ZONE,
				status VARCHAR(16) NOT NULL,
				error TEXT
			);`},
		&tracked{name: MarketsyncBatchesMigration, log: log, query: `
			CREATE TABLE IF NOT EXISTS marketsync.batches (
				id SERIAL PRIMARY KEY,
				run_id UUID NOT NULL REFERENCES marketsync.runs(run_id) ON DELETE CASCADE,
				target VARCHAR(64) NOT NULL,
				kind VARCHAR(16) NOT NULL,
				chunk INT NOT NULL,
				size INT NOT NULL,
				submitted_at TIMESTAMP WITH TIME ZONE NOT NULL
			);
			CREATE INDEX IF NOT EXISTS marketsync_batches_run_idx ON marketsync.batches(run_id);`},
	}
}

type MigrationsSchema struct{}

func (m *MigrationsSchema) UpMigration(db *sql.DB) error {
	_, err := db.Exec(`CREATE SCHEMA IF NOT EXISTS migrations;`)
	if err != nil {
		return fmt.Errorf("failed to create migrations schema: %w", err)
	}
	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS migrations.migrations (
            id SERIAL PRIMARY KEY,
            time TIMESTAMP NOT NULL,
            name VARCHAR(255) UNIQUE NOT NULL
        );
    `)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// tracked -- миграция, которая выполняется один раз и отмечается в migrations.migrations.
type tracked struct {
	name  string
	query string
	log   logger.Logger
}

func (m *tracked) UpMigration(db *sql.DB) error {
	var migrationExists bool
	err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM migrations.migrations WHERE name = $1)", m.name).Scan(&migrationExists)
	if err != nil {
		return fmt.Errorf("failed to check migration status: %w", err)
	}
	if migrationExists {
		m.log.Debug("Migration '%s' already completed. Skipping.", m.name)
		return nil
	}

	if _, err = db.Exec(m.query); err != nil {
		return fmt.Errorf("failed to apply %s: %w", m.name, err)
	}

	_, err = db.Exec("INSERT INTO migrations.migrations (name, time) VALUES ($1, current_timestamp)", m.name)
	if err != nil {
		return fmt.Errorf("failed to mark '%s' migration as complete: %w", m.name, err)
	}

	m.log.Info("Migration '%s' completed successfully.", m.name)
	return nil
}
