package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent api startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082601)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS document_records (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	category TEXT NOT NULL,
	canonical_name TEXT NOT NULL,
	abbreviation TEXT NOT NULL DEFAULT '',
	document_number TEXT NOT NULL DEFAULT '',
	issue_date TEXT NOT NULL DEFAULT '',
	valid_date TEXT NOT NULL DEFAULT '',
	last_endorsement TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL DEFAULT '',
	original_file_id TEXT NOT NULL DEFAULT '',
	summary_file_id TEXT NOT NULL DEFAULT '',
	folder_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_document_records_owner ON document_records(owner_id);
CREATE INDEX IF NOT EXISTS idx_document_records_created_at ON document_records(created_at DESC);

CREATE TABLE IF NOT EXISTS abbreviation_mappings (
	canonical_key TEXT PRIMARY KEY,
	abbreviation TEXT NOT NULL,
	usage_count BIGINT NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
