package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var postgresDialect = dialect{
	schema: `
		CREATE TABLE IF NOT EXISTS kv (
			ns         TEXT        NOT NULL,
			key        TEXT        NOT NULL,
			value      BYTEA       NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (ns, key)
		)`,
	get: `SELECT value FROM kv WHERE ns = $1 AND key = $2`,
	upsert: `
		INSERT INTO kv (ns, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ns, key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
	del: `DELETE FROM kv WHERE ns = $1 AND key = $2`,
}

func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := withTimeout(ctx, pingTimeout, db.PingContext); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s, err := newSQLStore(ctx, db, postgresDialect)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init postgres schema: %w", err)
	}
	return s, nil
}
