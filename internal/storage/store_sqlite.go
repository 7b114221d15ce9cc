package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

var sqliteDialect = dialect{
	schema: `
		CREATE TABLE IF NOT EXISTS kv (
			ns         TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (ns, key)
		)`,
	get: `SELECT value FROM kv WHERE ns = ? AND key = ?`,
	upsert: `
		INSERT INTO kv (ns, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (ns, key) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at`,
	del: `DELETE FROM kv WHERE ns = ? AND key = ?`,
}

// OpenSQLite opens (or creates) an embedded database file. dsn is a file
// path or ":memory:".
func OpenSQLite(ctx context.Context, dsn string) (*SQLStore, error) {
	if dsn == "" {
		dsn = "bloomstore.db"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer keeps SQLITE_BUSY away and makes :memory: share one database
	db.SetMaxOpenConns(1)

	s, err := newSQLStore(ctx, db, sqliteDialect)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return s, nil
}
