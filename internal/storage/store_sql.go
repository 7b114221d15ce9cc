package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// dialect holds the statements that differ between SQL backends.
type dialect struct {
	schema string
	get    string
	upsert string
	del    string
}

// SQLStore keeps every (namespace, key) pair in a single kv table.
type SQLStore struct {
	db *sql.DB
	q  dialect
}

func newSQLStore(ctx context.Context, db *sql.DB, q dialect) (*SQLStore, error) {
	s := &SQLStore{db: db, q: q}

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := db.ExecContext(ctx, q.schema)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Get(ctx context.Context, ns, key string) ([]byte, bool, error) {
	if err := validKey(ns, key); err != nil {
		return nil, false, err
	}

	var v []byte
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, s.q.get, ns, key).Scan(&v)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *SQLStore) Set(ctx context.Context, ns, key string, val []byte) error {
	if err := validKey(ns, key); err != nil {
		return err
	}

	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, s.q.upsert, ns, key, val, time.Now().UTC())
		return err
	})
}

func (s *SQLStore) Delete(ctx context.Context, ns, key string) error {
	if err := validKey(ns, key); err != nil {
		return err
	}

	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, s.q.del, ns, key)
		return err
	})
}
