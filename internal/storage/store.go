// Package storage is the per-visitor key-value store that plays the role of
// browser local storage. A namespace is one visitor session; keys inside it
// hold opaque values (JSON documents in practice).
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

var (
	ErrUnknownDriver = errors.New("unknown storage driver")
	ErrEmptyKey      = errors.New("empty namespace or key")
)

// Store is a namespaced key-value store.
type Store interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, ns, key string) ([]byte, bool, error)
	Set(ctx context.Context, ns, key string, val []byte) error
	Delete(ctx context.Context, ns, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Open builds a Store for the configured driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverMemory:
		return NewMemStore(), nil
	case DriverSQLite:
		return OpenSQLite(ctx, dsn)
	case DriverPostgres, "pgx":
		return OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func validKey(ns, key string) error {
	if ns == "" || key == "" {
		return ErrEmptyKey
	}
	return nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
