// Package store provides the durable key-value storage the browser snapshot
// is written to.
//
// Backends:
//   - memory: process-local map, for tests and throwaway runs
//   - file:   one file per key, written atomically, optionally gzip-compressed
//   - sqlite: a single kv table in an SQLite database (modernc.org/sqlite)
//
// Example Usage:
//
//	st, err := store.New(store.Config{Driver: "file", Path: "/var/lib/browser"})
//	err = st.Set(ctx, "browser", data)
//	data, err = st.Get(ctx, "browser")
package store

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Get when the key has never been written
	ErrNotFound = errors.New("key not found")
	// ErrStorageWriteFailure wraps every failed Set
	ErrStorageWriteFailure = errors.New("storage write failure")
	ErrUnknownDriver       = errors.New("unknown storage driver")
)

// Store is a key-value byte store
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Close() error
}

// Drivers
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Config selects and configures a backend
type Config struct {
	Driver   string
	Path     string
	Compress bool
}

// New opens the backend named by cfg.Driver
func New(cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverFile:
		return NewFile(cfg.Path, cfg.Compress)
	case DriverSQLite:
		return NewSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func writeFailure(key string, err error) error {
	return fmt.Errorf("%w: key %s: %v", ErrStorageWriteFailure, key, err)
}
