// Package kv provides the durable key-value store the trip planner persists to.
// Values are opaque byte strings; every collection is written as one JSON
// snapshot under a fixed key, so backends need nothing beyond get/set/delete.
package kv

import (
	"context"
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned by Get when no value is stored under the key.
var ErrKeyNotFound = errors.New("kv: key not found")

// Store is the minimal durable key-value contract.
// Implementations must make Set atomic from a reader's point of view: a
// concurrent Get sees either the previous value or the new one, never a mix.
type Store interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Driver names a Store backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Options selects and configures a backend for Open.
type Options struct {
	Driver      Driver
	SQLitePath  string
	DatabaseURL string
}

// Open constructs the Store named by opts.Driver.
// The returned close function releases the backend's resources and is never nil.
func Open(ctx context.Context, opts Options) (Store, func() error, error) {
	switch opts.Driver {
	case DriverMemory:
		return NewMemory(), func() error { return nil }, nil
	case DriverSQLite, "":
		s, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("kv.Open: %w", err)
		}
		return s, s.Close, nil
	case DriverPostgres:
		s, err := OpenPostgres(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("kv.Open: %w", err)
		}
		return s, func() error { s.Close(); return nil }, nil
	default:
		return nil, nil, fmt.Errorf("kv.Open: unknown driver %q", opts.Driver)
	}
}
