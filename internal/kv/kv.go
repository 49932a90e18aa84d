// Package kv provides the string key-value persistence used by the favorites
// store. Backends: in-memory, SQLite, a JSON file, and PostgreSQL.
package kv

import (
	"errors"
	"fmt"
	"strings"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("kv: store closed")

// Store is a string key-value store. Implementations are safe for concurrent use.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Close releases any resources held by the store.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Open creates a store for the named backend. dsn is a file path for sqlite
// and file, a connection string for postgres, and ignored for memory.
func Open(backend, dsn string) (Store, error) {
	switch strings.ToLower(backend) {
	case BackendMemory, "":
		return NewMemory(), nil
	case BackendSQLite:
		s, err := OpenSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendFile:
		f, err := OpenFile(dsn)
		if err != nil {
			return nil, err
		}
		return f, nil
	case BackendPostgres:
		p, err := OpenPostgres(dsn)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("kv: unknown backend %q", backend)
}
