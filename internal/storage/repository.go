// Package storage defines the backend-agnostic contract used to mirror the
// output tables into a database, plus the factory backends register with.
//
// Backends self-register in init; import storage/all to enable every
// built-in kind.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Repository is the minimal surface the loader needs.
type Repository interface {
	// Exec runs a statement with no result set.
	Exec(ctx context.Context, sql string) error

	// ReplaceTable drops table if it exists and creates it with one nullable
	// TEXT column per entry in columns, in order.
	ReplaceTable(ctx context.Context, table string, columns []string) error

	// CopyFrom bulk-inserts rows aligned to columns and returns the number
	// of rows the backend reports as written.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// Close releases connections.
	Close()
}

// Config selects and configures a backend.
type Config struct {
	Kind string
	DSN  string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. A later call for the same
// kind replaces the earlier factory.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// ListKinds returns the registered kinds, sorted.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported kind %q (registered: %v)", cfg.Kind, ListKinds())
	}
	return f(ctx, cfg)
}
