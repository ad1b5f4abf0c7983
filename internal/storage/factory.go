// Package storage selects and opens the kv.Store backend the host runs on.
package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/edvin/equipreg/internal/kv"
	"github.com/edvin/equipreg/internal/kv/postgres"
	"github.com/edvin/equipreg/internal/kv/sqlite"
	"github.com/edvin/equipreg/internal/metrics"
)

// Provider constants define the available store backends.
const (
	ProviderMemory   = "memory"
	ProviderPostgres = "postgres"
	ProviderSQLite   = "sqlite"
)

type Constructor func(ctx context.Context, config string) (kv.Store, error)

// Config holds the connection strings for every backend; only the one matching
// Provider is used.
type Config struct {
	Provider    string
	DatabaseURL string // e.g. "postgres://registry@localhost:5432/registry"
	SQLitePath  string // e.g. "/var/lib/equipreg/registry.db"
}

// DefaultConstructors returns the built-in backends keyed by provider name.
func DefaultConstructors() map[string]Constructor {
	return map[string]Constructor{
		ProviderMemory: func(ctx context.Context, _ string) (kv.Store, error) {
			return kv.NewMemoryStore(), nil
		},
		ProviderPostgres: func(ctx context.Context, databaseURL string) (kv.Store, error) {
			store, err := postgres.Open(ctx, databaseURL)
			if err != nil {
				return nil, err
			}
			metrics.RegisterPgxPoolMetrics(prometheus.DefaultRegisterer, store.Pool())
			return store, nil
		},
		ProviderSQLite: func(ctx context.Context, path string) (kv.Store, error) {
			return sqlite.Open(path)
		},
	}
}

// Open builds the store for cfg.Provider using constructors.
func Open(ctx context.Context, cfg Config, constructors map[string]Constructor) (kv.Store, error) {
	constructor, ok := constructors[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported store provider %q, available: %v", cfg.Provider, providerNames(constructors))
	}

	var configString string
	switch cfg.Provider {
	case ProviderPostgres:
		configString = cfg.DatabaseURL
	case ProviderSQLite:
		configString = cfg.SQLitePath
	}

	store, err := constructor(ctx, configString)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Provider, err)
	}
	return store, nil
}

// Migrate applies schema migrations for providers that need an explicit step.
// SQLite migrates on open; memory has no schema.
func Migrate(cfg Config) error {
	if cfg.Provider != ProviderPostgres {
		return nil
	}
	return postgres.RunMigrations(cfg.DatabaseURL)
}

func providerNames(constructors map[string]Constructor) []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
