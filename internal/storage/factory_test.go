package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/equipreg/internal/kv"
)

func TestOpen_Memory(t *testing.T) {
	store, err := Open(context.Background(), Config{Provider: ProviderMemory}, DefaultConstructors())
	require.NoError(t, err)
	assert.IsType(t, &kv.MemoryStore{}, store)
}

func TestOpen_SQLite(t *testing.T) {
	cfg := Config{Provider: ProviderSQLite, SQLitePath: filepath.Join(t.TempDir(), "r.db")}
	store, err := Open(context.Background(), cfg, DefaultConstructors())
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.NoError(t, store.Close())
}

func TestOpen_UnknownProvider(t *testing.T) {
	_, err := Open(context.Background(), Config{Provider: "dynamodb"}, DefaultConstructors())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported store provider "dynamodb"`)
	assert.Contains(t, err.Error(), "[memory postgres sqlite]")
}

func TestOpen_PassesProviderConfig(t *testing.T) {
	var got string
	constructors := map[string]Constructor{
		ProviderPostgres: func(ctx context.Context, config string) (kv.Store, error) {
			got = config
			return kv.NewMemoryStore(), nil
		},
	}

	_, err := Open(context.Background(), Config{
		Provider:    ProviderPostgres,
		DatabaseURL: "postgres://localhost/registry",
		SQLitePath:  "/tmp/ignored.db",
	}, constructors)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/registry", got)
}

func TestOpen_ConstructorError(t *testing.T) {
	constructors := map[string]Constructor{
		ProviderSQLite: func(ctx context.Context, config string) (kv.Store, error) {
			return nil, errors.New("read-only file system")
		},
	}

	_, err := Open(context.Background(), Config{Provider: ProviderSQLite}, constructors)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open sqlite store")
}

func TestMigrate_NoopForNonPostgres(t *testing.T) {
	assert.NoError(t, Migrate(Config{Provider: ProviderMemory}))
	assert.NoError(t, Migrate(Config{Provider: ProviderSQLite}))
}
