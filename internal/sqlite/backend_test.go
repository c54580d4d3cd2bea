package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/almanac/pkg/types"
)

func setupBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func tableNames(t *testing.T, b *Backend) []string {
	t.Helper()
	rows, err := b.db.Query("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()
	b := NewBackend()
	config := types.Config{Backend: types.BackendSQLite, DataDir: tmpDir}

	require.NoError(t, b.Attach(config))
	defer b.Detach()

	dbPath := filepath.Join(tmpDir, types.DefaultDBFile)
	_, err := os.Stat(dbPath)
	assert.NoError(t, err, "database file should exist")
	assert.Equal(t, dbPath, b.Path())

	assert.ErrorIs(t, b.Attach(config), types.ErrAlreadyAttached)
}

func TestBackend_AttachCreatesDataDir(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested", "store")
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir, DBFile: "campaign.db"}))
	defer b.Detach()

	_, err := os.Stat(filepath.Join(dataDir, "campaign.db"))
	assert.NoError(t, err)
}

func TestBackend_AttachErrors(t *testing.T) {
	notADir := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(notADir, []byte("x"), 0o644))

	tests := []struct {
		name    string
		config  types.Config
		wantErr error
	}{
		{"empty backend", types.Config{DataDir: t.TempDir()}, types.ErrBackendEmpty},
		{"unknown backend", types.Config{Backend: "postgres"}, types.ErrBackendUnknown},
		{"db file with path", types.Config{Backend: types.BackendSQLite, DBFile: "a/b.db"}, types.ErrDBFileInvalid},
		{"data dir is a file", types.Config{Backend: types.BackendSQLite, DataDir: notADir}, types.ErrStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBackend()
			err := b.Attach(tt.config)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, b.Path())
		})
	}
}

func TestBackend_Detach(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))

	require.NoError(t, b.Detach())
	assert.NoError(t, b.Detach(), "Detach should be idempotent")
	assert.Empty(t, b.Path())

	ctx := context.Background()
	assert.ErrorIs(t, b.EnsureSchema(ctx), types.ErrStoreDetached)
	assert.ErrorIs(t, b.Write(ctx, types.Batch{}), types.ErrStoreDetached)
}

func TestBackend_Reattach(t *testing.T) {
	dataDir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: dataDir}
	ctx := context.Background()

	b := NewBackend()
	require.NoError(t, b.Attach(config))
	require.NoError(t, b.Write(ctx, franceBatch("campaign-1", "1836.1.1")))
	require.NoError(t, b.Detach())

	require.NoError(t, b.Attach(config))
	defer b.Detach()
	assert.Equal(t, 1, countRows(t, b, "SELECT COUNT(*) FROM Saves"))
}

func TestEnsureSchema(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	require.NoError(t, b.EnsureSchema(ctx))

	want := []string{
		"Battles", "Countries", "CountryMetrics", "Saves", "Wars",
		"War_Participants", "country_snapshot", "raw_json",
	}
	assert.ElementsMatch(t, want, tableNames(t, b))

	var fk int
	require.NoError(t, b.db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk, "foreign keys should be enforced")

	for _, idx := range []struct{ table, name string }{
		{"War_Participants", "idx_war_participants_key"},
		{"CountryMetrics", "idx_country_metrics_key"},
	} {
		var unique int
		require.NoError(t, b.db.QueryRow(
			`SELECT "unique" FROM pragma_index_list(?) WHERE name = ?`, idx.table, idx.name).Scan(&unique))
		assert.Equal(t, 1, unique, idx.name)
	}
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	require.NoError(t, b.EnsureSchema(ctx))
	require.NoError(t, b.Write(ctx, franceBatch("campaign-1", "1836.1.1")))

	// A fresh handle on the same file must not disturb existing tables or rows.
	path := b.Path()
	require.NoError(t, b.Detach())
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: filepath.Dir(path)}))
	require.NoError(t, b.EnsureSchema(ctx))
	require.NoError(t, b.EnsureSchema(ctx))

	assert.Len(t, tableNames(t, b), 8)
	assert.Equal(t, 1, countRows(t, b, "SELECT COUNT(*) FROM country_snapshot"))
}

func TestDSN(t *testing.T) {
	got := dsn("/tmp/x.db", types.Config{})
	assert.Equal(t, "/tmp/x.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", got)
}
