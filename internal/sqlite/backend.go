package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/almanac/pkg/types"
)

// Backend implements types.Store on a local SQLite file. It is an explicit
// handle: callers Attach, EnsureSchema, Write, and Detach it themselves.
type Backend struct {
	mu          sync.Mutex
	attached    bool
	schemaReady bool
	config      types.Config
	path        string
	db          *sql.DB
}

var _ types.Store = (*Backend)(nil)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach opens the database file DataDir/DBFile, creating DataDir if needed.
// Every pooled connection enforces foreign keys and uses WAL journaling.
// Returns ErrAlreadyAttached if already attached and wraps
// ErrStoreUnavailable when the file cannot be opened.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("%w: create data dir: %w", types.ErrStoreUnavailable, err)
	}

	path := filepath.Join(dataDir, config.GetDBFile())
	db, err := sql.Open("sqlite", dsn(path, config))
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", types.ErrStoreUnavailable, path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("%w: ping %s: %w", types.ErrStoreUnavailable, path, err)
	}

	b.db = db
	b.path = path
	b.config = config
	b.schemaReady = false
	b.attached = true
	return nil
}

// dsn builds a modernc.org/sqlite data source name whose pragmas apply to
// every connection the pool opens.
func dsn(path string, config types.Config) string {
	return fmt.Sprintf(
		"%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)",
		path, config.GetBusyTimeout().Milliseconds(),
	)
}

// Path returns the database file location, or "" when detached.
func (b *Backend) Path() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.path
}

// EnsureSchema creates all tables and indexes that do not exist yet, in one
// transaction. The first success is cached on the handle and later calls
// return immediately.
func (b *Backend) EnsureSchema(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	return b.ensureSchemaLocked(ctx)
}

func (b *Backend) ensureSchemaLocked(ctx context.Context) error {
	if b.schemaReady {
		return nil
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin schema transaction: %w", types.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	for _, ddl := range schemaDDL {
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("%w: create table: %w", types.ErrStoreUnavailable, err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("%w: create index: %w", types.ErrStoreUnavailable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit schema: %w", types.ErrStoreUnavailable, err)
	}
	b.schemaReady = true
	return nil
}

// Detach closes the database. After Detach, all operations return
// ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.schemaReady = false
	b.path = ""
	return nil
}
