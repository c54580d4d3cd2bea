package sqlite

import (
	"errors"
	"fmt"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/mesh-intelligence/almanac/pkg/types"
)

// classify maps a driver error from a write into the store's error taxonomy.
// Constraint failures become *types.ConstraintError naming the table and row
// key; everything else wraps ErrStoreUnavailable.
func classify(table, key string, err error) error {
	if isConstraintError(err) {
		return &types.ConstraintError{Table: table, Key: key, Err: err}
	}
	return fmt.Errorf("%w: write %s %q: %w", types.ErrStoreUnavailable, table, key, err)
}

func isConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		// Extended result codes keep the primary code in the low byte.
		return sqliteErr.Code()&0xff == sqlite3lib.SQLITE_CONSTRAINT
	}
	return strings.Contains(strings.ToLower(err.Error()), "constraint failed")
}
