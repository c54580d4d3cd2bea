package types

import (
	"context"
	"errors"
	"fmt"
)

// Store defines the lifecycle of a snapshot store. Callers attach to a
// backend, ensure the schema, write one Batch per snapshot, and detach when
// done.
type Store interface {
	// Attach opens the backend described by config. Creates the DataDir if
	// it does not exist. Returns ErrAlreadyAttached if called while attached.
	Attach(config Config) error

	// EnsureSchema creates every table and index that does not exist yet.
	// Safe to call on every run; after the first success it is a no-op.
	EnsureSchema(ctx context.Context) error

	// Write commits all records of batch in one transaction. On any error
	// nothing from the batch is visible.
	Write(ctx context.Context, batch Batch) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	Detach() error
}

// Store lifecycle errors.
var (
	ErrStoreDetached    = errors.New("store is detached")
	ErrAlreadyAttached  = errors.New("store is already attached")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Ingestion errors.
var (
	ErrConstraintViolation = errors.New("constraint violation")
	ErrInvalidPlaythrough  = errors.New("playthrough id must not be empty")
	ErrInvalidDocument     = errors.New("invalid document")
	ErrDecoderNotFound     = errors.New("decoder executable not found")
)

// ConstraintError reports a primary or foreign key violation raised while
// writing a batch. Key identifies the offending row within Table.
type ConstraintError struct {
	Table string
	Key   string
	Err   error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint violation in %s (key %s): %v", e.Table, e.Key, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// Is matches ErrConstraintViolation so callers can test with errors.Is.
func (e *ConstraintError) Is(target error) bool {
	return target == ErrConstraintViolation
}
