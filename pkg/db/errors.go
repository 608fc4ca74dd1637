package db

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("db: key not found")
	ErrValidation     = errors.New("db: invalid argument")
	ErrPath           = errors.New("db: invalid location")
	ErrEngine         = errors.New("db: engine failure")
	ErrFlush          = errors.New("db: flush after commit failed, write may be applied")
	ErrClosed         = errors.New("db: store is closed")
	ErrBatchDone      = errors.New("db: batch already written or closed")
	ErrIteratorClosed = errors.New("db: iterator is closed")
)

const (
	ErrConflictingBounds = "%s can not be provided with %s"
	ErrEngineOp          = "%w: %s: %w"
)

// EngineError wraps a failure surfaced by the embedded engine while performing op.
// The result matches both ErrEngine and err.
func EngineError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrEngine) {
		return err
	}
	return fmt.Errorf(ErrEngineOp, ErrEngine, op, err)
}

// ValidationError reports a caller mistake detected before touching the engine.
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// PathError reports a storage location that violates the open options.
func PathError(path, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrPath, path, reason)
}
