package database

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/glimrhq/glimr/internal/utils"
)

// Executor is the narrow execution surface the migration engine borrows
// from the connection layer: raw statement execution, whole-result reads,
// and the target dialect. Pool lifecycle stays with the owner; the executor
// performs no retry of its own.
type Executor interface {
	// Driver reports the dialect behind the connection.
	Driver() Driver

	// Execute runs one statement and returns the number of affected rows.
	Execute(ctx context.Context, query string, args ...interface{}) (int64, error)

	// SelectAll runs a query and scans the full result set into dest.
	SelectAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// gormExecutor adapts a gorm handle to the Executor surface.
type gormExecutor struct {
	db     *gorm.DB
	driver Driver
}

// NewExecutor wraps an existing gorm handle. Placeholders use `?`; gorm
// rebinds them per dialect.
func NewExecutor(db *gorm.DB, driver Driver) Executor {
	return &gormExecutor{db: db, driver: driver}
}

func (e *gormExecutor) Driver() Driver {
	return e.driver
}

func (e *gormExecutor) Execute(ctx context.Context, query string, args ...interface{}) (int64, error) {
	result := e.db.WithContext(ctx).Exec(query, args...)
	if result.Error != nil {
		return 0, classifyError(query, result.Error)
	}
	return result.RowsAffected, nil
}

func (e *gormExecutor) SelectAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	if err := e.db.WithContext(ctx).Raw(query, args...).Scan(dest).Error; err != nil {
		return classifyError(query, err)
	}
	return nil
}

// classifyError sorts a driver error into one of the execution error
// families. Driver errors arrive as opaque strings, so classification
// sniffs well-known substrings.
func classifyError(query string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return utils.WrapTimeoutError("query", err)
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case containsAny(errStr,
		"connection refused",
		"connection reset",
		"bad connection",
		"database is closed",
		"too many connections"):
		return utils.WrapConnectionError(err)
	case containsAny(errStr,
		"timeout",
		"deadline exceeded"):
		return utils.WrapTimeoutError("query", err)
	case containsAny(errStr,
		"constraint",
		"duplicate key",
		"unique violation",
		"foreign key violation"):
		return utils.WrapConstraintError("", err)
	case containsAny(errStr,
		"unsupported scan",
		"cannot scan",
		"unsupported data type",
		"unsupported destination"):
		return utils.WrapDecodeError(err)
	default:
		return utils.WrapQueryError(query, err)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
