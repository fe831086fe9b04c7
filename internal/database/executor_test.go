package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/glimrhq/glimr/internal/utils"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestExecutor_Driver(t *testing.T) {
	executor := NewExecutor(setupTestDB(t), Sqlite)
	assert.Equal(t, Sqlite, executor.Driver())
}

func TestExecutor_Execute(t *testing.T) {
	ctx := context.Background()
	executor := NewExecutor(setupTestDB(t), Sqlite)

	t.Run("DDL executes", func(t *testing.T) {
		_, err := executor.Execute(ctx, "CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)")
		assert.NoError(t, err)
	})

	t.Run("Affected rows reported", func(t *testing.T) {
		affected, err := executor.Execute(ctx, "INSERT INTO notes (body) VALUES (?)", "hello")
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		affected, err = executor.Execute(ctx, "DELETE FROM notes WHERE body = ?", "hello")
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)
	})

	t.Run("Zero affected rows on no match", func(t *testing.T) {
		affected, err := executor.Execute(ctx, "DELETE FROM notes WHERE body = ?", "missing")
		require.NoError(t, err)
		assert.Equal(t, int64(0), affected)
	})

	t.Run("Invalid SQL is a query error", func(t *testing.T) {
		_, err := executor.Execute(ctx, "CREATE TABL broken (id INTEGER)")
		require.Error(t, err)
		assert.True(t, utils.IsQueryError(err))
	})

	t.Run("Constraint violation classified", func(t *testing.T) {
		_, err := executor.Execute(ctx, "CREATE TABLE uniq (id INTEGER PRIMARY KEY, tag TEXT UNIQUE)")
		require.NoError(t, err)
		_, err = executor.Execute(ctx, "INSERT INTO uniq (tag) VALUES (?)", "a")
		require.NoError(t, err)

		_, err = executor.Execute(ctx, "INSERT INTO uniq (tag) VALUES (?)", "a")
		require.Error(t, err)
		assert.True(t, utils.IsConstraintError(err))
	})
}

func TestExecutor_SelectAll(t *testing.T) {
	ctx := context.Background()
	executor := NewExecutor(setupTestDB(t), Sqlite)

	_, err := executor.Execute(ctx, "CREATE TABLE versions (version TEXT PRIMARY KEY)")
	require.NoError(t, err)
	for _, v := range []string{"20250101120000", "20250102120000", "20250103120000"} {
		_, err = executor.Execute(ctx, "INSERT INTO versions (version) VALUES (?)", v)
		require.NoError(t, err)
	}

	t.Run("Scans single column into string slice", func(t *testing.T) {
		var versions []string
		err := executor.SelectAll(ctx, &versions, "SELECT version FROM versions ORDER BY version")
		require.NoError(t, err)
		assert.Equal(t, []string{"20250101120000", "20250102120000", "20250103120000"}, versions)
	})

	t.Run("Scans with arguments", func(t *testing.T) {
		var versions []string
		err := executor.SelectAll(ctx, &versions, "SELECT version FROM versions WHERE version > ? ORDER BY version", "20250101120000")
		require.NoError(t, err)
		assert.Len(t, versions, 2)
	})

	t.Run("Empty result leaves destination empty", func(t *testing.T) {
		var versions []string
		err := executor.SelectAll(ctx, &versions, "SELECT version FROM versions WHERE version = ?", "nope")
		require.NoError(t, err)
		assert.Empty(t, versions)
	})

	t.Run("Missing table is a query error", func(t *testing.T) {
		var versions []string
		err := executor.SelectAll(ctx, &versions, "SELECT version FROM ghosts")
		require.Error(t, err)
		assert.True(t, utils.IsQueryError(err))
	})
}

// Mock error for testing error classification
type mockError struct {
	message string
}

func (e *mockError) Error() string {
	return e.message
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		errorMsg string
		check    func(error) bool
		family   string
	}{
		{
			name:     "Connection refused",
			errorMsg: "dial tcp 127.0.0.1:5432: connection refused",
			check:    utils.IsConnectionError,
			family:   "connection",
		},
		{
			name:     "Connection reset",
			errorMsg: "read tcp: connection reset by peer",
			check:    utils.IsConnectionError,
			family:   "connection",
		},
		{
			name:     "Database closed",
			errorMsg: "sql: database is closed",
			check:    utils.IsConnectionError,
			family:   "connection",
		},
		{
			name:     "Statement timeout",
			errorMsg: "pq: canceling statement due to statement timeout",
			check:    utils.IsTimeoutError,
			family:   "timeout",
		},
		{
			name:     "Unique violation",
			errorMsg: "UNIQUE constraint failed: _glimr_migrations.version",
			check:    utils.IsConstraintError,
			family:   "constraint",
		},
		{
			name:     "Duplicate key",
			errorMsg: "duplicate key value violates unique constraint",
			check:    utils.IsConstraintError,
			family:   "constraint",
		},
		{
			name:     "Scan failure",
			errorMsg: "sql: cannot scan NULL into *string",
			check:    utils.IsDecodeError,
			family:   "decode",
		},
		{
			name:     "Syntax error falls through to query",
			errorMsg: "near \"TABL\": syntax error",
			check:    utils.IsQueryError,
			family:   "query",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classifyError("SELECT 1", &mockError{message: tt.errorMsg})
			assert.True(t, tt.check(classified), "expected %s family for %q", tt.family, tt.errorMsg)
		})
	}

	t.Run("Nil error stays nil", func(t *testing.T) {
		assert.NoError(t, classifyError("SELECT 1", nil))
	})

	t.Run("Context deadline is a timeout", func(t *testing.T) {
		classified := classifyError("SELECT 1", context.DeadlineExceeded)
		assert.True(t, utils.IsTimeoutError(classified))
	})
}

func TestContainsAny(t *testing.T) {
	assert.True(t, containsAny("connection refused by server", "connection refused"))
	assert.True(t, containsAny("deadline exceeded", "timeout", "deadline exceeded"))
	assert.False(t, containsAny("syntax error", "connection refused", "timeout"))
}
