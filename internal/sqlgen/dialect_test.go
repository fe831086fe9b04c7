package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glimrhq/glimr/internal/database"
	"github.com/glimrhq/glimr/internal/schema"
)

func TestTypeLiteralGrid(t *testing.T) {
	tests := []struct {
		name       string
		columnType schema.ColumnType
		postgres   string
		sqlite     string
	}{
		{name: "Id", columnType: schema.ID(), postgres: "SERIAL", sqlite: "INTEGER"},
		{name: "String", columnType: schema.String(100), postgres: "VARCHAR(100)", sqlite: "TEXT"},
		{name: "Text", columnType: schema.Text(), postgres: "TEXT", sqlite: "TEXT"},
		{name: "Int", columnType: schema.Int(), postgres: "INTEGER", sqlite: "INTEGER"},
		{name: "BigInt", columnType: schema.BigInt(), postgres: "BIGINT", sqlite: "INTEGER"},
		{name: "Float", columnType: schema.Float(), postgres: "DOUBLE PRECISION", sqlite: "REAL"},
		{name: "Boolean", columnType: schema.Boolean(), postgres: "BOOLEAN", sqlite: "INTEGER"},
		{name: "Timestamp", columnType: schema.Timestamp(), postgres: "TIMESTAMP", sqlite: "TEXT"},
		{name: "UnixTimestamp", columnType: schema.UnixTimestamp(), postgres: "BIGINT", sqlite: "INTEGER"},
		{name: "Date", columnType: schema.Date(), postgres: "DATE", sqlite: "TEXT"},
		{name: "Json", columnType: schema.JSON(), postgres: "JSONB", sqlite: "TEXT"},
		{name: "Uuid", columnType: schema.UUID(), postgres: "UUID", sqlite: "TEXT"},
		{name: "Foreign", columnType: schema.Foreign("users"), postgres: "INTEGER REFERENCES users(id)", sqlite: "INTEGER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.postgres, typeLiteral(tt.columnType, database.Postgres))
			assert.Equal(t, tt.sqlite, typeLiteral(tt.columnType, database.Sqlite))
		})
	}
}

func TestTypeLiteralStringZeroLength(t *testing.T) {
	// A hand-built ColumnType that bypassed the constructor still renders a
	// usable VARCHAR.
	raw := schema.ColumnType{Kind: schema.KindString}
	assert.Equal(t, "VARCHAR(255)", typeLiteral(raw, database.Postgres))
}

func TestDefaultExprGrid(t *testing.T) {
	tests := []struct {
		name     string
		def      *schema.Default
		postgres string
		sqlite   string
	}{
		{
			name:     "String literal",
			def:      schema.StringDefault("active"),
			postgres: "'active'",
			sqlite:   "'active'",
		},
		{
			name:     "String literal with quote",
			def:      schema.StringDefault("it's"),
			postgres: "'it''s'",
			sqlite:   "'it''s'",
		},
		{
			name:     "Int literal",
			def:      schema.IntDefault(42),
			postgres: "42",
			sqlite:   "42",
		},
		{
			name:     "Negative int literal",
			def:      schema.IntDefault(-1),
			postgres: "-1",
			sqlite:   "-1",
		},
		{
			name:     "Float literal",
			def:      schema.FloatDefault(1.5),
			postgres: "1.5",
			sqlite:   "1.5",
		},
		{
			name:     "Bool true",
			def:      schema.BoolDefault(true),
			postgres: "TRUE",
			sqlite:   "1",
		},
		{
			name:     "Bool false",
			def:      schema.BoolDefault(false),
			postgres: "FALSE",
			sqlite:   "0",
		},
		{
			name:     "Now",
			def:      schema.NowDefault(),
			postgres: "CURRENT_TIMESTAMP",
			sqlite:   "CURRENT_TIMESTAMP",
		},
		{
			name:     "UnixNow",
			def:      schema.UnixNowDefault(),
			postgres: "EXTRACT(EPOCH FROM NOW())",
			sqlite:   "(strftime('%s','now'))",
		},
		{
			name:     "Null",
			def:      schema.NullDefault(),
			postgres: "NULL",
			sqlite:   "NULL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.postgres, defaultExpr(*tt.def, database.Postgres))
			assert.Equal(t, tt.sqlite, defaultExpr(*tt.def, database.Sqlite))
		})
	}
}

func TestDefaultExprAutoUUID(t *testing.T) {
	t.Run("Postgres uses native generator", func(t *testing.T) {
		assert.Equal(t, "gen_random_uuid()", defaultExpr(*schema.AutoUUIDDefault(), database.Postgres))
	})

	t.Run("Sqlite composes a v4 uuid", func(t *testing.T) {
		expr := defaultExpr(*schema.AutoUUIDDefault(), database.Sqlite)

		assert.Contains(t, expr, "randomblob(4)")
		assert.Contains(t, expr, "'-4'")
		assert.Contains(t, expr, "substr('89ab'")
		assert.Contains(t, expr, "randomblob(6)")

		// Non-literal sqlite defaults need surrounding parentheses
		assert.True(t, expr[0] == '(' && expr[len(expr)-1] == ')')
	})
}

func TestColumnDef(t *testing.T) {
	tests := []struct {
		name     string
		column   schema.Column
		driver   database.Driver
		expected string
	}{
		{
			name:     "Id on postgres",
			column:   schema.Column{Name: "id", Type: schema.ID()},
			driver:   database.Postgres,
			expected: "id SERIAL PRIMARY KEY",
		},
		{
			name:     "Id on sqlite",
			column:   schema.Column{Name: "id", Type: schema.ID()},
			driver:   database.Sqlite,
			expected: "id INTEGER PRIMARY KEY AUTOINCREMENT",
		},
		{
			name:     "Required column",
			column:   schema.Column{Name: "email", Type: schema.String(255)},
			driver:   database.Postgres,
			expected: "email VARCHAR(255) NOT NULL",
		},
		{
			name:     "Nullable column",
			column:   schema.Column{Name: "bio", Type: schema.Text(), Nullable: true},
			driver:   database.Postgres,
			expected: "bio TEXT",
		},
		{
			name:     "Required with default",
			column:   schema.Column{Name: "status", Type: schema.String(20), Default: schema.StringDefault("active")},
			driver:   database.Postgres,
			expected: "status VARCHAR(20) NOT NULL DEFAULT 'active'",
		},
		{
			name:     "Nullable with default",
			column:   schema.Column{Name: "theme", Type: schema.Text(), Nullable: true, Default: schema.StringDefault("dark")},
			driver:   database.Sqlite,
			expected: "theme TEXT DEFAULT 'dark'",
		},
		{
			name:     "Foreign key on postgres",
			column:   schema.Column{Name: "user_id", Type: schema.Foreign("users")},
			driver:   database.Postgres,
			expected: "user_id INTEGER REFERENCES users(id) NOT NULL",
		},
		{
			name:     "Timestamp with now default",
			column:   schema.Column{Name: "created_at", Type: schema.Timestamp(), Default: schema.NowDefault()},
			driver:   database.Sqlite,
			expected: "created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, columnDef(tt.column, tt.driver))
		})
	}
}
