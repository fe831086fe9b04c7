package sqlgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/glimrhq/glimr/internal/database"
	"github.com/glimrhq/glimr/internal/schema"
)

// typeLiterals maps fixed column kinds to their exact type literal per
// driver. String and Foreign carry parameters and are rendered in
// typeLiteral. These literals are a contract with existing databases.
var typeLiterals = map[schema.ColumnKind]map[database.Driver]string{
	schema.KindID:            {database.Postgres: "SERIAL", database.Sqlite: "INTEGER"},
	schema.KindText:          {database.Postgres: "TEXT", database.Sqlite: "TEXT"},
	schema.KindInt:           {database.Postgres: "INTEGER", database.Sqlite: "INTEGER"},
	schema.KindBigInt:        {database.Postgres: "BIGINT", database.Sqlite: "INTEGER"},
	schema.KindFloat:         {database.Postgres: "DOUBLE PRECISION", database.Sqlite: "REAL"},
	schema.KindBoolean:       {database.Postgres: "BOOLEAN", database.Sqlite: "INTEGER"},
	schema.KindTimestamp:     {database.Postgres: "TIMESTAMP", database.Sqlite: "TEXT"},
	schema.KindUnixTimestamp: {database.Postgres: "BIGINT", database.Sqlite: "INTEGER"},
	schema.KindDate:          {database.Postgres: "DATE", database.Sqlite: "TEXT"},
	schema.KindJSON:          {database.Postgres: "JSONB", database.Sqlite: "TEXT"},
	schema.KindUUID:          {database.Postgres: "UUID", database.Sqlite: "TEXT"},
}

// sqliteUUIDExpr composes a UUIDv4 from random bytes; sqlite ships no
// native uuid function. The expression keeps its outer parentheses, which
// sqlite requires around non-literal defaults.
const sqliteUUIDExpr = "(lower(hex(randomblob(4))) || '-' || " +
	"lower(hex(randomblob(2))) || '-4' || " +
	"substr(lower(hex(randomblob(2))),2) || '-' || " +
	"substr('89ab',abs(random()) % 4 + 1, 1) || " +
	"substr(lower(hex(randomblob(2))),2) || '-' || " +
	"lower(hex(randomblob(6))))"

// typeLiteral renders the exact dialect type for a column type.
func typeLiteral(t schema.ColumnType, driver database.Driver) string {
	switch t.Kind {
	case schema.KindString:
		if driver == database.Postgres {
			maxLen := t.MaxLen
			if maxLen <= 0 {
				maxLen = 255
			}
			return fmt.Sprintf("VARCHAR(%d)", maxLen)
		}
		return "TEXT"
	case schema.KindForeign:
		if driver == database.Postgres {
			return fmt.Sprintf("INTEGER REFERENCES %s(id)", t.References)
		}
		return "INTEGER"
	}
	if literal, ok := typeLiterals[t.Kind][driver]; ok {
		return literal
	}
	return "TEXT"
}

// defaultExpr renders the default expression for a column default.
func defaultExpr(d schema.Default, driver database.Driver) string {
	switch d.Kind {
	case schema.DefaultString:
		return quoteString(d.Str)
	case schema.DefaultInt:
		return strconv.FormatInt(d.Int, 10)
	case schema.DefaultFloat:
		return strconv.FormatFloat(d.Float, 'g', -1, 64)
	case schema.DefaultBool:
		return boolLiteral(d.Bool, driver)
	case schema.DefaultNow:
		return "CURRENT_TIMESTAMP"
	case schema.DefaultUnixNow:
		if driver == database.Postgres {
			return "EXTRACT(EPOCH FROM NOW())"
		}
		return "(strftime('%s','now'))"
	case schema.DefaultAutoUUID:
		if driver == database.Postgres {
			return "gen_random_uuid()"
		}
		return sqliteUUIDExpr
	case schema.DefaultNull:
		return "NULL"
	}
	return "NULL"
}

func boolLiteral(v bool, driver database.Driver) string {
	if driver == database.Postgres {
		if v {
			return "TRUE"
		}
		return "FALSE"
	}
	if v {
		return "1"
	}
	return "0"
}

// quoteString single-quotes a literal, doubling embedded quotes.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
