package sqlgen

import (
	"fmt"
	"strings"

	"github.com/glimrhq/glimr/internal/database"
	"github.com/glimrhq/glimr/internal/diff"
	"github.com/glimrhq/glimr/internal/schema"
)

// Generate renders a schema diff as dialect DDL. Table creations are
// dependency-sorted so a table is created after every same-run table it
// foreign-keys into; all other changes follow in their original order.
// Statements are separated by blank lines.
func Generate(d diff.SchemaDiff, driver database.Driver) string {
	var creates []schema.Table
	var rest []diff.Change
	for _, change := range d.Changes {
		if change.Kind == diff.CreateTable {
			creates = append(creates, change.Table)
		} else {
			rest = append(rest, change)
		}
	}

	statements := make([]string, 0, len(creates)+len(rest))
	for _, table := range sortByDependency(creates) {
		statements = append(statements, renderCreateTable(table, driver))
	}
	for _, change := range rest {
		statements = append(statements, renderChange(change, driver))
	}
	return strings.Join(statements, "\n\n")
}

// sortByDependency topologically orders table creations. Only foreign keys
// into tables created in this same run count as dependencies; a reference
// to a table that already exists does not constrain the order, and
// self-references are ignored.
//
// On a foreign-key cycle no table ever becomes ready, so the remaining
// tables are emitted in their original input order. That keeps generation
// total at the cost of possibly invalid DDL for the cycle members.
func sortByDependency(tables []schema.Table) []schema.Table {
	creating := make(map[string]bool, len(tables))
	for _, table := range tables {
		creating[table.Name] = true
	}

	deps := make(map[string]map[string]bool, len(tables))
	for _, table := range tables {
		deps[table.Name] = make(map[string]bool)
		for _, column := range table.Columns {
			if column.Type.Kind != schema.KindForeign {
				continue
			}
			target := column.Type.References
			if creating[target] && target != table.Name {
				deps[table.Name][target] = true
			}
		}
	}

	sorted := make([]schema.Table, 0, len(tables))
	emitted := make(map[string]bool, len(tables))
	remaining := tables

	for len(remaining) > 0 {
		var blocked []schema.Table
		progressed := false
		for _, table := range remaining {
			ready := true
			for dep := range deps[table.Name] {
				if !emitted[dep] {
					ready = false
					break
				}
			}
			if !ready {
				blocked = append(blocked, table)
				continue
			}
			sorted = append(sorted, table)
			emitted[table.Name] = true
			progressed = true
		}
		if !progressed {
			sorted = append(sorted, blocked...)
			break
		}
		remaining = blocked
	}

	return sorted
}

func renderCreateTable(table schema.Table, driver database.Driver) string {
	defs := make([]string, 0, len(table.Columns))
	for _, column := range table.Columns {
		defs = append(defs, "  "+columnDef(column, driver))
	}
	return fmt.Sprintf("CREATE TABLE %s (\n%s\n);", table.Name, strings.Join(defs, ",\n"))
}

func renderChange(change diff.Change, driver database.Driver) string {
	switch change.Kind {
	case diff.CreateTable:
		return renderCreateTable(change.Table, driver)
	case diff.DropTable:
		return fmt.Sprintf("DROP TABLE %s;", change.TableName)
	case diff.AddColumn:
		return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", change.TableName, columnDef(change.Column, driver))
	case diff.DropColumn:
		return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", change.TableName, change.ColumnName)
	case diff.RenameColumn:
		return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s;", change.TableName, change.OldName, change.NewName)
	case diff.AlterColumn:
		if driver == database.Sqlite {
			// sqlite has no ALTER COLUMN; the change is surfaced as a
			// comment instead of being dropped from the migration.
			return fmt.Sprintf("-- sqlite cannot change column types in place: recreate table %s to alter column %s (%s to %s)",
				change.TableName, change.Column.Name, change.OldColumn.Type, change.Column.Type.Kind)
		}
		return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s;",
			change.TableName, change.Column.Name, typeLiteral(change.Column.Type, driver))
	}
	return ""
}

// columnDef renders one column definition:
// name TYPE [PRIMARY KEY [AUTOINCREMENT]] [NOT NULL] [DEFAULT expr].
// Id columns carry the primary key clause and skip NOT NULL.
func columnDef(c schema.Column, driver database.Driver) string {
	parts := []string{c.Name, typeLiteral(c.Type, driver)}

	if c.Type.Kind == schema.KindID {
		if driver == database.Sqlite {
			parts = append(parts, "PRIMARY KEY AUTOINCREMENT")
		} else {
			parts = append(parts, "PRIMARY KEY")
		}
	} else if !c.Nullable {
		parts = append(parts, "NOT NULL")
	}

	if c.Default != nil {
		parts = append(parts, "DEFAULT "+defaultExpr(*c.Default, driver))
	}

	return strings.Join(parts, " ")
}

// Describe returns a human-readable one-liner for progress reporting.
func Describe(change diff.Change) string {
	switch change.Kind {
	case diff.CreateTable:
		return fmt.Sprintf("create table %s (%d columns)", change.TableName, len(change.Table.Columns))
	case diff.DropTable:
		return fmt.Sprintf("drop table %s", change.TableName)
	case diff.AddColumn:
		return fmt.Sprintf("add column %s.%s", change.TableName, change.Column.Name)
	case diff.DropColumn:
		return fmt.Sprintf("drop column %s.%s", change.TableName, change.ColumnName)
	case diff.AlterColumn:
		return fmt.Sprintf("alter column %s.%s from %s to %s",
			change.TableName, change.Column.Name, change.OldColumn.Type, change.Column.Type.Kind)
	case diff.RenameColumn:
		return fmt.Sprintf("rename column %s.%s to %s", change.TableName, change.OldName, change.NewName)
	}
	return string(change.Kind)
}
