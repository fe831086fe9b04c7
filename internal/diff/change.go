package diff

import (
	"github.com/glimrhq/glimr/internal/schema"
	"github.com/glimrhq/glimr/internal/snapshot"
)

// ChangeKind identifies one kind of structural schema change.
type ChangeKind string

const (
	CreateTable  ChangeKind = "CreateTable"
	DropTable    ChangeKind = "DropTable"
	AddColumn    ChangeKind = "AddColumn"
	DropColumn   ChangeKind = "DropColumn"
	AlterColumn  ChangeKind = "AlterColumn"
	RenameColumn ChangeKind = "RenameColumn"
)

// Change is one atomic structural difference between two schema states.
// Which payload fields are meaningful depends on Kind.
type Change struct {
	Kind      ChangeKind
	TableName string

	// Table is the full definition for CreateTable changes.
	Table schema.Table

	// Column is the new-side column for AddColumn and AlterColumn changes.
	Column schema.Column

	// ColumnName names the removed column for DropColumn changes.
	ColumnName string

	// OldColumn is the previous state of the column for AlterColumn changes.
	OldColumn snapshot.ColumnSnapshot

	// OldName and NewName are set for RenameColumn changes.
	OldName string
	NewName string
}

// NewCreateTable records that a table must be created.
func NewCreateTable(table schema.Table) Change {
	return Change{Kind: CreateTable, TableName: table.Name, Table: table}
}

// NewDropTable records that a table must be dropped.
func NewDropTable(name string) Change {
	return Change{Kind: DropTable, TableName: name}
}

// NewAddColumn records that a column must be added to an existing table.
func NewAddColumn(table string, column schema.Column) Change {
	return Change{Kind: AddColumn, TableName: table, Column: column}
}

// NewDropColumn records that a column must be removed from an existing table.
func NewDropColumn(table, column string) Change {
	return Change{Kind: DropColumn, TableName: table, ColumnName: column}
}

// NewAlterColumn records that a column changed type or nullability.
func NewAlterColumn(table string, column schema.Column, old snapshot.ColumnSnapshot) Change {
	return Change{Kind: AlterColumn, TableName: table, Column: column, OldColumn: old}
}

// NewRenameColumn records that a column was renamed.
func NewRenameColumn(table, oldName, newName string) Change {
	return Change{Kind: RenameColumn, TableName: table, OldName: oldName, NewName: newName}
}

// SchemaDiff is an ordered list of changes: created tables first, then
// dropped tables, then column-level changes, as produced by ComputeDiff.
// The list is not yet dependency-sorted; that happens at generation time.
type SchemaDiff struct {
	Changes []Change
}

// HasChanges reports whether the diff contains any change.
func (d SchemaDiff) HasChanges() bool {
	return len(d.Changes) > 0
}
