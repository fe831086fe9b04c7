package diff

import (
	"fmt"
	"sort"

	"github.com/glimrhq/glimr/internal/schema"
	"github.com/glimrhq/glimr/internal/snapshot"
	"github.com/glimrhq/glimr/internal/utils"
)

// renamePairs lists the type-tag pairs a column may move between under a
// rename. Any other combination must be split into a separate type
// migration.
var renamePairs = map[[2]string]bool{
	{string(schema.KindString), string(schema.KindText)}: true,
	{string(schema.KindText), string(schema.KindString)}: true,
	{string(schema.KindInt), string(schema.KindBigInt)}:  true,
	{string(schema.KindBigInt), string(schema.KindInt)}:  true,
}

// ComputeDiff compares the previous snapshot against the current one plus
// the in-memory table definitions and returns the ordered change list:
// created tables, then dropped tables, then column-level changes.
//
// When filtered is true, dropped-table detection is skipped entirely. A
// filtered run only ever sees a subset of tables and must never infer that
// the rest were deleted.
func ComputeDiff(old, current snapshot.Snapshot, tables []schema.Table, filtered bool) (SchemaDiff, error) {
	var creates, drops, columnChanges []Change

	// New tables, in declaration order
	for _, table := range tables {
		if !old.Has(table.Name) {
			creates = append(creates, NewCreateTable(table))
		}
	}

	if !filtered {
		for _, name := range sortedTableNames(old) {
			if !current.Has(name) {
				drops = append(drops, NewDropTable(name))
			}
		}
	}

	// Column diff for tables present on both sides
	for _, table := range tables {
		oldTable, ok := old.Table(table.Name)
		if !ok {
			continue
		}
		changes, err := diffColumns(table, oldTable)
		if err != nil {
			return SchemaDiff{}, err
		}
		columnChanges = append(columnChanges, changes...)
	}

	ordered := make([]Change, 0, len(creates)+len(drops)+len(columnChanges))
	ordered = append(ordered, creates...)
	ordered = append(ordered, drops...)
	ordered = append(ordered, columnChanges...)
	return SchemaDiff{Changes: ordered}, nil
}

// diffColumns compares one declared table against its previous snapshot.
func diffColumns(table schema.Table, old snapshot.TableSnapshot) ([]Change, error) {
	// First pass: recognize rename directives and validate each one. All
	// three violations are definition mistakes, so they fail the whole diff
	// rather than degrade into add/drop pairs.
	renamedFrom := make(map[string]string)
	for _, column := range table.Columns {
		if column.RenamedFrom == "" {
			continue
		}
		oldColumn, ok := old.Column(column.RenamedFrom)
		if !ok {
			return nil, utils.RenameError(table.Name, column.Name,
				fmt.Sprintf("rename source '%s' not found in previous snapshot", column.RenamedFrom))
		}
		if table.HasColumn(column.RenamedFrom) {
			return nil, utils.RenameError(table.Name, column.Name,
				fmt.Sprintf("rename source '%s' is still defined on the table", column.RenamedFrom))
		}
		if !renameCompatible(oldColumn.Type, string(column.Type.Kind)) {
			return nil, utils.RenameError(table.Name, column.Name,
				fmt.Sprintf("cannot rename '%s' (%s) to '%s' (%s); split the type change into a separate migration",
					column.RenamedFrom, oldColumn.Type, column.Name, column.Type.Kind))
		}
		renamedFrom[column.RenamedFrom] = column.Name
	}

	var changes []Change

	// Second pass: walk the declared columns in order.
	for _, column := range table.Columns {
		if column.RenamedFrom != "" {
			changes = append(changes, NewRenameColumn(table.Name, column.RenamedFrom, column.Name))
			continue
		}
		oldColumn, ok := old.Column(column.Name)
		if !ok {
			changes = append(changes, NewAddColumn(table.Name, column))
			continue
		}
		// A default-only change never triggers an alter; the snapshot keeps
		// just a presence flag and backfilling is out of scope.
		if oldColumn.Type != string(column.Type.Kind) || oldColumn.Nullable != column.Nullable {
			changes = append(changes, NewAlterColumn(table.Name, column, oldColumn))
		}
	}

	// Removed columns: recorded in the snapshot, no longer declared, and not
	// the source side of a recognized rename.
	for _, oldColumn := range old.Columns {
		if _, renamed := renamedFrom[oldColumn.Name]; renamed {
			continue
		}
		if !table.HasColumn(oldColumn.Name) {
			changes = append(changes, NewDropColumn(table.Name, oldColumn.Name))
		}
	}

	return changes, nil
}

// renameCompatible reports whether a column may move from the old type tag
// to the new one under a rename: identical tags or one of the allowed
// pairs. The old tag comes from a snapshot file and may predate the current
// kind set, so the comparison stays on raw strings.
func renameCompatible(oldTag, newTag string) bool {
	if oldTag == newTag {
		return true
	}
	return renamePairs[[2]string{oldTag, newTag}]
}

func sortedTableNames(s snapshot.Snapshot) []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
