package schema

import (
	"slices"

	"github.com/glimrhq/glimr/internal/utils"
)

// ValidateTables runs the pre-flight checks that must pass before any diff
// is computed. A violation is a mistake in the schema definition, not a
// runtime condition, and halts the pipeline.
func ValidateTables(tables []Table) error {
	for _, table := range tables {
		if err := validateNoDuplicateColumns(table); err != nil {
			return err
		}
	}
	return nil
}

func validateNoDuplicateColumns(table Table) error {
	seen := make(map[string]bool, len(table.Columns))
	var duplicates []string
	for _, column := range table.Columns {
		if seen[column.Name] {
			if !slices.Contains(duplicates, column.Name) {
				duplicates = append(duplicates, column.Name)
			}
			continue
		}
		seen[column.Name] = true
	}
	if len(duplicates) > 0 {
		return utils.DuplicateColumnsError(table.Name, duplicates)
	}
	return nil
}
