package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glimrhq/glimr/internal/schema"
)

// ColumnSnapshot is the persisted projection of one column: just enough to
// detect structural drift, not to regenerate DDL unaided. The type is kept
// as an opaque string tag so historical snapshots stay loadable as the kind
// set evolves, and the default is reduced to a presence flag.
type ColumnSnapshot struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	HasDefault bool   `json:"has_default"`
}

// TableSnapshot is the persisted projection of one table.
type TableSnapshot struct {
	Columns []ColumnSnapshot `json:"columns"`
}

// Snapshot records the schema as of the last successful generation run and
// is the baseline the next diff runs against.
type Snapshot struct {
	Tables map[string]TableSnapshot `json:"tables"`
}

// Empty returns a snapshot with no tables.
func Empty() Snapshot {
	return Snapshot{Tables: map[string]TableSnapshot{}}
}

// Build projects the declared tables into a snapshot.
func Build(tables []schema.Table) Snapshot {
	s := Empty()
	for _, table := range tables {
		ts := TableSnapshot{Columns: make([]ColumnSnapshot, 0, len(table.Columns))}
		for _, column := range table.Columns {
			ts.Columns = append(ts.Columns, ColumnSnapshot{
				Name:       column.Name,
				Type:       string(column.Type.Kind),
				Nullable:   column.Nullable,
				HasDefault: column.Default != nil,
			})
		}
		s.Tables[table.Name] = ts
	}
	return s
}

// Load reads a snapshot from disk. It never fails: a missing or unparsable
// file yields an empty snapshot, so a fresh project diffs the same way as
// an empty schema.
func Load(path string) Snapshot {
	data, err := os.ReadFile(path)
	if err != nil {
		return Empty()
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Empty()
	}
	if s.Tables == nil {
		s.Tables = map[string]TableSnapshot{}
	}
	return s
}

// Save writes the snapshot to disk as indented JSON, creating the parent
// directory if needed. Map keys marshal in sorted order, so the output is
// deterministic and diffable by humans.
func Save(path string, s Snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Merge unions two snapshots key-wise, entries from next winning on
// conflict. Tables present only in prev are preserved, which keeps
// out-of-filter tables from being dropped from disk when a filtered run
// saves its result.
func Merge(prev, next Snapshot) Snapshot {
	merged := Empty()
	for name, table := range prev.Tables {
		merged.Tables[name] = table
	}
	for name, table := range next.Tables {
		merged.Tables[name] = table
	}
	return merged
}

// Table returns the named table snapshot and whether it exists.
func (s Snapshot) Table(name string) (TableSnapshot, bool) {
	t, ok := s.Tables[name]
	return t, ok
}

// Has reports whether the snapshot contains the named table.
func (s Snapshot) Has(name string) bool {
	_, ok := s.Tables[name]
	return ok
}

// Column returns the named column and whether the table snapshot records it.
func (t TableSnapshot) Column(name string) (ColumnSnapshot, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSnapshot{}, false
}

// HasColumn reports whether the table snapshot records the named column.
func (t TableSnapshot) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}
