package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Migration is one versioned DDL file. Identity is the version token; a
// migration is never mutated once written.
type Migration struct {
	Version string
	Name    string
	SQL     string
}

// Status is the read-only reporting projection of one migration.
type Status struct {
	Version string
	Name    string
	Applied bool
}

const versionLayout = "20060102150405"

// NewVersion returns a sortable version token for a migration generated
// now: a UTC timestamp at second precision.
func NewVersion() string {
	return time.Now().UTC().Format(versionLayout)
}

// NextVersion returns the first version token at or after the current UTC
// second that no migration file in dir already uses. Two generation runs in
// the same second get distinct versions.
func NextVersion(dir string) string {
	return nextVersion(dir, time.Now().UTC())
}

func nextVersion(dir string, now time.Time) string {
	taken := takenVersions(dir)
	candidate := now.Truncate(time.Second)
	for taken[candidate.Format(versionLayout)] {
		candidate = candidate.Add(time.Second)
	}
	return candidate.Format(versionLayout)
}

// takenVersions collects the version tokens of every migration file in dir.
func takenVersions(dir string) map[string]bool {
	taken := make(map[string]bool)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return taken
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, _ := parseFilename(entry.Name())
		taken[version] = true
	}
	return taken
}

// WriteMigration persists DDL as {dir}/{version}_{name}.sql, creating the
// directory if needed, and returns the written path.
func WriteMigration(dir, version, name, sql string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create migrations directory: %w", err)
	}

	content := sql
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", version, name))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write migration: %w", err)
	}
	return path, nil
}

// discoverMigrations reads every .sql file in dir and returns migrations
// sorted ascending by version. A missing directory means zero migrations;
// a fresh project has nothing to apply yet.
func discoverMigrations(dir string) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []Migration
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, name := parseFilename(entry.Name())
		if other, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %s (%s and %s)", version, other, entry.Name())
		}
		seen[version] = entry.Name()

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, Migration{
			Version: version,
			Name:    name,
			SQL:     string(data),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// parseFilename splits {version}_{name}.sql, the version being everything
// before the first underscore.
func parseFilename(filename string) (version, name string) {
	base := strings.TrimSuffix(filename, ".sql")
	version, name, found := strings.Cut(base, "_")
	if !found {
		return base, ""
	}
	return version, name
}

// statements splits migration SQL into executable statements: comment-only
// lines are stripped, the remainder is split on semicolons, and blank
// pieces are dropped.
func statements(sql string) []string {
	var kept []string
	for _, line := range strings.Split(sql, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}

	var result []string
	for _, piece := range strings.Split(strings.Join(kept, "\n"), ";") {
		if trimmed := strings.TrimSpace(piece); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
