package database

import (
	"fmt"
	"strings"
)

// Driver identifies the SQL dialect the engine targets.
type Driver string

const (
	Postgres Driver = "postgres"
	Sqlite   Driver = "sqlite"
)

// ParseDriver normalizes a configured driver name.
func ParseDriver(name string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return Sqlite, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", name)
}
