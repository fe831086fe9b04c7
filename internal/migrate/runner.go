package migrate

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/glimrhq/glimr/internal/database"
)

// TrackingTable is the table recording which versions have been applied.
const TrackingTable = "_glimr_migrations"

// trackingDDL holds the per-driver DDL for the tracking table.
var trackingDDL = map[database.Driver]string{
	database.Postgres: `CREATE TABLE IF NOT EXISTS ` + TrackingTable + ` (version VARCHAR(255) PRIMARY KEY, applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP)`,
	database.Sqlite:   `CREATE TABLE IF NOT EXISTS ` + TrackingTable + ` (version TEXT PRIMARY KEY, applied_at TEXT DEFAULT CURRENT_TIMESTAMP)`,
}

// Runner applies pending migration files from a directory and tracks
// applied versions in the database they ran against.
type Runner struct {
	executor database.Executor
	dir      string
	logger   zerolog.Logger
}

// NewRunner creates a migration runner reading .sql files from dir.
func NewRunner(executor database.Executor, dir string, logger zerolog.Logger) *Runner {
	return &Runner{
		executor: executor,
		dir:      dir,
		logger:   logger,
	}
}

// EnsureTable creates the tracking table if it does not exist.
func (r *Runner) EnsureTable(ctx context.Context) error {
	ddl, ok := trackingDDL[r.executor.Driver()]
	if !ok {
		return fmt.Errorf("no tracking table DDL for driver %q", r.executor.Driver())
	}
	if _, err := r.executor.Execute(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// AppliedVersions returns every recorded version, ordered ascending.
func (r *Runner) AppliedVersions(ctx context.Context) ([]string, error) {
	var applied []string
	query := fmt.Sprintf("SELECT version FROM %s ORDER BY version", TrackingTable)
	if err := r.executor.SelectAll(ctx, &applied, query); err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	return applied, nil
}

// Migrate applies every pending migration in version order and returns the
// versions newly applied in this run. Execution is fail-fast: on error the
// partial list covers everything recorded before the failing migration,
// whose own version is not recorded and whose earlier statements are not
// rolled back.
func (r *Runner) Migrate(ctx context.Context) ([]string, error) {
	logger := r.logger.With().Str("run_id", uuid.New().String()).Logger()

	// Ensure tracking table exists
	if err := r.EnsureTable(ctx); err != nil {
		return nil, err
	}

	// Get applied migrations
	applied, err := r.AppliedVersions(ctx)
	if err != nil {
		return nil, err
	}
	appliedMap := make(map[string]bool)
	for _, v := range applied {
		appliedMap[v] = true
	}

	migrations, err := discoverMigrations(r.dir)
	if err != nil {
		return nil, err
	}

	// Run pending migrations
	newlyApplied := []string{}
	for _, migration := range migrations {
		if appliedMap[migration.Version] {
			logger.Debug().
				Str("version", migration.Version).
				Str("name", migration.Name).
				Msg("Migration already applied, skipping")
			continue
		}

		logger.Info().
			Str("version", migration.Version).
			Str("name", migration.Name).
			Msg("Running migration")

		if err := r.apply(ctx, logger, migration); err != nil {
			return newlyApplied, err
		}
		newlyApplied = append(newlyApplied, migration.Version)

		logger.Info().
			Str("version", migration.Version).
			Str("name", migration.Name).
			Msg("Migration completed successfully")
	}

	return newlyApplied, nil
}

// apply executes one migration's statements and records its version.
func (r *Runner) apply(ctx context.Context, logger zerolog.Logger, migration Migration) error {
	for _, statement := range statements(migration.SQL) {
		if _, err := r.executor.Execute(ctx, statement); err != nil {
			logger.Error().
				Err(err).
				Str("version", migration.Version).
				Msg("Migration failed")
			return fmt.Errorf("migration %s failed: %w", migration.Version, err)
		}
	}

	query := fmt.Sprintf("INSERT INTO %s (version) VALUES (?)", TrackingTable)
	if _, err := r.executor.Execute(ctx, query, migration.Version); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
	}
	return nil
}

// Status reports every discovered migration in version order with its
// applied flag.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	if err := r.EnsureTable(ctx); err != nil {
		return nil, err
	}

	applied, err := r.AppliedVersions(ctx)
	if err != nil {
		return nil, err
	}
	appliedMap := make(map[string]bool)
	for _, v := range applied {
		appliedMap[v] = true
	}

	migrations, err := discoverMigrations(r.dir)
	if err != nil {
		return nil, err
	}

	statuses := make([]Status, 0, len(migrations))
	for _, migration := range migrations {
		statuses = append(statuses, Status{
			Version: migration.Version,
			Name:    migration.Name,
			Applied: appliedMap[migration.Version],
		})
	}
	return statuses, nil
}

// Rollback deletes the tracking row for a version so the migration is
// considered pending again. It never reverses DDL; rolling back a version
// that is not recorded is an error.
func (r *Runner) Rollback(ctx context.Context, version string) error {
	if err := r.EnsureTable(ctx); err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE version = ?", TrackingTable)
	affected, err := r.executor.Execute(ctx, query, version)
	if err != nil {
		return fmt.Errorf("failed to roll back migration %s: %w", version, err)
	}
	if affected == 0 {
		return fmt.Errorf("migration %s is not applied", version)
	}

	r.logger.Warn().
		Str("version", version).
		Msg("Rolled back migration record, schema was not changed")
	return nil
}
