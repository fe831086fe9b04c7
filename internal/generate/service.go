package generate

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/glimrhq/glimr/internal/database"
	"github.com/glimrhq/glimr/internal/diff"
	"github.com/glimrhq/glimr/internal/migrate"
	"github.com/glimrhq/glimr/internal/schema"
	"github.com/glimrhq/glimr/internal/snapshot"
	"github.com/glimrhq/glimr/internal/sqlgen"
	"github.com/glimrhq/glimr/internal/utils"
)

// Service turns a declared schema into migration files. Each run validates
// the declaration, diffs it against the last saved snapshot, renders the
// changes as SQL for the configured driver, and advances the snapshot.
type Service struct {
	driver        database.Driver
	migrationsDir string
	snapshotPath  string
	logger        zerolog.Logger
}

// Options controls a single generation run.
type Options struct {
	// Name becomes the migration filename suffix. Empty means "migration".
	Name string
	// Filter restricts the run to the named tables. Tables outside the
	// filter are left alone: they are neither diffed nor dropped.
	Filter []string
	// DryRun computes and reports changes without writing anything.
	DryRun bool
}

// Result describes what a generation run found and wrote.
type Result struct {
	Version string
	Name    string
	Path    string
	SQL     string
	Changes []string
}

// HasChanges reports whether the run detected any schema drift.
func (r *Result) HasChanges() bool {
	return len(r.Changes) > 0
}

// NewService creates a generation service for one target database driver.
func NewService(driver database.Driver, migrationsDir, snapshotPath string, logger zerolog.Logger) *Service {
	return &Service{
		driver:        driver,
		migrationsDir: migrationsDir,
		snapshotPath:  snapshotPath,
		logger:        logger,
	}
}

// Run executes one generation pass over the declared tables. When there are
// no changes no migration file is written, though the snapshot is still
// saved. On a dry run the SQL is rendered but neither the migration file
// nor the snapshot is written.
func (s *Service) Run(tables []schema.Table, opts Options) (*Result, error) {
	runLogger := s.logger.With().Str("run_id", uuid.New().String()).Logger()

	if err := schema.ValidateTables(tables); err != nil {
		return nil, err
	}

	selected, filtered, err := selectTables(tables, opts.Filter)
	if err != nil {
		return nil, err
	}

	previous := snapshot.Load(s.snapshotPath)
	current := snapshot.Build(selected)

	schemaDiff, err := diff.ComputeDiff(previous, current, selected, filtered)
	if err != nil {
		return nil, err
	}

	result := &Result{Name: sanitizeName(opts.Name)}
	for _, change := range schemaDiff.Changes {
		result.Changes = append(result.Changes, sqlgen.Describe(change))
	}

	// An unfiltered run replaces the snapshot outright so dropped tables
	// leave it. A filtered run only saw a subset, so it merges to keep the
	// tables outside the filter on disk.
	next := current
	if filtered {
		next = snapshot.Merge(previous, current)
	}

	if !schemaDiff.HasChanges() {
		runLogger.Info().Msg("No schema changes detected")
		if opts.DryRun {
			return result, nil
		}
		if err := snapshot.Save(s.snapshotPath, next); err != nil {
			return nil, err
		}
		return result, nil
	}

	result.SQL = sqlgen.Generate(schemaDiff, s.driver)
	for _, description := range result.Changes {
		runLogger.Info().Str("change", description).Msg("Detected schema change")
	}

	if opts.DryRun {
		runLogger.Info().
			Int("changes", len(result.Changes)).
			Msg("Dry run, skipping migration and snapshot write")
		return result, nil
	}

	result.Version = migrate.NextVersion(s.migrationsDir)
	path, err := migrate.WriteMigration(s.migrationsDir, result.Version, result.Name, result.SQL)
	if err != nil {
		return nil, err
	}
	result.Path = path

	if err := snapshot.Save(s.snapshotPath, next); err != nil {
		return nil, err
	}

	runLogger.Info().
		Str("version", result.Version).
		Str("path", path).
		Int("changes", len(result.Changes)).
		Msg("Generated migration")

	return result, nil
}

// selectTables resolves the filter against the declared tables, keeping
// declaration order. It reports whether filtering was in effect.
func selectTables(tables []schema.Table, filter []string) ([]schema.Table, bool, error) {
	if len(filter) == 0 {
		return tables, false, nil
	}

	want := make(map[string]bool, len(filter))
	for _, name := range filter {
		want[name] = true
	}

	selected := make([]schema.Table, 0, len(want))
	for _, table := range tables {
		if want[table.Name] {
			selected = append(selected, table)
			delete(want, table.Name)
		}
	}

	if len(want) > 0 {
		unknown := make([]string, 0, len(want))
		for name := range want {
			unknown = append(unknown, name)
		}
		sort.Strings(unknown)
		return nil, false, utils.WrapConfigError(unknown[0], "", "table is not declared")
	}
	return selected, true, nil
}

// sanitizeName reduces a human migration name to a filename-safe token.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('_')
		}
	}

	cleaned := strings.Trim(b.String(), "_")
	if cleaned == "" {
		return "migration"
	}
	return cleaned
}
