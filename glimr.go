// Package glimr is a schema migration engine. Applications declare their
// tables as Go values, and glimr diffs the declaration against the snapshot
// of the last run, renders the difference as a versioned SQL migration file,
// and applies pending files against PostgreSQL or SQLite.
package glimr

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/glimrhq/glimr/internal/config"
	"github.com/glimrhq/glimr/internal/database"
	"github.com/glimrhq/glimr/internal/generate"
	"github.com/glimrhq/glimr/internal/migrate"
	"github.com/glimrhq/glimr/internal/schema"
	"github.com/glimrhq/glimr/internal/utils"
)

// Declaration types, re-exported so applications never import internal
// packages directly.
type (
	Table      = schema.Table
	Column     = schema.Column
	ColumnType = schema.ColumnType
	Default    = schema.Default

	Config          = config.Config
	Driver          = database.Driver
	GenerateOptions = generate.Options
	GenerateResult  = generate.Result
	MigrationStatus = migrate.Status
)

// Supported database drivers.
const (
	Postgres = database.Postgres
	Sqlite   = database.Sqlite
)

// Column type constructors.
var (
	ID            = schema.ID
	String        = schema.String
	Text          = schema.Text
	Int           = schema.Int
	BigInt        = schema.BigInt
	Float         = schema.Float
	Boolean       = schema.Boolean
	Timestamp     = schema.Timestamp
	UnixTimestamp = schema.UnixTimestamp
	Date          = schema.Date
	JSON          = schema.JSON
	UUID          = schema.UUID
	Foreign       = schema.Foreign
)

// Column default constructors.
var (
	StringDefault   = schema.StringDefault
	IntDefault      = schema.IntDefault
	FloatDefault    = schema.FloatDefault
	BoolDefault     = schema.BoolDefault
	NowDefault      = schema.NowDefault
	UnixNowDefault  = schema.UnixNowDefault
	AutoUUIDDefault = schema.AutoUUIDDefault
	NullDefault     = schema.NullDefault
)

// Config loading, re-exported from internal/config.
var (
	LoadConfig          = config.LoadConfig
	LoadConfigOrDefault = config.LoadConfigOrDefault
	DefaultConfig       = config.NewDefault
)

// Engine bundles migration generation and application over one configuration.
// Generate works without a database; call Connect before Migrate, Status or
// Rollback.
type Engine struct {
	cfg    *config.Config
	logger zerolog.Logger
	db     *database.Database
}

// New creates an Engine from a validated configuration.
func New(cfg *config.Config, logger zerolog.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: logger,
	}
}

// Generate diffs the declared tables against the saved snapshot and writes
// a migration file for the configured driver. No database connection is
// needed; generation only targets the dialect.
func (e *Engine) Generate(tables []Table, opts GenerateOptions) (*GenerateResult, error) {
	service := generate.NewService(e.cfg.Driver(), e.cfg.Migrations.Dir, e.cfg.Snapshot.Path, e.logger)
	return service.Run(tables, opts)
}

// Connect opens the configured database for the migration operations.
func (e *Engine) Connect() error {
	db := database.NewDatabase(e.cfg.DatabaseMap())
	if err := db.Connect(); err != nil {
		return err
	}
	e.db = db
	return nil
}

// Close releases the database connection. Safe to call without Connect.
func (e *Engine) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}

// Migrate applies every pending migration file and returns the versions
// applied in this run.
func (e *Engine) Migrate(ctx context.Context) ([]string, error) {
	runner, err := e.runner()
	if err != nil {
		return nil, err
	}
	return runner.Migrate(ctx)
}

// Status reports every migration file and whether it has been applied.
func (e *Engine) Status(ctx context.Context) ([]MigrationStatus, error) {
	runner, err := e.runner()
	if err != nil {
		return nil, err
	}
	return runner.Status(ctx)
}

// Rollback forgets an applied version without reversing its DDL.
func (e *Engine) Rollback(ctx context.Context, version string) error {
	runner, err := e.runner()
	if err != nil {
		return err
	}
	return runner.Rollback(ctx, version)
}

func (e *Engine) runner() (*migrate.Runner, error) {
	if e.db == nil {
		return nil, utils.WrapConnectionError(errors.New("engine is not connected"))
	}
	return migrate.NewRunner(e.db.Executor(), e.cfg.Migrations.Dir, e.logger), nil
}
