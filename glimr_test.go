package glimr

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimrhq/glimr/internal/utils"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Database.Driver = "sqlite"
	cfg.Database.Path = filepath.Join(dir, "glimr_test.db")
	cfg.Migrations.Dir = filepath.Join(dir, "migrations")
	cfg.Snapshot.Path = filepath.Join(dir, "schema_snapshot.json")
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestEngine_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	engine := New(cfg, zerolog.Nop())
	ctx := context.Background()

	tables := []Table{
		{
			Name: "users",
			Columns: []Column{
				{Name: "id", Type: ID()},
				{Name: "email", Type: String(255)},
				{Name: "created_at", Type: Timestamp(), Default: NowDefault()},
			},
		},
		{
			Name: "posts",
			Columns: []Column{
				{Name: "id", Type: ID()},
				{Name: "user_id", Type: Foreign("users")},
				{Name: "title", Type: String(200)},
				{Name: "body", Type: Text(), Nullable: true},
			},
		},
	}

	// Generate the initial migration
	first, err := engine.Generate(tables, GenerateOptions{Name: "init"})
	require.NoError(t, err)
	require.True(t, first.HasChanges())
	require.FileExists(t, first.Path)

	// Apply it against a real sqlite database
	require.NoError(t, engine.Connect())
	defer engine.Close()

	applied, err := engine.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{first.Version}, applied)

	// Re-running is a no-op
	applied, err = engine.Migrate(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)

	// Regenerating without declaration changes writes no migration
	unchanged, err := engine.Generate(tables, GenerateOptions{Name: "noop"})
	require.NoError(t, err)
	assert.False(t, unchanged.HasChanges())

	// Add a column and roll the schema forward
	tables[0].Columns = append(tables[0].Columns, Column{
		Name:    "karma",
		Type:    Int(),
		Default: IntDefault(0),
	})

	second, err := engine.Generate(tables, GenerateOptions{Name: "add karma"})
	require.NoError(t, err)
	assert.Equal(t, []string{"add column users.karma"}, second.Changes)
	assert.NotEqual(t, first.Version, second.Version)

	applied, err = engine.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{second.Version}, applied)

	// Both migrations are recorded
	statuses, err := engine.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	for _, status := range statuses {
		assert.True(t, status.Applied, "expected %s to be applied", status.Version)
	}

	// Rollback forgets the record without touching the schema
	require.NoError(t, engine.Rollback(ctx, second.Version))

	statuses, err = engine.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].Applied)
	assert.False(t, statuses[1].Applied)
}

func TestEngine_RequiresConnect(t *testing.T) {
	engine := New(testConfig(t), zerolog.Nop())
	ctx := context.Background()

	_, err := engine.Migrate(ctx)
	require.Error(t, err)
	assert.True(t, utils.IsConnectionError(err))

	_, err = engine.Status(ctx)
	assert.Error(t, err)

	err = engine.Rollback(ctx, "20251217120000")
	assert.Error(t, err)

	// Close without Connect is safe
	assert.NoError(t, engine.Close())
}

func TestEngine_GenerateDryRun(t *testing.T) {
	engine := New(testConfig(t), zerolog.Nop())

	tables := []Table{
		{Name: "users", Columns: []Column{{Name: "id", Type: ID()}}},
	}

	result, err := engine.Generate(tables, GenerateOptions{Name: "preview", DryRun: true})
	require.NoError(t, err)
	assert.True(t, result.HasChanges())
	assert.Contains(t, result.SQL, "CREATE TABLE users")
	assert.Empty(t, result.Path)
}

func TestDeclarationHelpers(t *testing.T) {
	assert.Equal(t, "String", string(String(100).Kind))
	assert.Equal(t, 100, String(100).MaxLen)
	assert.Equal(t, "users", Foreign("users").References)
	assert.Equal(t, "AutoUuid", string(AutoUUIDDefault().Kind))
	assert.Equal(t, Postgres, DefaultConfig().Driver())
}
