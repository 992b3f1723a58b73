package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("HOME", t.TempDir())
	cfg, err := NewLoader(afero.NewMemMapFs()).Load("")
	require.NoError(t, err)
	assert.Equal(t, "schema.dsl", cfg.SchemaPath)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.Provider)
}

func TestLoadFileAndDotenv(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("HOME", t.TempDir())
	fs := afero.NewMemMapFs()
	require.NoError(t, Save(fs, &Config{SchemaPath: "db/app.dsl", Provider: "sqlite", LogFormat: "json"}, "conf/drizzle.yaml"))
	require.NoError(t, afero.WriteFile(fs, ".env", []byte("DATABASE_URL=file:app.db\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, ".env.local", []byte("DATABASE_URL=file:local.db\n"), 0o644))

	cfg, err := NewLoader(fs).Load("conf/drizzle.yaml")
	require.NoError(t, err)
	assert.Equal(t, "db/app.dsl", cfg.SchemaPath)
	assert.Equal(t, "sqlite", cfg.Provider)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "file:local.db", cfg.DatabaseURL)
}

func TestLoadEnvironmentWins(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DATABASE_URL", "root:pw@tcp(localhost:3306)/app")
	t.Setenv("DRIZZLE_SCHEMA", "from-env.dsl")
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, ".env", []byte("DATABASE_URL=file:app.db\n"), 0o644))

	cfg, err := NewLoader(fs).Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env.dsl", cfg.SchemaPath)
	assert.Equal(t, "root:pw@tcp(localhost:3306)/app", cfg.DatabaseURL)
	assert.Equal(t, "mysql", cfg.Provider)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := NewLoader(afero.NewMemMapFs()).Load("missing.yaml")
	assert.Error(t, err)
}

func TestDetectProvider(t *testing.T) {
	assert.Equal(t, "postgresql", DetectProvider("postgres://localhost/app"))
	assert.Equal(t, "mysql", DetectProvider("mysql://root@localhost/app"))
	assert.Equal(t, "mysql", DetectProvider("root@tcp(localhost:3306)/app"))
	assert.Equal(t, "sqlite", DetectProvider("file:app.db"))
	assert.Equal(t, "sqlite", DetectProvider(":memory:"))
}
