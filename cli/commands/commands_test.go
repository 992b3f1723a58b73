package commands

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katungi/drizzle-orm/cli/internal/config"
	"github.com/katungi/drizzle-orm/psl"
	"github.com/katungi/drizzle-orm/query/builder"
	"github.com/katungi/drizzle-orm/query/sqlgen"
)

const testSchema = `
table cities {
  id   integer @pk
  name text
}

table users {
  id     integer @pk
  name   text    @notnull
  cityId integer @map("city_id") @references(cities.id)

  @@check("users_name_len", "length(name) > 0")
}
`

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DATABASE_URL", "")
}

func run(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(fs)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestInitCreatesProject(t *testing.T) {
	isolate(t)
	fs := afero.NewMemMapFs()

	out, err := run(t, fs, "init", "app", "--yes", "--with-provider", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "created")

	for _, path := range []string{"app/.drizzle-go.yaml", "app/schema.dsl", "app/.env.example"} {
		exists, err := afero.Exists(fs, path)
		require.NoError(t, err)
		assert.True(t, exists, path)
	}
	cfg, err := config.NewLoader(fs).Load("app/.drizzle-go.yaml")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Provider)
	assert.Equal(t, "schema.dsl", cfg.SchemaPath)

	sample, err := afero.ReadFile(fs, "app/schema.dsl")
	require.NoError(t, err)
	_, err = psl.ParseString("schema.dsl", string(sample))
	require.NoError(t, err)

	out, err = run(t, fs, "init", "app", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	_, err = run(t, fs, "init", "other", "--yes", "--with-provider", "oracle")
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	isolate(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "schema.dsl", []byte(testSchema), 0o644))

	out, err := run(t, fs, "describe")
	require.NoError(t, err)
	assert.Contains(t, out, "city_id")
	assert.Contains(t, out, "cities.id")
	assert.Contains(t, out, "users_name_len")
	assert.Contains(t, out, "2 table(s)")

	_, err = run(t, fs, "describe", "missing.dsl")
	assert.Error(t, err)
}

func TestDescribeMarkdown(t *testing.T) {
	s := psl.MustParseString("schema.dsl", testSchema)
	md := describeMarkdown(s, "schema.dsl")
	assert.Contains(t, md, "## users")
	assert.Contains(t, md, "| cityId | city_id | integer |  |  |  |  | cities.id |")
	assert.Contains(t, md, "`users_name_len` (length(name) > 0)")
}

func TestBuildSelect(t *testing.T) {
	s := psl.MustParseString("schema.dsl", testSchema)
	users, _ := s.Table("users")

	sel, err := buildSelect(builder.New(sqlgen.SQLiteDialect), users, selectOptions{
		columns: []string{"id", "name"},
		where:   []string{"name=John", "cityId=null"},
		order:   []string{"-id"},
		limit:   5,
	})
	require.NoError(t, err)
	q, err := sel.ToSQL()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(q.SQL, `select "id", "name" from "users" where`), q.SQL)
	assert.Contains(t, q.SQL, `"users"."name" = ?`)
	assert.Contains(t, q.SQL, `"users"."city_id" is null`)
	assert.Contains(t, q.SQL, `desc`)
	assert.Equal(t, []interface{}{"John", 5}, q.Args)

	_, err = buildSelect(builder.New(sqlgen.SQLiteDialect), users, selectOptions{where: []string{"id=abc"}, limit: -1})
	assert.Error(t, err)
	_, err = buildSelect(builder.New(sqlgen.SQLiteDialect), users, selectOptions{columns: []string{"missing"}, limit: -1})
	assert.Error(t, err)
	_, err = buildSelect(builder.New(sqlgen.SQLiteDialect), users, selectOptions{where: []string{"name"}, limit: -1})
	assert.Error(t, err)
}

func TestSelectDryRun(t *testing.T) {
	isolate(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "schema.dsl", []byte(testSchema), 0o644))

	out, err := run(t, fs, "select", "users", "--where", "id=1", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, `"users"."id" = $1`)

	_, err = run(t, fs, "select", "orders", "--dry-run")
	assert.ErrorIs(t, err, errUnknownTable)
}

func TestCommandsRequireDatabaseURL(t *testing.T) {
	isolate(t)
	_, err := run(t, afero.NewMemMapFs(), "ping")
	assert.ErrorIs(t, err, errNoDatabaseURL)
}

func TestSQLiteCommands(t *testing.T) {
	isolate(t)
	dbPath := filepath.Join(t.TempDir(), "app.db")
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	if err := db.Ping(); err != nil {
		t.Skipf("sqlite3 unavailable: %v", err)
	}
	db.Close()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "schema.dsl", []byte(testSchema), 0o644))
	conn := []string{"--provider", "sqlite", "--url", "file:" + dbPath}

	_, err = run(t, fs, append([]string{"sql", "create table users (id integer primary key, name text not null, city_id integer)"}, conn...)...)
	require.NoError(t, err)
	_, err = run(t, fs, append([]string{"sql", "insert into users (id, name) values (?, ?)", "1", "John"}, conn...)...)
	require.NoError(t, err)

	out, err := run(t, fs, append([]string{"sql", "select name from users where id = ?", "1"}, conn...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "John")
	assert.Contains(t, out, "1 row(s)")

	out, err = run(t, fs, append([]string{"select", "users", "--where", "name=John"}, conn...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "John")

	out, err = run(t, fs, append([]string{"ping"}, conn...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "connected to sqlite")
	assert.Contains(t, out, "server version")
}
