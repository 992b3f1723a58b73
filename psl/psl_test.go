package psl

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katungi/drizzle-orm/query/builder"
	"github.com/katungi/drizzle-orm/query/columns"
	"github.com/katungi/drizzle-orm/query/expr"
	"github.com/katungi/drizzle-orm/query/schema"
	"github.com/katungi/drizzle-orm/query/sqlgen"
)

const shopSchema = `
// shop tables
enum mood { sad, ok, happy }

table cities {
  id   serial @pk
  name text   @notnull
}

table users {
  id        serial        @pk
  name      text          @notnull @default("anon")
  cityId    integer       @map("city_id") @references(cities.id, onDelete: "cascade")
  mood      mood
  tags      text[]
  grid      integer[3][]
  email     varchar(255)  @unique
  balance   numeric(10, 2) @default(0)
  token     uuid          @default(uuid())
  createdAt timestamp     @map("created_at") @default(now())

  @@index([cityId, name], name: "users_city_idx", using: "btree")
  @@unique([email, cityId])
  @@check("users_name_len", "length(name) > 0")
}

table memberships { userId integer; cityId integer; @@id([userId, cityId]) }
`

func TestParseSchema(t *testing.T) {
	s, err := ParseString("shop.schema", shopSchema)
	require.NoError(t, err)
	require.Len(t, s.Tables, 3)
	assert.Equal(t, []Enum{{Name: "mood", Values: []string{"sad", "ok", "happy"}}}, s.Enums)

	users, ok := s.Table("users")
	require.True(t, ok)

	id := users.C("id")
	assert.True(t, id.IsPrimaryKey())
	assert.Equal(t, "serial", id.SQLType())

	name := users.C("name")
	assert.True(t, name.IsNotNull())
	assert.Equal(t, schema.DefaultStatic, name.Default().Kind)
	assert.Equal(t, "anon", name.Default().Value)

	_, ok = users.Column("city_id")
	assert.False(t, ok)
	cityID, ok := users.Column("cityId")
	require.True(t, ok)
	assert.Equal(t, "city_id", cityID.ColumnName())
	cities, _ := s.Table("cities")
	assert.Same(t, cities.C("id"), cityID.Reference())

	assert.Equal(t, []string{"sad", "ok", "happy"}, users.C("mood").EnumValues())
	assert.Equal(t, 1, users.C("tags").Dimensions())
	assert.Equal(t, 2, users.C("grid").Dimensions())
	assert.Equal(t, "varchar(255)", users.C("email").SQLType())
	assert.True(t, users.C("email").IsUnique())
	assert.Equal(t, int64(0), users.C("balance").Default().Value)
	assert.Equal(t, schema.DefaultApplication, users.C("token").Default().Kind)
	assert.Equal(t, schema.DefaultDatabase, users.C("createdAt").Default().Kind)

	kinds := map[schema.ConstraintKind]int{}
	for _, c := range users.Constraints() {
		kinds[c.Kind()]++
	}
	assert.Equal(t, 1, kinds[schema.ConstraintForeignKey])
	assert.Equal(t, 1, kinds[schema.ConstraintCheck])

	memberships, _ := s.Table("memberships")
	assert.Len(t, memberships.PrimaryKeyColumns(), 2)
}

func TestParsedTablesCompile(t *testing.T) {
	s := MustParseString("shop.schema", shopSchema)
	users, _ := s.Table("users")
	q, err := builder.New(sqlgen.Postgres).
		Select(builder.Fields{"id": users.C("id")}).
		From(users).
		Where(expr.Eq(users.C("cityId"), 1)).
		ToSQL()
	require.NoError(t, err)
	assert.Equal(t, `select "id" from "users" where "users"."city_id" = $1`, q.SQL)
	assert.Equal(t, []interface{}{1}, q.Args)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
	}{
		{"syntax", `table users { id serial @pk`, ErrSyntax},
		{"duplicate table", `table a { id integer } table a { id integer }`, ErrDuplicateTable},
		{"duplicate enum", `enum e { x } enum e { y }`, ErrDuplicateEnum},
		{"unknown type", `table a { id money }`, columns.ErrUnknownType},
		{"unknown attribute", `table a { id integer @primary }`, ErrUnknownAttribute},
		{"unknown block attribute", `table a { id integer @@fulltext([id]) }`, ErrUnknownAttribute},
		{"dangling reference", `table a { bID integer @references(b.id) }`, ErrUnknownReference},
		{"bad reference", `table a { bID integer @references(b) }`, ErrInvalidArgument},
		{"bad default", `table a { id integer @default(next()) }`, ErrInvalidArgument},
		{"index column", `table a { id integer @@index([missing]) }`, schema.ErrUnknownColumn},
		{"type params", `table a { id integer(4) }`, ErrInvalidTypeParams},
		{"duplicate column", `table a { id integer id text }`, schema.ErrDuplicateColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString("bad.schema", tt.input)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/app/schema.dsl", []byte(shopSchema), 0o644))

	s, err := Load(fs, "/app/schema.dsl")
	require.NoError(t, err)
	assert.Len(t, s.Tables, 3)

	_, err = Load(fs, "/app/missing.dsl")
	assert.Error(t, err)
}
