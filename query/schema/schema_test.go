package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katungi/drizzle-orm/query/sqlgen"
)

func usersTable(t *testing.T) *Table {
	t.Helper()
	users, err := NewTable("users", []ColumnDef{
		Col("id", NewColumn("id", "serial", KindInt).PrimaryKey()),
		Col("name", NewColumn("name", "text", KindString).NotNull()),
		Col("jsonb", NewColumn("jsonb", "jsonb", KindJSON)),
		Col("cityID", NewColumn("city_id", "integer", KindInt)),
	}, func(t *Table) []Constraint {
		return []Constraint{
			Index("").On(t.C("name")),
			UniqueIndex("users_name_city").On(t.C("name"), t.C("cityID")).Where(sqlgen.Raw("true")),
		}
	})
	require.NoError(t, err)
	return users
}

func TestNewTable(t *testing.T) {
	users := usersTable(t)

	assert.Equal(t, "users", users.Name())
	assert.Equal(t, "users", users.RelationName())
	require.Len(t, users.Columns(), 4)
	assert.Equal(t, "city_id", users.C("cityID").ColumnName())
	assert.True(t, users.C("id").IsNotNull(), "primary key implies not null")
	assert.Equal(t, []*Column{users.C("id")}, users.PrimaryKeyColumns())

	_, ok := users.Column("missing")
	assert.False(t, ok)
	assert.Panics(t, func() { users.C("missing") })

	constraints := users.Constraints()
	require.Len(t, constraints, 2)
	assert.Equal(t, "users_name_index", constraints[0].Name())
	assert.Equal(t, ConstraintUnique, constraints[1].Kind())
	assert.Equal(t, "users_name_city", constraints[1].Name())
}

func TestNewTableDefinitionErrors(t *testing.T) {
	_, err := NewTable("t", []ColumnDef{
		Col("a", NewColumn("a", "text", KindString)),
		Col("a", NewColumn("b", "text", KindString)),
	}, nil)
	assert.True(t, errors.Is(err, ErrDuplicateColumn))

	_, err = NewTable("t", []ColumnDef{
		Col("a", NewColumn("x", "text", KindString)),
		Col("b", NewColumn("x", "text", KindString)),
	}, nil)
	assert.True(t, errors.Is(err, ErrDuplicateColumn), "duplicate SQL names are rejected")

	other := MustTable("other", []ColumnDef{Col("id", NewColumn("id", "integer", KindInt))}, nil)
	_, err = NewTable("t", []ColumnDef{Col("id", NewColumn("id", "integer", KindInt))}, func(*Table) []Constraint {
		return []Constraint{Index("idx").On(other.C("id"))}
	})
	assert.True(t, errors.Is(err, ErrMalformedConstraint))

	_, err = NewTable("t", []ColumnDef{Col("id", NewColumn("id", "integer", KindInt))}, func(*Table) []Constraint {
		return []Constraint{Index("idx")}
	})
	assert.True(t, errors.Is(err, ErrMalformedConstraint), "index without columns")

	_, err = NewTable("t", []ColumnDef{Col("id", NewColumn("id", "integer", KindInt))}, func(t *Table) []Constraint {
		return []Constraint{Index("idx").On(t.C("id")), UniqueIndex("idx").On(t.C("id"))}
	})
	assert.True(t, errors.Is(err, ErrMalformedConstraint), "duplicate constraint names")

	assert.Panics(t, func() {
		MustTable("t", []ColumnDef{Col("id", NewColumn("id", "integer", KindInt))}, func(*Table) []Constraint {
			return []Constraint{Check("", sqlgen.Raw("true"))}
		})
	})
}

func TestCircularReferences(t *testing.T) {
	var cities *Table
	users := MustTable("users", []ColumnDef{
		Col("id", NewColumn("id", "serial", KindInt).PrimaryKey()),
		Col("cityID", NewColumn("city_id", "integer", KindInt).References(func() *Column { return cities.C("id") }).OnDelete("cascade")),
	}, nil)
	cities = MustTable("cities", []ColumnDef{
		Col("id", NewColumn("id", "serial", KindInt).PrimaryKey()),
		Col("mayorID", NewColumn("mayor_id", "integer", KindInt).References(func() *Column { return users.C("id") })),
	}, nil)

	assert.Same(t, cities.C("id"), users.C("cityID").Reference())
	assert.Same(t, users.C("id"), cities.C("mayorID").Reference())
	assert.Nil(t, users.C("id").Reference())

	fks := users.Constraints()
	require.Len(t, fks, 1)
	fk := fks[0].(ForeignKeyConstraint)
	assert.Equal(t, "users_city_id_fk", fk.Name())
	assert.Equal(t, "cascade", fk.OnDelete())
	assert.Equal(t, []*Column{cities.C("id")}, fk.ForeignColumns())
}

func TestCompositePrimaryKey(t *testing.T) {
	members := MustTable("members", []ColumnDef{
		Col("userID", NewColumn("user_id", "integer", KindInt).NotNull()),
		Col("groupID", NewColumn("group_id", "integer", KindInt).NotNull()),
	}, func(t *Table) []Constraint {
		return []Constraint{PrimaryKey(t.C("userID"), t.C("groupID"))}
	})

	assert.Equal(t, "members_user_id_group_id_pk", members.Constraints()[0].Name())
	alias := Alias(members, "m")
	assert.Equal(t, []*Column{alias.C("userID"), alias.C("groupID")}, alias.PrimaryKeyColumns())
}

func TestAlias(t *testing.T) {
	users := usersTable(t)
	customer := Alias(users, "customer")

	assert.True(t, customer.IsAlias())
	assert.Same(t, users, customer.Base())
	assert.Equal(t, "customer", customer.RelationName())
	assert.NotSame(t, users.C("id"), customer.C("id"))
	assert.Equal(t, users.C("id").SQLType(), customer.C("id").SQLType())
	assert.Same(t, customer, customer.C("id").Table())
	assert.Same(t, users, users.C("id").Table(), "the original is not mutated")

	again := Alias(customer, "other")
	assert.Same(t, users, again.Base())

	q, err := sqlgen.Build(sqlgen.Postgres, sqlgen.Expr("? ? = ?", customer, customer.C("id"), users.C("id")), nil)
	require.NoError(t, err)
	assert.Equal(t, `"users" "customer" "customer"."id" = "users"."id"`, q.SQL)
}

func TestColumnCodec(t *testing.T) {
	users := usersTable(t)

	encoded, err := users.C("jsonb").EncodeValue([]string{"foo", "bar"})
	require.NoError(t, err)
	assert.Equal(t, `["foo","bar"]`, encoded)

	decoded, err := users.C("jsonb").DecodeValue([]byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, decoded)

	id, err := users.C("id").DecodeValue([]byte("42"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	name, err := users.C("name").DecodeValue([]byte("John"))
	require.NoError(t, err)
	assert.Equal(t, "John", name)

	_, err = users.C("id").DecodeValue("x")
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestArrayColumns(t *testing.T) {
	table := MustTable("t", []ColumnDef{
		Col("tags", NewColumn("tags", "text", KindString).Array()),
		Col("matrix", NewColumn("matrix", "integer", KindInt).Array(2).Array()),
		Col("flags", NewColumn("flags", "boolean", KindBool).Array()),
	}, nil)

	assert.Equal(t, "text[]", table.C("tags").SQLType())
	assert.Equal(t, "integer[2][]", table.C("matrix").SQLType())
	assert.Equal(t, 2, table.C("matrix").Dimensions())

	encoded, err := table.C("tags").EncodeValue([]string{"a", "b c"})
	require.NoError(t, err)
	assert.Equal(t, `{"a","b c"}`, encoded)

	tags, err := table.C("tags").DecodeValue([]byte(`{a,"b c"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b c"}, tags)

	matrix, err := table.C("matrix").DecodeValue([]byte(`{{1,2},{3,NULL}}`))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{
		[]interface{}{int64(1), int64(2)},
		[]interface{}{int64(3), nil},
	}, matrix)

	flags, err := table.C("flags").DecodeValue("{t,f}")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, flags)

	_, err = table.C("matrix").DecodeValue("{{1,2}")
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestParseArrayLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want []interface{}
	}{
		{in: "{}", want: []interface{}{}},
		{in: `{"a\"b",NULL,c}`, want: []interface{}{`a"b`, nil, "c"}},
		{in: "[1:2]={x,y}", want: []interface{}{"x", "y"}},
		{in: "{{a},{b}}", want: []interface{}{[]interface{}{"a"}, []interface{}{"b"}}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseArrayLiteral(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseArrayLiteral("{a}b")
	assert.True(t, errors.Is(err, ErrArrayLiteral))
}

func TestDefaults(t *testing.T) {
	n := 0
	table := MustTable("t", []ColumnDef{
		Col("a", NewColumn("a", "integer", KindInt).Default(1)),
		Col("b", NewColumn("b", "timestamp", KindTime).DefaultNow()),
		Col("c", NewColumn("c", "integer", KindInt).DefaultFn(func() interface{} { n++; return n })),
		Col("d", NewColumn("d", "text", KindString).OneOf("x", "y")),
	}, nil)

	assert.Equal(t, DefaultStatic, table.C("a").Default().Kind)
	assert.Equal(t, DefaultDatabase, table.C("b").Default().Kind)
	_, ok := table.C("a").Default().Generate()
	assert.False(t, ok)

	v, ok := table.C("c").Default().Generate()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, err := table.C("d").EncodeValue("z")
	assert.True(t, errors.Is(err, ErrInvalidEnumValue))
	v, err = table.C("d").EncodeValue("x")
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}
