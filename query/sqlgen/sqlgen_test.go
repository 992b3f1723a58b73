package sqlgen

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRelation struct{ name string }

func (r *testRelation) Render(b *Builder) error {
	b.WriteIdent(r.name)
	return nil
}

func (r *testRelation) RelationName() string { return r.name }

type testColumn struct {
	rel  *testRelation
	name string
}

func (c *testColumn) Render(b *Builder) error { return b.WriteColumn(c) }
func (c *testColumn) ColumnName() string      { return c.name }
func (c *testColumn) Relation() Relation      { return c.rel }

type upperEncoder struct{}

func (upperEncoder) EncodeValue(v interface{}) (interface{}, error) {
	return strings.ToUpper(v.(string)), nil
}

func TestNewDialect(t *testing.T) {
	tests := []struct {
		provider    string
		quoted      string
		placeholder string
	}{
		{provider: "postgres", quoted: `"a""b"`, placeholder: "$3"},
		{provider: "postgresql", quoted: `"a""b"`, placeholder: "$3"},
		{provider: "mysql", quoted: "`a\"b`", placeholder: "?"},
		{provider: "sqlite3", quoted: `"a""b"`, placeholder: "?"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			d, err := NewDialect(tt.provider)
			require.NoError(t, err)
			assert.Equal(t, tt.quoted, d.QuoteIdentifier(`a"b`))
			assert.Equal(t, tt.placeholder, d.Placeholder(3))
		})
	}

	_, err := NewDialect("oracle")
	assert.True(t, errors.Is(err, ErrUnknownProvider))
}

func TestExprParameterOrder(t *testing.T) {
	users := &testRelation{name: "users"}
	name := &testColumn{rel: users, name: "name"}

	inner := Expr("lower(?) = ?", name, "a")
	outer := Expr("? and coalesce(?, ?) ?? ?", inner, "b", Expr("?", "c"), "d")

	q, err := Build(Postgres, outer, nil)
	require.NoError(t, err)
	assert.Equal(t, `lower("users"."name") = $1 and coalesce($2, $3) ? $4`, q.SQL)
	assert.Equal(t, []interface{}{"a", "b", "c", "d"}, q.Args)
}

func TestExprArgumentMismatch(t *testing.T) {
	_, err := Build(Postgres, Expr("? = ?", 1), nil)
	assert.True(t, errors.Is(err, ErrTemplateArgs))

	_, err = Build(Postgres, Expr("?", 1, 2), nil)
	assert.True(t, errors.Is(err, ErrTemplateArgs))
}

func TestJoinSkipsNil(t *testing.T) {
	q, err := Build(MySQLDialect, Join([]Node{Raw("a"), nil, Name("b")}, ", "), nil)
	require.NoError(t, err)
	assert.Equal(t, "a, `b`", q.SQL)
}

func TestWriteColumnScope(t *testing.T) {
	users := &testRelation{name: "users"}
	cities := &testRelation{name: "cities"}

	b := NewBuilder(Postgres, nil)
	leave := b.EnterScope([]Relation{users})
	require.NoError(t, b.Render(&testColumn{rel: users, name: "id"}))

	err := b.Render(&testColumn{rel: cities, name: "id"})
	assert.True(t, errors.Is(err, ErrUnresolvedColumn))

	inner := b.EnterScope([]Relation{cities})
	assert.True(t, b.InScope(users), "parent scope stays visible")
	inner()
	leave()

	assert.Equal(t, `"users"."id"`, b.Query().SQL)
}

func TestUnqualified(t *testing.T) {
	users := &testRelation{name: "users"}
	b := NewBuilder(Postgres, nil)
	require.NoError(t, b.Unqualified(func() error {
		return b.Render(&testColumn{rel: users, name: "id"})
	}))
	b.WriteString(" ")
	require.NoError(t, b.Render(&testColumn{rel: users, name: "id"}))
	assert.Equal(t, `"id" "users"."id"`, b.Query().SQL)
}

func TestPlaceholderBinding(t *testing.T) {
	frag := Concat(
		Raw("select "),
		Param{Value: "x", Encoder: upperEncoder{}},
		Raw(", "),
		Param{Value: Named("name"), Encoder: upperEncoder{}},
		Raw(", "),
		Named("id"),
	)
	q, err := Build(Postgres, frag, nil)
	require.NoError(t, err)
	assert.Equal(t, "select $1, $2, $3", q.SQL)
	assert.Equal(t, []string{"name", "id"}, q.Placeholders())

	args, err := q.Bind(map[string]interface{}{"name": "john", "id": 7})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"X", "JOHN", 7}, args)

	again, err := q.Bind(map[string]interface{}{"name": "jane", "id": 8})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"X", "JANE", 8}, again)
	assert.Equal(t, BoundPlaceholder{Name: "name", Encoder: upperEncoder{}}, q.Args[1], "binding leaves the query untouched")

	_, err = q.Bind(map[string]interface{}{"name": "john"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingPlaceholder))
	assert.Contains(t, err.Error(), "id")
}

func TestAliasedRendersBareExpression(t *testing.T) {
	users := &testRelation{name: "users"}
	aliased := Expr("upper(?)", &testColumn{rel: users, name: "name"}).As("upper_name")

	q, err := Build(Postgres, Expr("length(?) >= ?", aliased, 3), nil)
	require.NoError(t, err)
	assert.Equal(t, `length(upper("users"."name")) >= $1`, q.SQL)
	assert.Equal(t, []interface{}{3}, q.Args)
}

func TestMapWithCopies(t *testing.T) {
	base := Expr("count(*)")
	mapped := base.MapWith(func(v interface{}) (interface{}, error) { return 1, nil })
	assert.Nil(t, base.Decoder())
	require.NotNil(t, mapped.Decoder())
	assert.NotNil(t, mapped.As("n").Decoder())
}

func TestNestedStatementNeedsRenderer(t *testing.T) {
	b := NewBuilder(Postgres, nil)
	assert.True(t, errors.Is(b.RenderStatement(Raw("x")), ErrNoStatementRenderer))
}
