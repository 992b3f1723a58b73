package columns

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katungi/drizzle-orm/query/schema"
)

func TestColumnTypes(t *testing.T) {
	table := schema.MustTable("all_types", []schema.ColumnDef{
		schema.Col("id", Serial("id").PrimaryKey()),
		schema.Col("name", Varchar("name", 256)),
		schema.Col("code", Char("code", 2)),
		schema.Col("price", Numeric("price", 10, 2)),
		schema.Col("score", DoublePrecision("score")),
		schema.Col("ip", Inet("ip")),
		schema.Col("net", Cidr("net")),
		schema.Col("mac", MacAddr8("mac")),
		schema.Col("mood", Enum("mood", "mood", "happy", "sad")),
		schema.Col("matrix", Integer("matrix").Array().Array()),
		schema.Col("created", TimestampTZ("created").DefaultNow()),
	}, nil)

	tests := map[string]string{
		"id":      "serial",
		"name":    "varchar(256)",
		"code":    "char(2)",
		"price":   "numeric(10, 2)",
		"score":   "double precision",
		"ip":      "inet",
		"net":     "cidr",
		"mac":     "macaddr8",
		"mood":    "mood",
		"matrix":  "integer[][]",
		"created": "timestamp with time zone",
	}
	for key, want := range tests {
		assert.Equal(t, want, table.C(key).SQLType(), key)
	}
	assert.Equal(t, []string{"happy", "sad"}, table.C("mood").EnumValues())
}

func TestDefaultRandomApp(t *testing.T) {
	table := schema.MustTable("t", []schema.ColumnDef{
		schema.Col("id", DefaultRandomApp(UUID("id")).PrimaryKey()),
	}, nil)

	first, ok := table.C("id").Default().Generate()
	require.True(t, ok)
	second, _ := table.C("id").Default().Generate()
	assert.NotEqual(t, first, second)

	_, err := uuid.Parse(first.(string))
	assert.NoError(t, err)
}

func TestByType(t *testing.T) {
	b, err := ByType("email", "text")
	require.NoError(t, err)
	table := schema.MustTable("t", []schema.ColumnDef{schema.Col("email", b)}, nil)
	assert.Equal(t, "text", table.C("email").SQLType())

	_, err = ByType("x", "geometry")
	assert.True(t, errors.Is(err, ErrUnknownType))
}
