// Package columns provides typed column constructors for table definitions.
package columns

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/katungi/drizzle-orm/query/schema"
)

// Serial is an auto-incrementing integer
func Serial(name string) schema.ColumnBuilder {
	return schema.NewColumn(name, "serial", schema.KindInt)
}

func Integer(name string) schema.ColumnBuilder {
	return schema.NewColumn(name, "integer", schema.KindInt)
}

func BigInt(name string) schema.ColumnBuilder {
	return schema.NewColumn(name, "bigint", schema.KindInt)
}

func Text(name string) schema.ColumnBuilder {
	return schema.NewColumn(name, "text", schema.KindString)
}

// Varchar is a variable length string; a zero length leaves it unbounded
func Varchar(name string, length int) schema.ColumnBuilder {
	if length <= 0 {
		return schema.NewColumn(name, "varchar", schema.KindString)
	}
	return schema.NewColumn(name, fmt.Sprintf("varchar(%d)", length), schema.KindString)
}

func Char(name string, length int) schema.ColumnBuilder {
	if length <= 0 {
		return schema.NewColumn(name, "char", schema.KindString)
	}
	return schema.NewColumn(name, fmt.Sprintf("char(%d)", length), schema.KindString)
}

func Boolean(name string) schema.ColumnBuilder {
	return schema.NewColumn(name, "boolean", schema.KindBool)
}

// Numeric decodes to its exact string representation
func Numeric(name string, precision, scale int) schema.ColumnBuilder {
	switch {
	case precision > 0 && scale > 0:
		return schema.NewColumn(name, fmt.Sprintf("numeric(%d, %d)", precision, scale), schema.KindNumeric)
	case precision > 0:
		return schema.NewColumn(name, fmt.Sprintf("numeric(%d)", precision), schema.KindNumeric)
	default:
		return schema.NewColumn(name, "numeric", schema.KindNumeric)
	}
}

func Real(name string) schema.ColumnBuilder {
	return schema.NewColumn(name, "real", schema.KindFloat)
}

func DoublePrecision(name string) schema.ColumnBuilder {
	return schema.NewColumn(name, "double precision", schema.KindFloat)
}

// JSON stores values as json text
func JSON(name string) schema.ColumnBuilder {
	return schema.NewColumn(name, "json", schema.KindJSON)
}

// JSONB stores values as binary json
func JSONB(name string) schema.ColumnBuilder {
	return schema.NewColumn(name, "jsonb", schema.KindJSON)
}

func Timestamp(name string) schema.ColumnBuilder {
	return schema.NewColumn(name, "timestamp", schema.KindTime)
}

func TimestampTZ(name string) schema.ColumnBuilder {
	return schema.NewColumn(name, "timestamp with time zone", schema.KindTime)
}

func Date(name string) schema.ColumnBuilder {
	return schema.NewColumn(name, "date", schema.KindDate)
}

func UUID(name string) schema.ColumnBuilder {
	return schema.NewColumn(name, "uuid", schema.KindString)
}

// DefaultRandomApp generates a random UUID for every inserted row that
// omits the column
func DefaultRandomApp(b schema.ColumnBuilder) schema.ColumnBuilder {
	return b.DefaultFn(func() interface{} { return uuid.NewString() })
}

func Inet(name string) schema.ColumnBuilder {
	return schema.NewColumn(name, "inet", schema.KindString)
}

func Cidr(name string) schema.ColumnBuilder {
	return schema.NewColumn(name, "cidr", schema.KindString)
}

func MacAddr(name string) schema.ColumnBuilder {
	return schema.NewColumn(name, "macaddr", schema.KindString)
}

func MacAddr8(name string) schema.ColumnBuilder {
	return schema.NewColumn(name, "macaddr8", schema.KindString)
}

// Enum is a column of the named enum type restricted to values
func Enum(name, typeName string, values ...string) schema.ColumnBuilder {
	return schema.NewColumn(name, typeName, schema.KindString).OneOf(values...)
}

// ByType returns a builder for a SQL type name as written in a schema file
func ByType(name, sqlType string) (schema.ColumnBuilder, error) {
	switch sqlType {
	case "serial":
		return Serial(name), nil
	case "integer", "int", "int4":
		return Integer(name), nil
	case "bigint", "int8":
		return BigInt(name), nil
	case "text":
		return Text(name), nil
	case "varchar":
		return Varchar(name, 0), nil
	case "char":
		return Char(name, 0), nil
	case "boolean", "bool":
		return Boolean(name), nil
	case "numeric", "decimal":
		return Numeric(name, 0, 0), nil
	case "real", "float4":
		return Real(name), nil
	case "double", "float8":
		return DoublePrecision(name), nil
	case "json":
		return JSON(name), nil
	case "jsonb":
		return JSONB(name), nil
	case "timestamp":
		return Timestamp(name), nil
	case "timestamptz":
		return TimestampTZ(name), nil
	case "date":
		return Date(name), nil
	case "uuid":
		return UUID(name), nil
	case "inet":
		return Inet(name), nil
	case "cidr":
		return Cidr(name), nil
	case "macaddr":
		return MacAddr(name), nil
	case "macaddr8":
		return MacAddr8(name), nil
	default:
		return schema.ColumnBuilder{}, fmt.Errorf("%w: %s", ErrUnknownType, sqlType)
	}
}
