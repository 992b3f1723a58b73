package schema

import (
	"strconv"
	"strings"

	"github.com/katungi/drizzle-orm/query/sqlgen"
)

// DataKind drives how a column encodes and decodes values
type DataKind int

const (
	KindString DataKind = iota
	KindInt
	KindFloat
	KindNumeric
	KindBool
	KindJSON
	KindTime
	KindDate
)

func (k DataKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindNumeric:
		return "numeric"
	case KindBool:
		return "bool"
	case KindJSON:
		return "json"
	case KindTime:
		return "time"
	case KindDate:
		return "date"
	default:
		return "string"
	}
}

// DefaultKind is the default-value policy of a column
type DefaultKind int

const (
	DefaultNone DefaultKind = iota
	DefaultStatic
	DefaultDatabase
	DefaultApplication
)

// Default describes how a column obtains a value when a row omits it
type Default struct {
	Kind  DefaultKind
	Value interface{}
	SQL   sqlgen.Node
	Fn    func() interface{}
}

// Generate returns an application generated value, if the policy has one
func (d Default) Generate() (interface{}, bool) {
	if d.Kind != DefaultApplication || d.Fn == nil {
		return nil, false
	}
	return d.Fn(), true
}

// ColumnBuilder accumulates the definition of one column. Every method
// returns a modified copy.
type ColumnBuilder struct {
	name       string
	sqlType    string
	kind       DataKind
	dims       []int
	notNull    bool
	primary    bool
	unique     bool
	def        Default
	ref        func() *Column
	onDelete   string
	onUpdate   string
	enumValues []string
}

// NewColumn starts a column definition with a SQL name, type and data kind.
// An empty name takes the key the column is registered under.
func NewColumn(name, sqlType string, kind DataKind) ColumnBuilder {
	return ColumnBuilder{name: name, sqlType: sqlType, kind: kind}
}

func (b ColumnBuilder) NotNull() ColumnBuilder {
	b.notNull = true
	return b
}

// PrimaryKey marks the column as the primary key; it implies not null
func (b ColumnBuilder) PrimaryKey() ColumnBuilder {
	b.primary = true
	b.notNull = true
	return b
}

func (b ColumnBuilder) Unique() ColumnBuilder {
	b.unique = true
	return b
}

// Default sets a static default applied by the database
func (b ColumnBuilder) Default(value interface{}) ColumnBuilder {
	b.def = Default{Kind: DefaultStatic, Value: value}
	return b
}

// DefaultSQL sets a database generated default expression
func (b ColumnBuilder) DefaultSQL(expr sqlgen.Node) ColumnBuilder {
	b.def = Default{Kind: DefaultDatabase, SQL: expr}
	return b
}

func (b ColumnBuilder) DefaultNow() ColumnBuilder {
	return b.DefaultSQL(sqlgen.Raw("now()"))
}

func (b ColumnBuilder) DefaultRandom() ColumnBuilder {
	return b.DefaultSQL(sqlgen.Raw("gen_random_uuid()"))
}

// DefaultFn sets an application generated default. fn runs once for each
// inserted row that omits the column.
func (b ColumnBuilder) DefaultFn(fn func() interface{}) ColumnBuilder {
	b.def = Default{Kind: DefaultApplication, Fn: fn}
	return b
}

// References declares a foreign key to the column returned by target. The
// function is only called when the reference is resolved, so tables may
// reference each other.
func (b ColumnBuilder) References(target func() *Column) ColumnBuilder {
	b.ref = target
	return b
}

func (b ColumnBuilder) OnDelete(action string) ColumnBuilder {
	b.onDelete = action
	return b
}

func (b ColumnBuilder) OnUpdate(action string) ColumnBuilder {
	b.onUpdate = action
	return b
}

// Array adds one array dimension. A zero or missing size leaves the
// dimension unsized.
func (b ColumnBuilder) Array(size ...int) ColumnBuilder {
	n := 0
	if len(size) > 0 {
		n = size[0]
	}
	dims := make([]int, len(b.dims), len(b.dims)+1)
	copy(dims, b.dims)
	b.dims = append(dims, n)
	return b
}

// OneOf restricts the column to a fixed set of values
func (b ColumnBuilder) OneOf(values ...string) ColumnBuilder {
	b.enumValues = append([]string(nil), values...)
	return b
}

// ColumnDef registers a column builder under a logical key
type ColumnDef struct {
	Key     string
	Builder ColumnBuilder
}

// Col pairs a key with a column builder
func Col(key string, b ColumnBuilder) ColumnDef {
	return ColumnDef{Key: key, Builder: b}
}

// Column is a column bound to a table or table alias
type Column struct {
	key        string
	name       string
	sqlType    string
	kind       DataKind
	dims       []int
	notNull    bool
	primary    bool
	unique     bool
	def        Default
	ref        func() *Column
	onDelete   string
	onUpdate   string
	enumValues []string
	table      *Table
}

func newColumn(key string, b ColumnBuilder, t *Table) *Column {
	name := b.name
	if name == "" {
		name = key
	}
	return &Column{
		key:        key,
		name:       name,
		sqlType:    b.sqlType,
		kind:       b.kind,
		dims:       b.dims,
		notNull:    b.notNull,
		primary:    b.primary,
		unique:     b.unique,
		def:        b.def,
		ref:        b.ref,
		onDelete:   b.onDelete,
		onUpdate:   b.onUpdate,
		enumValues: b.enumValues,
		table:      t,
	}
}

// Key returns the logical key of the column
func (c *Column) Key() string { return c.key }

// ColumnName returns the SQL name of the column
func (c *Column) ColumnName() string { return c.name }

// Relation returns the table or alias the column belongs to
func (c *Column) Relation() sqlgen.Relation { return c.table }

// Table returns the table or alias the column belongs to
func (c *Column) Table() *Table { return c.table }

// SQLType returns the declared type including array dimensions
func (c *Column) SQLType() string {
	var sb strings.Builder
	sb.WriteString(c.sqlType)
	for _, d := range c.dims {
		if d > 0 {
			sb.WriteString("[" + strconv.Itoa(d) + "]")
		} else {
			sb.WriteString("[]")
		}
	}
	return sb.String()
}

func (c *Column) Kind() DataKind { return c.kind }

// Dimensions returns the number of array dimensions, zero for scalars
func (c *Column) Dimensions() int { return len(c.dims) }

func (c *Column) IsNotNull() bool { return c.notNull }

func (c *Column) IsPrimaryKey() bool { return c.primary }

func (c *Column) IsUnique() bool { return c.unique }

func (c *Column) Default() Default { return c.def }

// EnumValues returns the allowed values of an enum column
func (c *Column) EnumValues() []string {
	return append([]string(nil), c.enumValues...)
}

// Reference resolves the foreign key target, or nil when the column has none
func (c *Column) Reference() *Column {
	if c.ref == nil {
		return nil
	}
	return c.ref()
}

// HasReference reports whether a foreign key target was declared
func (c *Column) HasReference() bool { return c.ref != nil }

// Render writes the column reference
func (c *Column) Render(b *sqlgen.Builder) error {
	return b.WriteColumn(c)
}

// Decoder returns the column itself; columns decode their own values
func (c *Column) Decoder() sqlgen.Decoder { return c }

func (c *Column) String() string {
	return c.table.RelationName() + "." + c.name
}
