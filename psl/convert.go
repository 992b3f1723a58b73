package psl

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/katungi/drizzle-orm/query/columns"
	"github.com/katungi/drizzle-orm/query/schema"
	"github.com/katungi/drizzle-orm/query/sqlgen"
)

// Enum is a declared enum type
type Enum struct {
	Name   string
	Values []string
}

// Schema is the result of loading a schema file. Tables keep declaration
// order.
type Schema struct {
	Tables []*schema.Table
	Enums  []Enum

	byName map[string]*schema.Table
}

// Table returns the table declared with name
func (s *Schema) Table(name string) (*schema.Table, bool) {
	t, ok := s.byName[name]
	return t, ok
}

type converter struct {
	enums map[string]Enum
	out   *Schema
	refs  []pendingRef
}

type pendingRef struct {
	at     string
	table  string
	column string
}

func convert(file *File) (*Schema, error) {
	c := &converter{
		enums: make(map[string]Enum),
		out:   &Schema{byName: make(map[string]*schema.Table)},
	}
	for _, item := range file.Items {
		if item.Enum == nil {
			continue
		}
		if _, exists := c.enums[item.Enum.Name]; exists {
			return nil, fmt.Errorf("%s: %w: %s", item.Pos, ErrDuplicateEnum, item.Enum.Name)
		}
		e := Enum{Name: item.Enum.Name, Values: item.Enum.Values}
		c.enums[e.Name] = e
		c.out.Enums = append(c.out.Enums, e)
	}
	for _, item := range file.Items {
		if item.Table == nil {
			continue
		}
		if err := c.table(item.Table); err != nil {
			return nil, err
		}
	}
	// references resolve lazily, so check them once every table exists
	for _, ref := range c.refs {
		if c.lookup(ref.table, ref.column) == nil {
			return nil, fmt.Errorf("%s: %w: %s.%s", ref.at, ErrUnknownReference, ref.table, ref.column)
		}
	}
	return c.out, nil
}

func (c *converter) lookup(table, key string) *schema.Column {
	t, ok := c.out.byName[table]
	if !ok {
		return nil
	}
	col, _ := t.Column(key)
	return col
}

func (c *converter) table(decl *TableDecl) error {
	if _, exists := c.out.byName[decl.Name]; exists {
		return fmt.Errorf("%s: %w: %s", decl.Pos, ErrDuplicateTable, decl.Name)
	}
	var (
		defs  []schema.ColumnDef
		block []*BlockAttribute
	)
	for _, entry := range decl.Entries {
		if entry.Attribute != nil {
			block = append(block, entry.Attribute)
			continue
		}
		b, err := c.column(entry.Column)
		if err != nil {
			return err
		}
		defs = append(defs, schema.Col(entry.Column.Key, b))
	}

	var blockErr error
	t, err := schema.NewTable(decl.Name, defs, func(t *schema.Table) []schema.Constraint {
		out := make([]schema.Constraint, 0, len(block))
		for _, attr := range block {
			con, err := blockConstraint(t, attr)
			if err != nil {
				blockErr = err
				return nil
			}
			out = append(out, con)
		}
		return out
	})
	if blockErr != nil {
		return blockErr
	}
	if err != nil {
		return fmt.Errorf("%s: %w", decl.Pos, err)
	}
	c.out.byName[decl.Name] = t
	c.out.Tables = append(c.out.Tables, t)
	return nil
}

func (c *converter) column(decl *ColumnDecl) (schema.ColumnBuilder, error) {
	name := decl.Key
	for _, attr := range decl.Attributes {
		if attr.Name == "map" {
			s, err := stringArg(attr.Pos, attr.Name, attr.Args, 0, "")
			if err != nil {
				return schema.ColumnBuilder{}, err
			}
			name = s
		}
	}
	b, err := c.columnType(name, decl.Type)
	if err != nil {
		return b, err
	}
	for _, attr := range decl.Attributes {
		if b, err = c.applyAttribute(b, attr); err != nil {
			return b, err
		}
	}
	return b, nil
}

func (c *converter) columnType(name string, ref *TypeRef) (schema.ColumnBuilder, error) {
	params := make([]int, len(ref.Params))
	for i, p := range ref.Params {
		n, err := strconv.Atoi(p)
		if err != nil {
			return schema.ColumnBuilder{}, fmt.Errorf("%s: %w: %s", ref.Pos, ErrInvalidTypeParams, ref.Name)
		}
		params[i] = n
	}

	var (
		b   schema.ColumnBuilder
		err error
	)
	switch {
	case ref.Name == "varchar" && len(params) == 1:
		b = columns.Varchar(name, params[0])
	case ref.Name == "char" && len(params) == 1:
		b = columns.Char(name, params[0])
	case (ref.Name == "numeric" || ref.Name == "decimal") && len(params) <= 2:
		precision, scale := 0, 0
		if len(params) > 0 {
			precision = params[0]
		}
		if len(params) > 1 {
			scale = params[1]
		}
		b = columns.Numeric(name, precision, scale)
	case len(params) > 0:
		return b, fmt.Errorf("%s: %w: %s", ref.Pos, ErrInvalidTypeParams, ref.Name)
	default:
		if e, ok := c.enums[ref.Name]; ok {
			b = columns.Enum(name, e.Name, e.Values...)
		} else if b, err = columns.ByType(name, ref.Name); err != nil {
			return b, fmt.Errorf("%s: %w", ref.Pos, err)
		}
	}

	for _, dim := range ref.Dims {
		if dim.Size == nil {
			b = b.Array()
			continue
		}
		n, err := strconv.Atoi(*dim.Size)
		if err != nil {
			return b, fmt.Errorf("%s: %w: array size %s", ref.Pos, ErrInvalidTypeParams, *dim.Size)
		}
		b = b.Array(n)
	}
	return b, nil
}

func (c *converter) applyAttribute(b schema.ColumnBuilder, attr *Attribute) (schema.ColumnBuilder, error) {
	switch attr.Name {
	case "map":
		return b, nil
	case "pk", "id":
		return b.PrimaryKey(), nil
	case "notnull":
		return b.NotNull(), nil
	case "unique":
		return b.Unique(), nil
	case "default":
		return defaultValue(b, attr)
	case "references":
		return c.references(b, attr)
	default:
		return b, fmt.Errorf("%s: %w: @%s", attr.Pos, ErrUnknownAttribute, attr.Name)
	}
}

func defaultValue(b schema.ColumnBuilder, attr *Attribute) (schema.ColumnBuilder, error) {
	if len(attr.Args) != 1 {
		return b, fmt.Errorf("%s: %w: @default takes one value", attr.Pos, ErrInvalidArgument)
	}
	v := attr.Args[0].Value
	if lit, ok := v.Literal(); ok {
		return b.Default(lit), nil
	}
	if v.Call == nil {
		return b, fmt.Errorf("%s: %w: @default value", attr.Pos, ErrInvalidArgument)
	}
	switch v.Call.Name {
	case "now":
		return b.DefaultNow(), nil
	case "random":
		return b.DefaultRandom(), nil
	case "uuid":
		return columns.DefaultRandomApp(b), nil
	case "sql":
		if len(v.Call.Args) == 1 && v.Call.Args[0].String != nil {
			return b.DefaultSQL(sqlgen.Raw(*v.Call.Args[0].String)), nil
		}
		return b, fmt.Errorf("%s: %w: sql() takes one string", attr.Pos, ErrInvalidArgument)
	default:
		return b, fmt.Errorf("%s: %w: unknown default function %s()", attr.Pos, ErrInvalidArgument, v.Call.Name)
	}
}

func (c *converter) references(b schema.ColumnBuilder, attr *Attribute) (schema.ColumnBuilder, error) {
	var target *Ref
	for _, arg := range attr.Args {
		switch arg.Name {
		case "":
			if arg.Value.Ref == nil || len(arg.Value.Ref.Parts) != 2 {
				return b, fmt.Errorf("%s: %w: @references needs table.column", attr.Pos, ErrInvalidArgument)
			}
			target = arg.Value.Ref
		case "onDelete", "onUpdate":
			action, ok := arg.Value.Literal()
			s, isString := action.(string)
			if !ok || !isString {
				return b, fmt.Errorf("%s: %w: %s", attr.Pos, ErrInvalidArgument, arg.Name)
			}
			if arg.Name == "onDelete" {
				b = b.OnDelete(s)
			} else {
				b = b.OnUpdate(s)
			}
		default:
			return b, fmt.Errorf("%s: %w: @references(%s:)", attr.Pos, ErrInvalidArgument, arg.Name)
		}
	}
	if target == nil {
		return b, fmt.Errorf("%s: %w: @references needs table.column", attr.Pos, ErrInvalidArgument)
	}
	table, key := target.Parts[0], target.Parts[1]
	c.refs = append(c.refs, pendingRef{at: attr.Pos.String(), table: table, column: key})
	return b.References(func() *schema.Column { return c.lookup(table, key) }), nil
}

func blockConstraint(t *schema.Table, attr *BlockAttribute) (schema.Constraint, error) {
	named := make(map[string]*Value)
	var positional []*Value
	for _, arg := range attr.Args {
		if arg.Name == "" {
			positional = append(positional, arg.Value)
		} else {
			named[arg.Name] = arg.Value
		}
	}
	name := ""
	if v, ok := named["name"]; ok {
		if v.String == nil {
			return nil, fmt.Errorf("%s: %w: name must be a string", attr.Pos, ErrInvalidArgument)
		}
		name = *v.String
	}

	switch attr.Name {
	case "id", "unique", "index":
		if len(positional) != 1 || positional[0].List == nil {
			return nil, fmt.Errorf("%s: %w: @@%s needs a column list", attr.Pos, ErrInvalidArgument, attr.Name)
		}
		cols, err := columnList(t, attr, positional[0].List)
		if err != nil {
			return nil, err
		}
		if attr.Name == "id" {
			return schema.PrimaryKey(cols...).Named(name), nil
		}
		def := schema.Index(name)
		if attr.Name == "unique" {
			def = schema.UniqueIndex(name)
		}
		return indexOptions(def.On(cols...), attr, named)
	case "check":
		if len(positional) == 2 && positional[0].String != nil && positional[1].String != nil {
			return schema.Check(*positional[0].String, sqlgen.Raw(*positional[1].String)), nil
		}
		if v, ok := named["expr"]; ok && v.String != nil && len(positional) == 0 {
			return schema.Check(name, sqlgen.Raw(*v.String)), nil
		}
		return nil, fmt.Errorf("%s: %w: @@check(\"name\", \"expression\")", attr.Pos, ErrInvalidArgument)
	default:
		return nil, fmt.Errorf("%s: %w: @@%s", attr.Pos, ErrUnknownAttribute, attr.Name)
	}
}

func indexOptions(def schema.IndexDef, attr *BlockAttribute, named map[string]*Value) (schema.Constraint, error) {
	for key, v := range named {
		switch key {
		case "name":
		case "using":
			if v.String == nil {
				return nil, fmt.Errorf("%s: %w: using must be a string", attr.Pos, ErrInvalidArgument)
			}
			def = def.Using(*v.String)
		case "where":
			if v.String == nil {
				return nil, fmt.Errorf("%s: %w: where must be a string", attr.Pos, ErrInvalidArgument)
			}
			def = def.Where(sqlgen.Raw(*v.String))
		case "desc", "nullsLast", "concurrently":
			lit, _ := v.Literal()
			on, ok := lit.(bool)
			if !ok {
				return nil, fmt.Errorf("%s: %w: %s must be true or false", attr.Pos, ErrInvalidArgument, key)
			}
			if !on {
				continue
			}
			switch key {
			case "desc":
				def = def.Desc()
			case "nullsLast":
				def = def.NullsLast()
			default:
				def = def.Concurrently()
			}
		default:
			return nil, fmt.Errorf("%s: %w: @@%s(%s:)", attr.Pos, ErrInvalidArgument, attr.Name, key)
		}
	}
	return def, nil
}

func columnList(t *schema.Table, attr *BlockAttribute, list *List) ([]*schema.Column, error) {
	cols := make([]*schema.Column, 0, len(list.Items))
	for _, item := range list.Items {
		if item.Ref == nil || len(item.Ref.Parts) != 1 {
			return nil, fmt.Errorf("%s: %w: expected a column key", attr.Pos, ErrInvalidArgument)
		}
		col, ok := t.Column(item.Ref.Parts[0])
		if !ok {
			return nil, fmt.Errorf("%s: %w: %s.%s", attr.Pos, schema.ErrUnknownColumn, t.Name(), item.Ref.Parts[0])
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func stringArg(pos lexer.Position, attr string, args []*Argument, i int, name string) (string, error) {
	if i < len(args) && args[i].Name == name && args[i].Value.String != nil {
		return *args[i].Value.String, nil
	}
	return "", fmt.Errorf("%s: %w: @%s needs a string", pos, ErrInvalidArgument, attr)
}
