// Package schema describes tables, columns and constraints.
package schema

import (
	"fmt"

	"github.com/katungi/drizzle-orm/query/sqlgen"
)

// Table is a named relation with an ordered column set. A table created by
// Alias shares its shape with the base table but owns distinct columns.
type Table struct {
	name        string
	alias       string
	base        *Table
	columns     []*Column
	byKey       map[string]*Column
	constraints []Constraint
}

// NewTable builds a table from ordered column definitions. extra, when not
// nil, runs once after every column exists and returns the table's
// constraints.
func NewTable(name string, defs []ColumnDef, extra func(t *Table) []Constraint) (*Table, error) {
	t := &Table{
		name:  name,
		byKey: make(map[string]*Column, len(defs)),
	}
	names := make(map[string]bool, len(defs))
	for _, def := range defs {
		if def.Key == "" {
			return nil, fmt.Errorf("%w: table %s has a column without a key", ErrDuplicateColumn, name)
		}
		if _, exists := t.byKey[def.Key]; exists {
			return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateColumn, name, def.Key)
		}
		col := newColumn(def.Key, def.Builder, t)
		if names[col.name] {
			return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateColumn, name, col.name)
		}
		names[col.name] = true
		t.byKey[def.Key] = col
		t.columns = append(t.columns, col)
	}

	var constraints []Constraint
	for _, col := range t.columns {
		if col.ref != nil {
			target := col.ref
			constraints = append(constraints, ForeignKey(ForeignKeyDef{
				Columns:  []*Column{col},
				Foreign:  func() []*Column { return []*Column{target()} },
				OnDelete: col.onDelete,
				OnUpdate: col.onUpdate,
			}))
		}
	}
	if extra != nil {
		constraints = append(constraints, extra(t)...)
	}
	if err := t.setConstraints(constraints); err != nil {
		return nil, err
	}
	return t, nil
}

// MustTable is like NewTable but panics on a definition error
func MustTable(name string, defs []ColumnDef, extra func(t *Table) []Constraint) *Table {
	t, err := NewTable(name, defs, extra)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) setConstraints(constraints []Constraint) error {
	seen := make(map[string]bool, len(constraints))
	for _, c := range constraints {
		if c == nil {
			continue
		}
		if c.Kind() != ConstraintCheck && len(c.Columns()) == 0 {
			return fmt.Errorf("%w: %s constraint on %s has no columns", ErrMalformedConstraint, c.Kind(), t.name)
		}
		for _, col := range c.Columns() {
			if col == nil || col.table != t {
				return fmt.Errorf("%w: %s constraint on %s uses a column of another table", ErrMalformedConstraint, c.Kind(), t.name)
			}
		}
		name := c.Name()
		if name == "" {
			if c.Kind() == ConstraintCheck {
				return fmt.Errorf("%w: check constraint on %s needs a name", ErrMalformedConstraint, t.name)
			}
			name = generatedName(t.name, c)
			c = c.named(name)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate constraint name %s", ErrMalformedConstraint, name)
		}
		seen[name] = true
		t.constraints = append(t.constraints, c)
	}
	return nil
}

// Name returns the SQL name of the underlying table
func (t *Table) Name() string { return t.name }

// RelationName returns the alias when set, otherwise the table name
func (t *Table) RelationName() string {
	if t.alias != "" {
		return t.alias
	}
	return t.name
}

// AliasName returns the alias, or an empty string for a base table
func (t *Table) AliasName() string { return t.alias }

// IsAlias reports whether the table was created by Alias
func (t *Table) IsAlias() bool { return t.base != nil }

// Base returns the table an alias was created from, or t itself
func (t *Table) Base() *Table {
	if t.base != nil {
		return t.base
	}
	return t
}

// Render writes the table for FROM and JOIN clauses
func (t *Table) Render(b *sqlgen.Builder) error {
	b.WriteIdent(t.name)
	if t.alias != "" {
		b.WriteString(" ")
		b.WriteIdent(t.alias)
	}
	return nil
}

// Columns returns the columns in definition order
func (t *Table) Columns() []*Column {
	return append([]*Column(nil), t.columns...)
}

// Column looks up a column by key
func (t *Table) Column(key string) (*Column, bool) {
	c, ok := t.byKey[key]
	return c, ok
}

// C returns the column registered under key and panics if there is none
func (t *Table) C(key string) *Column {
	c, ok := t.byKey[key]
	if !ok {
		panic(fmt.Sprintf("schema: table %s has no column %q", t.RelationName(), key))
	}
	return c
}

// PrimaryKeyColumns returns the columns flagged as primary key, falling back
// to the columns of a composite primary key constraint
func (t *Table) PrimaryKeyColumns() []*Column {
	var pk []*Column
	for _, c := range t.columns {
		if c.primary {
			pk = append(pk, c)
		}
	}
	if len(pk) > 0 {
		return pk
	}
	for _, c := range t.Base().constraints {
		if c.Kind() == ConstraintPrimaryKey {
			return t.own(c.Columns())
		}
	}
	return nil
}

// Constraints returns the constraints of the underlying table
func (t *Table) Constraints() []Constraint {
	return append([]Constraint(nil), t.Base().constraints...)
}

// own maps base table columns onto the matching columns of t
func (t *Table) own(cols []*Column) []*Column {
	out := make([]*Column, 0, len(cols))
	for _, c := range cols {
		if mine, ok := t.byKey[c.key]; ok {
			out = append(out, mine)
		}
	}
	return out
}

// Alias returns a copy of t under a different SQL identifier. The copy's
// columns are new values bound to the alias, so they never resolve against
// the original table. An empty name panics.
func Alias(t *Table, name string) *Table {
	if name == "" {
		panic(fmt.Sprintf("schema: empty alias for table %s", t.Name()))
	}
	src := t.Base()
	a := &Table{
		name:  src.name,
		alias: name,
		base:  src,
		byKey: make(map[string]*Column, len(src.columns)),
	}
	for _, c := range src.columns {
		cp := *c
		cp.table = a
		a.columns = append(a.columns, &cp)
		a.byKey[cp.key] = &cp
	}
	return a
}
