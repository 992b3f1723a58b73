package schema

import (
	"strings"

	"github.com/katungi/drizzle-orm/query/sqlgen"
)

// ConstraintKind identifies a constraint descriptor
type ConstraintKind string

const (
	ConstraintIndex      ConstraintKind = "index"
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintPrimaryKey ConstraintKind = "pk"
	ConstraintForeignKey ConstraintKind = "fk"
	ConstraintCheck      ConstraintKind = "check"
)

// Constraint is a table-level index or constraint descriptor
type Constraint interface {
	Kind() ConstraintKind
	Name() string
	Columns() []*Column
	named(name string) Constraint
}

func generatedName(table string, c Constraint) string {
	parts := []string{table}
	for _, col := range c.Columns() {
		parts = append(parts, col.name)
	}
	parts = append(parts, string(c.Kind()))
	return strings.Join(parts, "_")
}

// IndexDef describes a plain or unique index
type IndexDef struct {
	name         string
	unique       bool
	columns      []*Column
	where        sqlgen.Node
	desc         bool
	nullsLast    bool
	concurrently bool
	using        string
}

// Index starts an index definition; an empty name is generated
func Index(name string) IndexDef {
	return IndexDef{name: name}
}

// UniqueIndex starts a unique index definition
func UniqueIndex(name string) IndexDef {
	return IndexDef{name: name, unique: true}
}

// On sets the indexed columns
func (d IndexDef) On(cols ...*Column) IndexDef {
	d.columns = append([]*Column(nil), cols...)
	return d
}

// Where makes the index partial
func (d IndexDef) Where(predicate sqlgen.Node) IndexDef {
	d.where = predicate
	return d
}

func (d IndexDef) Desc() IndexDef {
	d.desc = true
	return d
}

func (d IndexDef) NullsLast() IndexDef {
	d.nullsLast = true
	return d
}

func (d IndexDef) Concurrently() IndexDef {
	d.concurrently = true
	return d
}

// Using sets the index method, e.g. btree or gin
func (d IndexDef) Using(method string) IndexDef {
	d.using = method
	return d
}

func (d IndexDef) Kind() ConstraintKind {
	if d.unique {
		return ConstraintUnique
	}
	return ConstraintIndex
}

func (d IndexDef) Name() string       { return d.name }
func (d IndexDef) Columns() []*Column { return d.columns }

// Predicate returns the partial index condition, if any
func (d IndexDef) Predicate() sqlgen.Node { return d.where }
func (d IndexDef) IsDesc() bool           { return d.desc }
func (d IndexDef) IsNullsLast() bool      { return d.nullsLast }
func (d IndexDef) IsConcurrent() bool     { return d.concurrently }
func (d IndexDef) Method() string         { return d.using }

func (d IndexDef) named(name string) Constraint {
	d.name = name
	return d
}

// PrimaryKeyDef is a composite primary key
type PrimaryKeyDef struct {
	name    string
	columns []*Column
}

// PrimaryKey declares a composite primary key
func PrimaryKey(cols ...*Column) PrimaryKeyDef {
	return PrimaryKeyDef{columns: cols}
}

// Named sets the constraint name
func (d PrimaryKeyDef) Named(name string) PrimaryKeyDef {
	d.name = name
	return d
}

func (d PrimaryKeyDef) Kind() ConstraintKind { return ConstraintPrimaryKey }
func (d PrimaryKeyDef) Name() string         { return d.name }
func (d PrimaryKeyDef) Columns() []*Column   { return d.columns }

func (d PrimaryKeyDef) named(name string) Constraint {
	d.name = name
	return d
}

// ForeignKeyDef declares a foreign key. Foreign is resolved lazily.
type ForeignKeyDef struct {
	Name     string
	Columns  []*Column
	Foreign  func() []*Column
	OnDelete string
	OnUpdate string
}

// ForeignKeyConstraint is a validated foreign key descriptor
type ForeignKeyConstraint struct {
	def ForeignKeyDef
}

// ForeignKey builds a foreign key constraint
func ForeignKey(def ForeignKeyDef) ForeignKeyConstraint {
	return ForeignKeyConstraint{def: def}
}

func (c ForeignKeyConstraint) Kind() ConstraintKind { return ConstraintForeignKey }
func (c ForeignKeyConstraint) Name() string         { return c.def.Name }
func (c ForeignKeyConstraint) Columns() []*Column   { return c.def.Columns }
func (c ForeignKeyConstraint) OnDelete() string     { return c.def.OnDelete }
func (c ForeignKeyConstraint) OnUpdate() string     { return c.def.OnUpdate }

// ForeignColumns resolves the referenced columns
func (c ForeignKeyConstraint) ForeignColumns() []*Column {
	if c.def.Foreign == nil {
		return nil
	}
	return c.def.Foreign()
}

func (c ForeignKeyConstraint) named(name string) Constraint {
	c.def.Name = name
	return c
}

// CheckDef is a named check constraint
type CheckDef struct {
	name string
	expr sqlgen.Node
}

// Check declares a check constraint over an arbitrary expression
func Check(name string, expr sqlgen.Node) CheckDef {
	return CheckDef{name: name, expr: expr}
}

func (d CheckDef) Kind() ConstraintKind { return ConstraintCheck }
func (d CheckDef) Name() string         { return d.name }
func (d CheckDef) Columns() []*Column   { return nil }

// Expr returns the checked expression
func (d CheckDef) Expr() sqlgen.Node { return d.expr }

func (d CheckDef) named(name string) Constraint {
	d.name = name
	return d
}
