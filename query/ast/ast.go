// Package ast defines the query AST (Abstract Syntax Tree).
package ast

import (
	"github.com/katungi/drizzle-orm/query/schema"
	"github.com/katungi/drizzle-orm/query/sqlgen"
)

// Statement is a complete query. Rendering a statement as a node embeds it
// in parentheses inside the enclosing query.
type Statement interface {
	sqlgen.Node
	Type() NodeType
}

// NodeType represents the type of statement
type NodeType string

const (
	NodeTypeSelect NodeType = "Select"
	NodeTypeInsert NodeType = "Insert"
	NodeTypeUpdate NodeType = "Update"
	NodeTypeDelete NodeType = "Delete"
)

// ProjectionKind is the output shape of a projection
type ProjectionKind int

const (
	// ProjectAll selects every column of every source relation
	ProjectAll ProjectionKind = iota
	// ProjectFlat maps output keys directly to expressions
	ProjectFlat
	// ProjectGrouped nests some output keys under a group key
	ProjectGrouped
)

// Field is one output expression and the path it is decoded into
type Field struct {
	Path []string
	Node sqlgen.Node
}

// Key returns the path joined with dots
func (f Field) Key() string {
	key := ""
	for i, p := range f.Path {
		if i > 0 {
			key += "."
		}
		key += p
	}
	return key
}

// Projection is the list of output fields of a statement
type Projection struct {
	Kind   ProjectionKind
	Fields []Field
}

// JoinKind is the kind of a join
type JoinKind string

const (
	JoinInner JoinKind = "inner"
	JoinLeft  JoinKind = "left"
	JoinRight JoinKind = "right"
	JoinFull  JoinKind = "full"
)

// Join adds a relation to a select
type Join struct {
	Kind     JoinKind
	Relation sqlgen.Relation
	On       sqlgen.Node
}

// LockStrength is the row lock requested by a select
type LockStrength string

const (
	ForUpdate      LockStrength = "update"
	ForNoKeyUpdate LockStrength = "no key update"
	ForShare       LockStrength = "share"
	ForKeyShare    LockStrength = "key share"
)

// Lock is one locking clause
type Lock struct {
	Strength   LockStrength
	Of         []sqlgen.Relation
	NoWait     bool
	SkipLocked bool
}

// Select is a select statement
type Select struct {
	With       []*Subquery
	Distinct   bool
	Projection Projection
	From       sqlgen.Relation
	Joins      []Join
	Where      sqlgen.Node
	GroupBy    []sqlgen.Node
	Having     sqlgen.Node
	OrderBy    []sqlgen.Node
	// Limit and Offset hold nil, an integer or a sqlgen.Placeholder
	Limit  interface{}
	Offset interface{}
	Locks  []Lock
}

func (s *Select) Type() NodeType { return NodeTypeSelect }

// Render embeds the select as a parenthesized subquery
func (s *Select) Render(b *sqlgen.Builder) error { return b.RenderStatement(s) }

// Relations returns the FROM relation followed by every joined relation
func (s *Select) Relations() []sqlgen.Relation {
	rels := make([]sqlgen.Relation, 0, len(s.Joins)+1)
	if s.From != nil {
		rels = append(rels, s.From)
	}
	for _, j := range s.Joins {
		rels = append(rels, j.Relation)
	}
	return rels
}

// OutputFields expands the projection into concrete fields. Selecting all
// columns yields a flat list for a single relation and groups keyed by
// relation name when joins are present.
func (s *Select) OutputFields() ([]Field, error) {
	if s.Projection.Kind != ProjectAll {
		return s.Projection.Fields, nil
	}
	if s.From == nil {
		return nil, ErrMissingFrom
	}
	if len(s.Joins) == 0 {
		return RelationFields(s.From)
	}
	var fields []Field
	for _, rel := range s.Relations() {
		fs, err := RelationFields(rel)
		if err != nil {
			return nil, err
		}
		for _, f := range fs {
			fields = append(fields, Field{Path: append([]string{rel.RelationName()}, f.Path...), Node: f.Node})
		}
	}
	return fields, nil
}

// Assignment sets a column in an update or upsert
type Assignment struct {
	Column *schema.Column
	Value  sqlgen.Node
}

// Conflict is the conflict clause of an insert
type Conflict struct {
	Target    []*schema.Column
	DoNothing bool
	Set       []Assignment
	Where     sqlgen.Node
}

// Insert is an insert statement
type Insert struct {
	Table     *schema.Table
	Columns   []*schema.Column
	Rows      [][]sqlgen.Node
	Conflict  *Conflict
	Returning *Projection
}

func (s *Insert) Type() NodeType                 { return NodeTypeInsert }
func (s *Insert) Render(b *sqlgen.Builder) error { return b.RenderStatement(s) }

// Update is an update statement
type Update struct {
	Table     *schema.Table
	Set       []Assignment
	Where     sqlgen.Node
	Returning *Projection
}

func (s *Update) Type() NodeType                 { return NodeTypeUpdate }
func (s *Update) Render(b *sqlgen.Builder) error { return b.RenderStatement(s) }

// Delete is a delete statement
type Delete struct {
	Table     *schema.Table
	Where     sqlgen.Node
	Returning *Projection
}

func (s *Delete) Type() NodeType                 { return NodeTypeDelete }
func (s *Delete) Render(b *sqlgen.Builder) error { return b.RenderStatement(s) }

// TableFields returns one flat field per column of t
func TableFields(t *schema.Table) []Field {
	cols := t.Columns()
	fields := make([]Field, len(cols))
	for i, c := range cols {
		fields[i] = Field{Path: []string{c.Key()}, Node: c}
	}
	return fields
}

// RelationFields returns the selectable fields of a table, alias or subquery
func RelationFields(r sqlgen.Relation) ([]Field, error) {
	switch rel := r.(type) {
	case *schema.Table:
		return TableFields(rel), nil
	case *Subquery:
		return rel.Fields()
	default:
		return nil, ErrUnknownRelation
	}
}

// DefaultValue fills a column missing from an insert row. Dialects without
// a default keyword in values lists get the column's static or database
// default, or null.
type DefaultValue struct {
	Column *schema.Column
}

func (d DefaultValue) Render(b *sqlgen.Builder) error {
	if b.Dialect().Provider() != sqlgen.SQLite {
		b.WriteString("default")
		return nil
	}
	def := d.Column.Default()
	switch def.Kind {
	case schema.DefaultStatic:
		return b.WriteParam(def.Value, d.Column)
	case schema.DefaultDatabase:
		b.WriteString("(")
		if err := b.Render(def.SQL); err != nil {
			return err
		}
		b.WriteString(")")
		return nil
	default:
		b.WriteString("null")
		return nil
	}
}
