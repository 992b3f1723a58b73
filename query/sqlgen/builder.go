package sqlgen

import (
	"fmt"
	"strings"
)

// Node is anything that renders to SQL text with interleaved parameters
type Node interface {
	Render(b *Builder) error
}

// Relation is a source of rows that can appear in FROM or JOIN
type Relation interface {
	Node
	// RelationName returns the identifier used to qualify the relation's columns
	RelationName() string
}

// ColumnRef is a reference to a named column of a relation
type ColumnRef interface {
	Node
	ColumnName() string
	Relation() Relation
}

// Encoder converts an application value into a driver value
type Encoder interface {
	EncodeValue(v interface{}) (interface{}, error)
}

// Decoder converts a raw driver value into an application value
type Decoder interface {
	DecodeValue(v interface{}) (interface{}, error)
}

// DecoderFunc adapts a function to the Decoder interface
type DecoderFunc func(v interface{}) (interface{}, error)

// DecodeValue calls f(v)
func (f DecoderFunc) DecodeValue(v interface{}) (interface{}, error) { return f(v) }

// Decodable is implemented by nodes that carry a result decoder
type Decodable interface {
	Decoder() Decoder
}

// StatementRenderer renders a full statement into a builder. The compiler
// implements it so that statements nested in fragments share one parameter
// sequence with the outer query.
type StatementRenderer interface {
	RenderStatement(b *Builder, stmt Node) error
}

// Scope is the chain of relations visible to column references
type Scope struct {
	parent    *Scope
	relations []Relation
}

// Contains reports whether r is visible from this scope or one of its parents
func (s *Scope) Contains(r Relation) bool {
	for sc := s; sc != nil; sc = sc.parent {
		for _, rel := range sc.relations {
			if rel == r {
				return true
			}
		}
	}
	return false
}

// Builder accumulates SQL text and arguments for one query
type Builder struct {
	dialect     Dialect
	statements  StatementRenderer
	sb          strings.Builder
	args        []interface{}
	scope       *Scope
	unqualified bool
}

// NewBuilder creates a builder for the given dialect
func NewBuilder(dialect Dialect, statements StatementRenderer) *Builder {
	return &Builder{
		dialect:    dialect,
		statements: statements,
	}
}

// Dialect returns the builder's dialect
func (b *Builder) Dialect() Dialect {
	return b.dialect
}

// WriteString appends raw SQL text
func (b *Builder) WriteString(s string) {
	b.sb.WriteString(s)
}

// WriteIdent appends a quoted identifier
func (b *Builder) WriteIdent(name string) {
	b.sb.WriteString(b.dialect.QuoteIdentifier(name))
}

// WriteParam appends a placeholder for value and records the argument.
// Placeholder markers stay unresolved until the query is bound.
func (b *Builder) WriteParam(value interface{}, enc Encoder) error {
	switch v := value.(type) {
	case Placeholder:
		b.args = append(b.args, BoundPlaceholder{Name: v.Name, Encoder: enc})
	case *Placeholder:
		b.args = append(b.args, BoundPlaceholder{Name: v.Name, Encoder: enc})
	default:
		if enc != nil && value != nil {
			encoded, err := enc.EncodeValue(value)
			if err != nil {
				return err
			}
			value = encoded
		}
		b.args = append(b.args, value)
	}
	b.sb.WriteString(b.dialect.Placeholder(len(b.args)))
	return nil
}

// WriteColumn appends a column reference, qualified by its relation unless
// the builder is in unqualified mode. A column whose relation is not in
// scope is an error.
func (b *Builder) WriteColumn(c ColumnRef) error {
	rel := c.Relation()
	if b.scope != nil && rel != nil && !b.scope.Contains(rel) {
		return fmt.Errorf("%w: %s.%s", ErrUnresolvedColumn, rel.RelationName(), c.ColumnName())
	}
	if !b.unqualified && rel != nil {
		b.WriteIdent(rel.RelationName())
		b.sb.WriteByte('.')
	}
	b.WriteIdent(c.ColumnName())
	return nil
}

// Render renders n into the builder; a nil node renders nothing
func (b *Builder) Render(n Node) error {
	if n == nil {
		return nil
	}
	return n.Render(b)
}

// RenderList renders nodes separated by sep
func (b *Builder) RenderList(nodes []Node, sep string) error {
	for i, n := range nodes {
		if i > 0 {
			b.sb.WriteString(sep)
		}
		if err := b.Render(n); err != nil {
			return err
		}
	}
	return nil
}

// RenderStatement renders a nested statement through the configured renderer
func (b *Builder) RenderStatement(stmt Node) error {
	if b.statements == nil {
		return ErrNoStatementRenderer
	}
	return b.statements.RenderStatement(b, stmt)
}

// Unqualified runs fn with column qualification turned off
func (b *Builder) Unqualified(fn func() error) error {
	prev := b.unqualified
	b.unqualified = true
	defer func() { b.unqualified = prev }()
	return fn()
}

// Qualified runs fn with column qualification turned on
func (b *Builder) Qualified(fn func() error) error {
	prev := b.unqualified
	b.unqualified = false
	defer func() { b.unqualified = prev }()
	return fn()
}

// EnterScope pushes a scope holding relations and returns a function that
// restores the previous scope
func (b *Builder) EnterScope(relations []Relation) func() {
	prev := b.scope
	b.scope = &Scope{parent: prev, relations: relations}
	return func() { b.scope = prev }
}

// InScope reports whether r is visible to column references
func (b *Builder) InScope(r Relation) bool {
	return b.scope == nil || b.scope.Contains(r)
}

// Query returns the accumulated SQL and arguments
func (b *Builder) Query() Query {
	args := make([]interface{}, len(b.args))
	copy(args, b.args)
	return Query{SQL: b.sb.String(), Args: args}
}

// Build renders a standalone fragment without scope checks
func Build(dialect Dialect, n Node, statements StatementRenderer) (Query, error) {
	b := NewBuilder(dialect, statements)
	if err := b.Render(n); err != nil {
		return Query{}, err
	}
	return b.Query(), nil
}
