// Package builder provides a fluent query builder API.
package builder

import (
	"fmt"
	"sort"

	"github.com/katungi/drizzle-orm/query/ast"
	"github.com/katungi/drizzle-orm/query/compiler"
	"github.com/katungi/drizzle-orm/query/executor"
	"github.com/katungi/drizzle-orm/query/schema"
	"github.com/katungi/drizzle-orm/query/sqlgen"
)

// QueryBuilder is the entry point for building statements. Without a
// session it can only render SQL.
type QueryBuilder struct {
	compiler *compiler.Compiler
	session  *executor.Session
	ctes     []*ast.Subquery
}

// New creates a builder that renders SQL for dialect
func New(dialect sqlgen.Dialect) *QueryBuilder {
	return &QueryBuilder{compiler: compiler.NewCompiler(dialect)}
}

// NewWithSession creates a builder whose statements execute through session
func NewWithSession(session *executor.Session) *QueryBuilder {
	return &QueryBuilder{compiler: session.Compiler(), session: session}
}

// Dialect returns the dialect statements are rendered for
func (q *QueryBuilder) Dialect() sqlgen.Dialect {
	return q.compiler.Dialect()
}

// Select starts a select. Without a projection every column of every
// source relation is selected.
func (q *QueryBuilder) Select(fields ...Projection) *SelectBuilder {
	return q.newSelect(false, fields)
}

// SelectDistinct starts a select distinct
func (q *QueryBuilder) SelectDistinct(fields ...Projection) *SelectBuilder {
	return q.newSelect(true, fields)
}

// Projection is an output shape: Fields or FieldList
type Projection interface {
	entries() []Field
}

// Fields maps output keys to nodes. Values may be nodes, relations (which
// expand to a group of all their columns) or nested Fields. Keys render in
// sorted order.
type Fields map[string]interface{}

func (f Fields) entries() []Field {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Field, len(keys))
	for i, k := range keys {
		out[i] = Field{Key: k, Value: f[k]}
	}
	return out
}

// Field is one entry of a FieldList
type Field struct {
	Key   string
	Value interface{}
}

// F creates a FieldList entry
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// FieldList is a projection that keeps the order it is written in
type FieldList []Field

func (l FieldList) entries() []Field { return l }

// Selected holds the fields of a statement's projection by key, passed to
// the callback forms of Where, Having and OrderBy. Nested fields use
// "group.key".
type Selected map[string]sqlgen.Node

// Row maps column keys to values for inserts and updates. Values may be
// plain values, placeholders or SQL nodes.
type Row map[string]interface{}

func buildProjection(fields []Projection) (ast.Projection, error) {
	if len(fields) == 0 || fields[0] == nil {
		return ast.Projection{Kind: ast.ProjectAll}, nil
	}
	if len(fields) > 1 {
		return ast.Projection{}, fmt.Errorf("%w: more than one projection", ErrInvalidProjection)
	}
	p := ast.Projection{Kind: ast.ProjectFlat}
	for _, e := range fields[0].entries() {
		switch v := e.Value.(type) {
		case sqlgen.Relation:
			group, err := ast.RelationFields(v)
			if err != nil {
				return ast.Projection{}, err
			}
			for _, f := range group {
				p.Fields = append(p.Fields, ast.Field{Path: append([]string{e.Key}, f.Path...), Node: f.Node})
			}
			p.Kind = ast.ProjectGrouped
		case Projection:
			for _, inner := range v.entries() {
				node, ok := inner.Value.(sqlgen.Node)
				if !ok || node == nil {
					return ast.Projection{}, fmt.Errorf("%w: %s.%s must be a SQL node", ErrInvalidProjection, e.Key, inner.Key)
				}
				p.Fields = append(p.Fields, ast.Field{Path: []string{e.Key, inner.Key}, Node: node})
			}
			p.Kind = ast.ProjectGrouped
		case sqlgen.Node:
			p.Fields = append(p.Fields, ast.Field{Path: []string{e.Key}, Node: v})
		default:
			return ast.Projection{}, fmt.Errorf("%w: %s has type %T", ErrInvalidProjection, e.Key, e.Value)
		}
	}
	return p, nil
}

func selected(fields []ast.Field) Selected {
	out := make(Selected, len(fields))
	for _, f := range fields {
		out[f.Key()] = f.Node
	}
	return out
}

// assignments converts a row into assignments in table column order
func assignments(t *schema.Table, set Row) ([]ast.Assignment, error) {
	if err := checkKeys(t, set); err != nil {
		return nil, err
	}
	var out []ast.Assignment
	for _, c := range t.Columns() {
		if v, ok := set[c.Key()]; ok {
			out = append(out, ast.Assignment{Column: c, Value: sqlgen.Bind(v, c)})
		}
	}
	if len(out) == 0 {
		return nil, compiler.ErrEmptySet
	}
	return out, nil
}

func checkKeys(t *schema.Table, row Row) error {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := t.Column(k); !ok {
			return fmt.Errorf("%w: %s.%s", schema.ErrUnknownColumn, t.RelationName(), k)
		}
	}
	return nil
}

func returning(t *schema.Table, fields []Projection) (*ast.Projection, error) {
	if len(fields) == 0 || fields[0] == nil {
		return &ast.Projection{Kind: ast.ProjectAll}, nil
	}
	p, err := buildProjection(fields)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// compile compiles stmt with the builder's compiler
func (q *QueryBuilder) compile(stmt ast.Statement) (sqlgen.Query, error) {
	compiled, err := q.compiler.Compile(stmt)
	if err != nil {
		return sqlgen.Query{}, err
	}
	return compiled.Query, nil
}

func (q *QueryBuilder) requireSession() error {
	if q.session == nil {
		return ErrNoSession
	}
	return nil
}
