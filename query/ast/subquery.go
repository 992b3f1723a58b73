package ast

import (
	"fmt"

	"github.com/katungi/drizzle-orm/query/sqlgen"
)

// Subquery is a select used as a named relation, either inline as a
// derived table or as a common table expression
type Subquery struct {
	Name string
	Stmt *Select
	CTE  bool
	// Err is a build error surfaced when the subquery is rendered
	Err error
}

func (q *Subquery) RelationName() string { return q.Name }

// Render writes the subquery as a FROM item. A CTE is referenced by name;
// its body is rendered by the enclosing with clause.
func (q *Subquery) Render(b *sqlgen.Builder) error {
	if err := q.Validate(); err != nil {
		return err
	}
	if q.CTE {
		b.WriteIdent(q.Name)
		return nil
	}
	if err := b.RenderStatement(q.Stmt); err != nil {
		return err
	}
	b.WriteString(" ")
	b.WriteIdent(q.Name)
	return nil
}

// Validate reports build errors of the subquery
func (q *Subquery) Validate() error {
	if q.Err != nil {
		return q.Err
	}
	if q.Name == "" {
		return ErrUnaliasedSubquery
	}
	if q.Stmt == nil {
		return fmt.Errorf("%w: subquery %s has no statement", ErrMissingFrom, q.Name)
	}
	return nil
}

// Fields re-exposes the subquery's output fields as references to the
// subquery. Nested output keys are flattened to their last segment.
func (q *Subquery) Fields() ([]Field, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	inner, err := q.Stmt.OutputFields()
	if err != nil {
		return nil, err
	}
	fields := make([]Field, len(inner))
	for i, f := range inner {
		key := f.Path[len(f.Path)-1]
		fields[i] = Field{Path: []string{key}, Node: &SubqueryField{sub: q, key: key, inner: f.Node}}
	}
	return fields, nil
}

// Field returns the output field with the given key
func (q *Subquery) Field(key string) *SubqueryField {
	fields, err := q.Fields()
	if err != nil {
		return &SubqueryField{sub: q, key: key, err: err}
	}
	for _, f := range fields {
		if f.Path[0] == key {
			return f.Node.(*SubqueryField)
		}
	}
	return &SubqueryField{sub: q, key: key, err: fmt.Errorf("%w: %s.%s", ErrUnknownField, q.Name, key)}
}

// SubqueryField is a column of a derived table or CTE
type SubqueryField struct {
	sub   *Subquery
	key   string
	inner sqlgen.Node
	err   error
}

// Key returns the output key of the field
func (f *SubqueryField) Key() string { return f.key }

// ColumnName returns the name the subquery outputs the field under: the
// alias of an aliased expression or the name of a column. Unaliased
// expressions have no name.
func (f *SubqueryField) ColumnName() string {
	switch n := f.inner.(type) {
	case *sqlgen.Aliased:
		return n.Alias
	case sqlgen.ColumnRef:
		return n.ColumnName()
	}
	return ""
}

func (f *SubqueryField) Relation() sqlgen.Relation { return f.sub }

func (f *SubqueryField) Render(b *sqlgen.Builder) error {
	if f.err != nil {
		return f.err
	}
	if f.ColumnName() == "" {
		return fmt.Errorf("%w: %s.%s", sqlgen.ErrUnaliasedField, f.sub.Name, f.key)
	}
	return b.WriteColumn(f)
}

// Decoder returns the decoder of the underlying expression
func (f *SubqueryField) Decoder() sqlgen.Decoder {
	if d, ok := f.inner.(sqlgen.Decodable); ok {
		return d.Decoder()
	}
	return nil
}

// EncodeValue encodes through the underlying column, if any
func (f *SubqueryField) EncodeValue(v interface{}) (interface{}, error) {
	if e, ok := f.inner.(sqlgen.Encoder); ok {
		return e.EncodeValue(v)
	}
	return v, nil
}

// IsNotNull reports whether the underlying column is declared not null
func (f *SubqueryField) IsNotNull() bool {
	if n, ok := f.inner.(interface{ IsNotNull() bool }); ok {
		return n.IsNotNull()
	}
	return false
}
