package compiler

import (
	"fmt"

	"github.com/katungi/drizzle-orm/query/ast"
	"github.com/katungi/drizzle-orm/query/sqlgen"
)

// mysqlMaxLimit stands in for a missing limit when only an offset is given
const mysqlMaxLimit = "18446744073709551615"

func (c *Compiler) renderSelect(b *sqlgen.Builder, s *ast.Select) ([]SelectedField, error) {
	if err := c.renderWith(b, s.With); err != nil {
		return nil, err
	}
	if s.From == nil {
		return nil, ast.ErrMissingFrom
	}
	fields, err := s.OutputFields()
	if err != nil {
		return nil, err
	}

	relations := s.Relations()
	if err := checkRelationNames(relations); err != nil {
		return nil, err
	}
	leave := b.EnterScope(relations)
	defer leave()

	b.WriteString("select ")
	if s.Distinct {
		b.WriteString("distinct ")
	}
	if err := renderProjection(b, fields, len(relations) == 1); err != nil {
		return nil, err
	}

	b.WriteString(" from ")
	if err := b.Render(s.From); err != nil {
		return nil, err
	}
	for _, j := range s.Joins {
		if j.On == nil {
			return nil, fmt.Errorf("%w: %s join %s", ErrMissingJoinCondition, j.Kind, j.Relation.RelationName())
		}
		b.WriteString(" " + string(j.Kind) + " join ")
		if err := b.Render(j.Relation); err != nil {
			return nil, err
		}
		b.WriteString(" on ")
		if err := b.Render(j.On); err != nil {
			return nil, err
		}
	}

	if s.Where != nil {
		b.WriteString(" where ")
		if err := b.Render(s.Where); err != nil {
			return nil, err
		}
	}
	if len(s.GroupBy) > 0 {
		b.WriteString(" group by ")
		if err := b.RenderList(s.GroupBy, ", "); err != nil {
			return nil, err
		}
	}
	if s.Having != nil {
		b.WriteString(" having ")
		if err := b.Render(s.Having); err != nil {
			return nil, err
		}
	}
	if len(s.OrderBy) > 0 {
		b.WriteString(" order by ")
		if err := b.RenderList(s.OrderBy, ", "); err != nil {
			return nil, err
		}
	}
	if err := c.renderLimit(b, s.Limit, s.Offset); err != nil {
		return nil, err
	}
	if err := c.renderLocks(b, s.Locks); err != nil {
		return nil, err
	}

	return selection(fields, nullableRelations(s)), nil
}

// renderWith writes the with clause. CTE bodies are rendered outside the
// select's own scope.
func (c *Compiler) renderWith(b *sqlgen.Builder, ctes []*ast.Subquery) error {
	if len(ctes) == 0 {
		return nil
	}
	b.WriteString("with ")
	for i, cte := range ctes {
		if err := cte.Validate(); err != nil {
			return err
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteIdent(cte.Name)
		b.WriteString(" as ")
		if err := b.RenderStatement(cte.Stmt); err != nil {
			return err
		}
	}
	b.WriteString(" ")
	return nil
}

// renderProjection writes the output list. Columns are written bare when
// the statement reads from a single relation; aliased expressions get their
// alias here and nowhere else.
func renderProjection(b *sqlgen.Builder, fields []ast.Field, bare bool) error {
	if len(fields) == 0 {
		return ErrEmptyProjection
	}
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		var err error
		switch n := f.Node.(type) {
		case *sqlgen.Aliased:
			if err = b.Render(n.Expr); err == nil {
				b.WriteString(" as ")
				b.WriteIdent(n.Alias)
			}
		case sqlgen.ColumnRef:
			if bare {
				err = b.Unqualified(func() error { return b.Render(n) })
			} else {
				err = b.Render(n)
			}
		default:
			err = b.Render(n)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) renderLimit(b *sqlgen.Builder, limit, offset interface{}) error {
	if limit == nil && offset != nil {
		switch c.dialect.Provider() {
		case sqlgen.MySQL:
			b.WriteString(" limit " + mysqlMaxLimit)
		case sqlgen.SQLite:
			b.WriteString(" limit -1")
		}
	}
	if limit != nil {
		b.WriteString(" limit ")
		if err := writeCount(b, limit); err != nil {
			return err
		}
	}
	if offset != nil {
		b.WriteString(" offset ")
		if err := writeCount(b, offset); err != nil {
			return err
		}
	}
	return nil
}

func writeCount(b *sqlgen.Builder, v interface{}) error {
	switch n := v.(type) {
	case sqlgen.Placeholder, *sqlgen.Placeholder:
		return b.WriteParam(n, nil)
	case int:
		if n >= 0 {
			return b.WriteParam(n, nil)
		}
	case int32:
		if n >= 0 {
			return b.WriteParam(n, nil)
		}
	case int64:
		if n >= 0 {
			return b.WriteParam(n, nil)
		}
	case uint, uint32, uint64:
		return b.WriteParam(n, nil)
	}
	return fmt.Errorf("%w: %v", ErrInvalidCount, v)
}

func (c *Compiler) renderLocks(b *sqlgen.Builder, locks []ast.Lock) error {
	if len(locks) == 0 {
		return nil
	}
	provider := c.dialect.Provider()
	if provider == sqlgen.SQLite {
		return fmt.Errorf("%w: row locking on sqlite", ErrUnsupported)
	}
	for _, l := range locks {
		if provider == sqlgen.MySQL && l.Strength != ast.ForUpdate && l.Strength != ast.ForShare {
			return fmt.Errorf("%w: for %s on mysql", ErrUnsupported, l.Strength)
		}
		if l.NoWait && l.SkipLocked {
			return fmt.Errorf("%w: nowait and skip locked together", ErrUnsupported)
		}
		b.WriteString(" for " + string(l.Strength))
		if len(l.Of) > 0 {
			b.WriteString(" of ")
			for i, rel := range l.Of {
				if !b.InScope(rel) {
					return fmt.Errorf("%w: %s", ErrLockRelation, rel.RelationName())
				}
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteIdent(rel.RelationName())
			}
		}
		if l.NoWait {
			b.WriteString(" nowait")
		}
		if l.SkipLocked {
			b.WriteString(" skip locked")
		}
	}
	return nil
}

// checkRelationNames rejects relations sharing one SQL name, which would
// make column references and output groups ambiguous
func checkRelationNames(relations []sqlgen.Relation) error {
	seen := make(map[string]bool, len(relations))
	for _, r := range relations {
		name := r.RelationName()
		if seen[name] {
			return fmt.Errorf("%w: %s", ErrDuplicateRelation, name)
		}
		seen[name] = true
	}
	return nil
}

// nullableRelations marks relations that an outer join may leave without
// a matching row
func nullableRelations(s *ast.Select) map[sqlgen.Relation]bool {
	nullable := make(map[sqlgen.Relation]bool)
	seen := []sqlgen.Relation{s.From}
	for _, j := range s.Joins {
		switch j.Kind {
		case ast.JoinLeft:
			nullable[j.Relation] = true
		case ast.JoinRight:
			for _, r := range seen {
				nullable[r] = true
			}
		case ast.JoinFull:
			for _, r := range seen {
				nullable[r] = true
			}
			nullable[j.Relation] = true
		}
		seen = append(seen, j.Relation)
	}
	return nullable
}

func selection(fields []ast.Field, nullable map[sqlgen.Relation]bool) []SelectedField {
	out := make([]SelectedField, len(fields))
	for i, f := range fields {
		sf := SelectedField{Path: f.Path}
		if d, ok := f.Node.(sqlgen.Decodable); ok {
			sf.Decoder = d.Decoder()
		}
		node := f.Node
		if a, ok := node.(*sqlgen.Aliased); ok {
			node = a.Expr
		}
		if ref, ok := node.(sqlgen.ColumnRef); ok {
			sf.Owner = ref.Relation()
			sf.Nullable = nullable[sf.Owner]
			if n, ok := node.(interface{ IsNotNull() bool }); ok {
				sf.NotNull = n.IsNotNull()
			}
		}
		out[i] = sf
	}
	return out
}
