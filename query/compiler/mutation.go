package compiler

import (
	"fmt"

	"github.com/katungi/drizzle-orm/query/ast"
	"github.com/katungi/drizzle-orm/query/schema"
	"github.com/katungi/drizzle-orm/query/sqlgen"
)

func (c *Compiler) renderInsert(b *sqlgen.Builder, s *ast.Insert) ([]SelectedField, error) {
	if s.Table == nil {
		return nil, ErrMissingTable
	}
	if len(s.Rows) == 0 || len(s.Columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyInsert, s.Table.RelationName())
	}
	mysql := c.dialect.Provider() == sqlgen.MySQL
	conflict := s.Conflict
	if conflict != nil && !conflict.DoNothing && len(conflict.Target) == 0 && !mysql {
		return nil, ErrConflictTarget
	}

	leave := b.EnterScope([]sqlgen.Relation{s.Table})
	defer leave()

	b.WriteString("insert ")
	if mysql && conflict != nil && conflict.DoNothing {
		b.WriteString("ignore ")
	}
	b.WriteString("into ")
	renderTarget(b, s.Table)

	b.WriteString(" (")
	for i, col := range s.Columns {
		if err := checkOwnColumn(s.Table, col); err != nil {
			return nil, err
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteIdent(col.ColumnName())
	}
	b.WriteString(") values ")
	for i, row := range s.Rows {
		if len(row) != len(s.Columns) {
			return nil, fmt.Errorf("%w: row %d has %d values for %d columns", ErrEmptyInsert, i, len(row), len(s.Columns))
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		if err := b.RenderList(row, ", "); err != nil {
			return nil, err
		}
		b.WriteString(")")
	}

	if conflict != nil {
		if err := c.renderConflict(b, s.Table, conflict); err != nil {
			return nil, err
		}
	}
	return c.renderReturning(b, s.Table, s.Returning)
}

func (c *Compiler) renderConflict(b *sqlgen.Builder, t *schema.Table, conflict *ast.Conflict) error {
	if c.dialect.Provider() == sqlgen.MySQL {
		if conflict.DoNothing {
			return nil
		}
		if conflict.Where != nil {
			return fmt.Errorf("%w: conditional upsert on mysql", ErrUnsupported)
		}
		b.WriteString(" on duplicate key update ")
		return renderAssignments(b, t, conflict.Set)
	}

	b.WriteString(" on conflict")
	if len(conflict.Target) > 0 {
		b.WriteString(" (")
		for i, col := range conflict.Target {
			if err := checkOwnColumn(t, col); err != nil {
				return err
			}
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteIdent(col.ColumnName())
		}
		b.WriteString(")")
	}
	if conflict.DoNothing {
		b.WriteString(" do nothing")
		return nil
	}
	b.WriteString(" do update set ")
	if err := renderAssignments(b, t, conflict.Set); err != nil {
		return err
	}
	if conflict.Where != nil {
		b.WriteString(" where ")
		return b.Render(conflict.Where)
	}
	return nil
}

func (c *Compiler) renderUpdate(b *sqlgen.Builder, s *ast.Update) ([]SelectedField, error) {
	if s.Table == nil {
		return nil, ErrMissingTable
	}
	leave := b.EnterScope([]sqlgen.Relation{s.Table})
	defer leave()

	b.WriteString("update ")
	renderTarget(b, s.Table)
	b.WriteString(" set ")
	if err := renderAssignments(b, s.Table, s.Set); err != nil {
		return nil, err
	}
	if s.Where != nil {
		b.WriteString(" where ")
		if err := b.Render(s.Where); err != nil {
			return nil, err
		}
	}
	return c.renderReturning(b, s.Table, s.Returning)
}

func (c *Compiler) renderDelete(b *sqlgen.Builder, s *ast.Delete) ([]SelectedField, error) {
	if s.Table == nil {
		return nil, ErrMissingTable
	}
	leave := b.EnterScope([]sqlgen.Relation{s.Table})
	defer leave()

	b.WriteString("delete from ")
	renderTarget(b, s.Table)
	if s.Where != nil {
		b.WriteString(" where ")
		if err := b.Render(s.Where); err != nil {
			return nil, err
		}
	}
	return c.renderReturning(b, s.Table, s.Returning)
}

func (c *Compiler) renderReturning(b *sqlgen.Builder, t *schema.Table, p *ast.Projection) ([]SelectedField, error) {
	if p == nil {
		return nil, nil
	}
	if c.dialect.Provider() == sqlgen.MySQL {
		return nil, fmt.Errorf("%w: returning on mysql", ErrUnsupported)
	}
	fields := p.Fields
	if p.Kind == ast.ProjectAll {
		fields = ast.TableFields(t)
	}
	b.WriteString(" returning ")
	if err := renderProjection(b, fields, true); err != nil {
		return nil, err
	}
	return selection(fields, nil), nil
}

// renderTarget writes the table of a data-modifying statement
func renderTarget(b *sqlgen.Builder, t *schema.Table) {
	b.WriteIdent(t.Name())
	if t.IsAlias() {
		b.WriteString(" as ")
		b.WriteIdent(t.RelationName())
	}
}

func renderAssignments(b *sqlgen.Builder, t *schema.Table, set []ast.Assignment) error {
	if len(set) == 0 {
		return ErrEmptySet
	}
	for i, a := range set {
		if err := checkOwnColumn(t, a.Column); err != nil {
			return err
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteIdent(a.Column.ColumnName())
		b.WriteString(" = ")
		if a.Value == nil {
			b.WriteString("null")
			continue
		}
		if err := b.Render(a.Value); err != nil {
			return err
		}
	}
	return nil
}

func checkOwnColumn(t *schema.Table, col *schema.Column) error {
	if col == nil || col.Table() != t {
		return fmt.Errorf("%w: column does not belong to %s", sqlgen.ErrUnresolvedColumn, t.RelationName())
	}
	return nil
}
