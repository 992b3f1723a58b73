package builder

import (
	"context"

	"github.com/katungi/drizzle-orm/query/ast"
	"github.com/katungi/drizzle-orm/query/compiler"
	"github.com/katungi/drizzle-orm/query/executor"
	"github.com/katungi/drizzle-orm/query/schema"
	"github.com/katungi/drizzle-orm/query/sqlgen"
)

// ConflictUpdate configures an on conflict do update clause
type ConflictUpdate struct {
	Target []*schema.Column
	Set    Row
	Where  sqlgen.Node
}

// InsertBuilder builds an insert statement
type InsertBuilder struct {
	qb   *QueryBuilder
	stmt ast.Insert
	err  error
}

// Insert starts an insert into table
func (q *QueryBuilder) Insert(table *schema.Table) *InsertBuilder {
	i := &InsertBuilder{qb: q}
	if table == nil {
		i.err = ErrMissingTable
	}
	i.stmt.Table = table
	return i
}

func (i *InsertBuilder) next(fn func(cp *InsertBuilder) error) *InsertBuilder {
	cp := *i
	if cp.stmt.Conflict != nil {
		c := *cp.stmt.Conflict
		cp.stmt.Conflict = &c
	}
	if cp.err == nil {
		cp.err = fn(&cp)
	}
	return &cp
}

// Values sets the rows to insert. The column list is every key supplied by
// any row, in table order, plus columns with application defaults. A row
// without a listed key inserts the column's default.
func (i *InsertBuilder) Values(rows ...Row) *InsertBuilder {
	return i.next(func(cp *InsertBuilder) error {
		if len(rows) == 0 {
			return compiler.ErrEmptyInsert
		}
		t := cp.stmt.Table
		keys := make(map[string]bool)
		for _, r := range rows {
			if err := checkKeys(t, r); err != nil {
				return err
			}
			for k := range r {
				keys[k] = true
			}
		}
		var cols []*schema.Column
		for _, c := range t.Columns() {
			if keys[c.Key()] || c.Default().Kind == schema.DefaultApplication {
				cols = append(cols, c)
			}
		}
		values := make([][]sqlgen.Node, len(rows))
		for ri, r := range rows {
			row := make([]sqlgen.Node, len(cols))
			for ci, c := range cols {
				if v, ok := r[c.Key()]; ok {
					row[ci] = sqlgen.Bind(v, c)
				} else if v, ok := c.Default().Generate(); ok {
					row[ci] = sqlgen.Bind(v, c)
				} else {
					row[ci] = ast.DefaultValue{Column: c}
				}
			}
			values[ri] = row
		}
		cp.stmt.Columns = cols
		cp.stmt.Rows = values
		return nil
	})
}

// OnConflictDoNothing skips rows that violate a constraint, optionally
// limited to the given conflict target
func (i *InsertBuilder) OnConflictDoNothing(target ...*schema.Column) *InsertBuilder {
	return i.next(func(cp *InsertBuilder) error {
		cp.stmt.Conflict = &ast.Conflict{Target: target, DoNothing: true}
		return nil
	})
}

// OnConflictDoUpdate updates the conflicting row. A target is required.
func (i *InsertBuilder) OnConflictDoUpdate(u ConflictUpdate) *InsertBuilder {
	return i.next(func(cp *InsertBuilder) error {
		set, err := assignments(cp.stmt.Table, u.Set)
		if err != nil {
			return err
		}
		cp.stmt.Conflict = &ast.Conflict{Target: u.Target, Set: set, Where: u.Where}
		return nil
	})
}

// Returning adds a returning clause; without a projection every column is
// returned
func (i *InsertBuilder) Returning(fields ...Projection) *InsertBuilder {
	return i.next(func(cp *InsertBuilder) error {
		p, err := returning(cp.stmt.Table, fields)
		cp.stmt.Returning = p
		return err
	})
}

// Statement returns the statement built so far
func (i *InsertBuilder) Statement() (*ast.Insert, error) {
	if i.err != nil {
		return nil, i.err
	}
	stmt := i.stmt
	return &stmt, nil
}

// ToSQL renders the statement without executing it
func (i *InsertBuilder) ToSQL() (sqlgen.Query, error) {
	stmt, err := i.Statement()
	if err != nil {
		return sqlgen.Query{}, err
	}
	return i.qb.compile(stmt)
}

// Render embeds the statement in another query
func (i *InsertBuilder) Render(b *sqlgen.Builder) error {
	stmt, err := i.Statement()
	if err != nil {
		return err
	}
	return b.RenderStatement(stmt)
}

// Execute runs the insert and returns the returned rows, if any
func (i *InsertBuilder) Execute(ctx context.Context) ([]map[string]interface{}, error) {
	stmt, err := i.Statement()
	if err != nil {
		return nil, err
	}
	if err := i.qb.requireSession(); err != nil {
		return nil, err
	}
	return i.qb.session.All(ctx, stmt)
}

// Prepare compiles the statement once and registers it under name
func (i *InsertBuilder) Prepare(name string) (*executor.Prepared, error) {
	stmt, err := i.Statement()
	if err != nil {
		return nil, err
	}
	if err := i.qb.requireSession(); err != nil {
		return nil, err
	}
	return i.qb.session.Prepare(name, stmt)
}
