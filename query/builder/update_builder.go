package builder

import (
	"context"

	"github.com/katungi/drizzle-orm/query/ast"
	"github.com/katungi/drizzle-orm/query/executor"
	"github.com/katungi/drizzle-orm/query/schema"
	"github.com/katungi/drizzle-orm/query/sqlgen"
)

// UpdateBuilder builds an update statement
type UpdateBuilder struct {
	qb   *QueryBuilder
	stmt ast.Update
	err  error
}

// Update starts an update of table
func (q *QueryBuilder) Update(table *schema.Table) *UpdateBuilder {
	u := &UpdateBuilder{qb: q}
	if table == nil {
		u.err = ErrMissingTable
	}
	u.stmt.Table = table
	return u
}

func (u *UpdateBuilder) next(fn func(cp *UpdateBuilder) error) *UpdateBuilder {
	cp := *u
	if cp.err == nil {
		cp.err = fn(&cp)
	}
	return &cp
}

// Set sets the assigned columns; an empty set is an error
func (u *UpdateBuilder) Set(values Row) *UpdateBuilder {
	return u.next(func(cp *UpdateBuilder) error {
		set, err := assignments(cp.stmt.Table, values)
		cp.stmt.Set = set
		return err
	})
}

func (u *UpdateBuilder) Where(cond sqlgen.Node) *UpdateBuilder {
	return u.next(func(cp *UpdateBuilder) error {
		cp.stmt.Where = cond
		return nil
	})
}

func (u *UpdateBuilder) Returning(fields ...Projection) *UpdateBuilder {
	return u.next(func(cp *UpdateBuilder) error {
		p, err := returning(cp.stmt.Table, fields)
		cp.stmt.Returning = p
		return err
	})
}

// Statement returns the statement built so far
func (u *UpdateBuilder) Statement() (*ast.Update, error) {
	if u.err != nil {
		return nil, u.err
	}
	stmt := u.stmt
	return &stmt, nil
}

func (u *UpdateBuilder) ToSQL() (sqlgen.Query, error) {
	stmt, err := u.Statement()
	if err != nil {
		return sqlgen.Query{}, err
	}
	return u.qb.compile(stmt)
}

func (u *UpdateBuilder) Execute(ctx context.Context) ([]map[string]interface{}, error) {
	stmt, err := u.Statement()
	if err != nil {
		return nil, err
	}
	if err := u.qb.requireSession(); err != nil {
		return nil, err
	}
	return u.qb.session.All(ctx, stmt)
}

func (u *UpdateBuilder) Prepare(name string) (*executor.Prepared, error) {
	stmt, err := u.Statement()
	if err != nil {
		return nil, err
	}
	if err := u.qb.requireSession(); err != nil {
		return nil, err
	}
	return u.qb.session.Prepare(name, stmt)
}

// DeleteBuilder builds a delete statement
type DeleteBuilder struct {
	qb   *QueryBuilder
	stmt ast.Delete
	err  error
}

// Delete starts a delete from table
func (q *QueryBuilder) Delete(table *schema.Table) *DeleteBuilder {
	d := &DeleteBuilder{qb: q}
	if table == nil {
		d.err = ErrMissingTable
	}
	d.stmt.Table = table
	return d
}

func (d *DeleteBuilder) next(fn func(cp *DeleteBuilder) error) *DeleteBuilder {
	cp := *d
	if cp.err == nil {
		cp.err = fn(&cp)
	}
	return &cp
}

func (d *DeleteBuilder) Where(cond sqlgen.Node) *DeleteBuilder {
	return d.next(func(cp *DeleteBuilder) error {
		cp.stmt.Where = cond
		return nil
	})
}

func (d *DeleteBuilder) Returning(fields ...Projection) *DeleteBuilder {
	return d.next(func(cp *DeleteBuilder) error {
		p, err := returning(cp.stmt.Table, fields)
		cp.stmt.Returning = p
		return err
	})
}

func (d *DeleteBuilder) Statement() (*ast.Delete, error) {
	if d.err != nil {
		return nil, d.err
	}
	stmt := d.stmt
	return &stmt, nil
}

func (d *DeleteBuilder) ToSQL() (sqlgen.Query, error) {
	stmt, err := d.Statement()
	if err != nil {
		return sqlgen.Query{}, err
	}
	return d.qb.compile(stmt)
}

func (d *DeleteBuilder) Execute(ctx context.Context) ([]map[string]interface{}, error) {
	stmt, err := d.Statement()
	if err != nil {
		return nil, err
	}
	if err := d.qb.requireSession(); err != nil {
		return nil, err
	}
	return d.qb.session.All(ctx, stmt)
}

func (d *DeleteBuilder) Prepare(name string) (*executor.Prepared, error) {
	stmt, err := d.Statement()
	if err != nil {
		return nil, err
	}
	if err := d.qb.requireSession(); err != nil {
		return nil, err
	}
	return d.qb.session.Prepare(name, stmt)
}
