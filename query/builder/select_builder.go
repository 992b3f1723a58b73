package builder

import (
	"context"
	"fmt"

	"github.com/katungi/drizzle-orm/query/ast"
	"github.com/katungi/drizzle-orm/query/compiler"
	"github.com/katungi/drizzle-orm/query/executor"
	"github.com/katungi/drizzle-orm/query/sqlgen"
)

// Lock strengths for SelectBuilder.For
const (
	ForUpdate      = ast.ForUpdate
	ForNoKeyUpdate = ast.ForNoKeyUpdate
	ForShare       = ast.ForShare
	ForKeyShare    = ast.ForKeyShare
)

// LockOptions refine a locking clause
type LockOptions struct {
	Of         []sqlgen.Relation
	NoWait     bool
	SkipLocked bool
}

// SelectBuilder builds a select statement. Every method returns a new
// builder; the receiver is never modified. The first error is kept and
// reported by ToSQL, All and Prepare.
type SelectBuilder struct {
	qb   *QueryBuilder
	stmt ast.Select
	err  error
}

func (q *QueryBuilder) newSelect(distinct bool, fields []Projection) *SelectBuilder {
	s := &SelectBuilder{qb: q}
	s.stmt.Distinct = distinct
	s.stmt.With = append([]*ast.Subquery(nil), q.ctes...)
	s.stmt.Projection, s.err = buildProjection(fields)
	return s
}

func (s *SelectBuilder) clone() *SelectBuilder {
	cp := *s
	cp.stmt.With = append([]*ast.Subquery(nil), s.stmt.With...)
	cp.stmt.Joins = append([]ast.Join(nil), s.stmt.Joins...)
	cp.stmt.GroupBy = append([]sqlgen.Node(nil), s.stmt.GroupBy...)
	cp.stmt.OrderBy = append([]sqlgen.Node(nil), s.stmt.OrderBy...)
	cp.stmt.Locks = append([]ast.Lock(nil), s.stmt.Locks...)
	return &cp
}

// next clones the builder and applies fn unless an error is already set
func (s *SelectBuilder) next(fn func(cp *SelectBuilder) error) *SelectBuilder {
	cp := s.clone()
	if cp.err == nil {
		cp.err = fn(cp)
	}
	return cp
}

// From sets the relation to select from
func (s *SelectBuilder) From(rel sqlgen.Relation) *SelectBuilder {
	return s.next(func(cp *SelectBuilder) error {
		if err := checkRelation(rel); err != nil {
			return err
		}
		cp.stmt.From = rel
		return nil
	})
}

// Where sets the where condition, replacing any previous one
func (s *SelectBuilder) Where(cond sqlgen.Node) *SelectBuilder {
	return s.next(func(cp *SelectBuilder) error {
		cp.stmt.Where = cond
		return nil
	})
}

// WhereFn builds the where condition from the projection's fields
func (s *SelectBuilder) WhereFn(fn func(f Selected) sqlgen.Node) *SelectBuilder {
	return s.next(func(cp *SelectBuilder) error {
		fields, err := cp.stmt.OutputFields()
		if err != nil {
			return err
		}
		cp.stmt.Where = fn(selected(fields))
		return nil
	})
}

// GroupBy sets the grouping keys
func (s *SelectBuilder) GroupBy(keys ...sqlgen.Node) *SelectBuilder {
	return s.next(func(cp *SelectBuilder) error {
		cp.stmt.GroupBy = append([]sqlgen.Node(nil), keys...)
		return nil
	})
}

// Having sets the having condition
func (s *SelectBuilder) Having(cond sqlgen.Node) *SelectBuilder {
	return s.next(func(cp *SelectBuilder) error {
		cp.stmt.Having = cond
		return nil
	})
}

// HavingFn builds the having condition from the projection's fields
func (s *SelectBuilder) HavingFn(fn func(f Selected) sqlgen.Node) *SelectBuilder {
	return s.next(func(cp *SelectBuilder) error {
		fields, err := cp.stmt.OutputFields()
		if err != nil {
			return err
		}
		cp.stmt.Having = fn(selected(fields))
		return nil
	})
}

// OrderBy sets the ordering keys
func (s *SelectBuilder) OrderBy(keys ...sqlgen.Node) *SelectBuilder {
	return s.next(func(cp *SelectBuilder) error {
		cp.stmt.OrderBy = append([]sqlgen.Node(nil), keys...)
		return nil
	})
}

// OrderByFn builds the ordering keys from the projection's fields
func (s *SelectBuilder) OrderByFn(fn func(f Selected) []sqlgen.Node) *SelectBuilder {
	return s.next(func(cp *SelectBuilder) error {
		fields, err := cp.stmt.OutputFields()
		if err != nil {
			return err
		}
		cp.stmt.OrderBy = fn(selected(fields))
		return nil
	})
}

// Limit takes a non-negative integer or a placeholder
func (s *SelectBuilder) Limit(n interface{}) *SelectBuilder {
	return s.next(func(cp *SelectBuilder) error {
		cp.stmt.Limit = n
		return nil
	})
}

// Offset takes a non-negative integer or a placeholder
func (s *SelectBuilder) Offset(n interface{}) *SelectBuilder {
	return s.next(func(cp *SelectBuilder) error {
		cp.stmt.Offset = n
		return nil
	})
}

// For appends a locking clause
func (s *SelectBuilder) For(strength ast.LockStrength, opts ...LockOptions) *SelectBuilder {
	return s.next(func(cp *SelectBuilder) error {
		lock := ast.Lock{Strength: strength}
		for _, o := range opts {
			lock.Of = append(lock.Of, o.Of...)
			lock.NoWait = lock.NoWait || o.NoWait
			lock.SkipLocked = lock.SkipLocked || o.SkipLocked
		}
		cp.stmt.Locks = append(cp.stmt.Locks, lock)
		return nil
	})
}

// Statement returns the statement built so far
func (s *SelectBuilder) Statement() (*ast.Select, error) {
	if s.err != nil {
		return nil, s.err
	}
	stmt := s.clone().stmt
	return &stmt, nil
}

// Compile compiles the statement along with its output metadata
func (s *SelectBuilder) Compile() (*compiler.Compiled, error) {
	stmt, err := s.Statement()
	if err != nil {
		return nil, err
	}
	return s.qb.compiler.Compile(stmt)
}

// ToSQL renders the statement without executing it
func (s *SelectBuilder) ToSQL() (sqlgen.Query, error) {
	stmt, err := s.Statement()
	if err != nil {
		return sqlgen.Query{}, err
	}
	return s.qb.compile(stmt)
}

// Render embeds the statement as a subquery in another query
func (s *SelectBuilder) Render(b *sqlgen.Builder) error {
	stmt, err := s.Statement()
	if err != nil {
		return err
	}
	return b.RenderStatement(stmt)
}

// All executes the statement and returns its rows
func (s *SelectBuilder) All(ctx context.Context) ([]map[string]interface{}, error) {
	stmt, err := s.Statement()
	if err != nil {
		return nil, err
	}
	if err := s.qb.requireSession(); err != nil {
		return nil, err
	}
	return s.qb.session.All(ctx, stmt)
}

// Prepare compiles the statement once and registers it under name
func (s *SelectBuilder) Prepare(name string) (*executor.Prepared, error) {
	stmt, err := s.Statement()
	if err != nil {
		return nil, err
	}
	if err := s.qb.requireSession(); err != nil {
		return nil, err
	}
	return s.qb.session.Prepare(name, stmt)
}

func checkRelation(rel sqlgen.Relation) error {
	if rel == nil {
		return ErrMissingRelation
	}
	if sub, ok := rel.(*ast.Subquery); ok {
		return sub.Validate()
	}
	return nil
}

func (s *SelectBuilder) String() string {
	q, err := s.ToSQL()
	if err != nil {
		return fmt.Sprintf("<invalid select: %v>", err)
	}
	return q.SQL
}
