package builder

import (
	"github.com/katungi/drizzle-orm/query/ast"
	"github.com/katungi/drizzle-orm/query/sqlgen"
)

func (s *SelectBuilder) join(kind ast.JoinKind, rel sqlgen.Relation, on sqlgen.Node) *SelectBuilder {
	return s.next(func(cp *SelectBuilder) error {
		if err := checkRelation(rel); err != nil {
			return err
		}
		cp.stmt.Joins = append(cp.stmt.Joins, ast.Join{Kind: kind, Relation: rel, On: on})
		return nil
	})
}

// LeftJoin adds a left join; the joined relation's fields may be null
func (s *SelectBuilder) LeftJoin(rel sqlgen.Relation, on sqlgen.Node) *SelectBuilder {
	return s.join(ast.JoinLeft, rel, on)
}

// RightJoin adds a right join; every earlier relation's fields may be null
func (s *SelectBuilder) RightJoin(rel sqlgen.Relation, on sqlgen.Node) *SelectBuilder {
	return s.join(ast.JoinRight, rel, on)
}

// InnerJoin adds an inner join
func (s *SelectBuilder) InnerJoin(rel sqlgen.Relation, on sqlgen.Node) *SelectBuilder {
	return s.join(ast.JoinInner, rel, on)
}

// FullJoin adds a full join; all relations' fields may be null
func (s *SelectBuilder) FullJoin(rel sqlgen.Relation, on sqlgen.Node) *SelectBuilder {
	return s.join(ast.JoinFull, rel, on)
}
