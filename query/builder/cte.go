package builder

import (
	"github.com/katungi/drizzle-orm/query/ast"
)

// With returns a builder whose selects start with the given common table
// expressions, rendered in order. Create them with AsCTE and reference the
// same values in From and joins.
func (q *QueryBuilder) With(ctes ...*ast.Subquery) *QueryBuilder {
	cp := *q
	cp.ctes = append([]*ast.Subquery(nil), q.ctes...)
	for _, cte := range ctes {
		if cte != nil {
			cp.ctes = append(cp.ctes, cte)
		}
	}
	return &cp
}
