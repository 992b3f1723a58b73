package builder

import (
	"github.com/katungi/drizzle-orm/query/ast"
)

// As wraps the statement as a derived table usable in From and joins. The
// name is required.
func (s *SelectBuilder) As(name string) *ast.Subquery {
	return s.subquery(name, false)
}

// AsCTE wraps the statement as a common table expression for With
func (s *SelectBuilder) AsCTE(name string) *ast.Subquery {
	return s.subquery(name, true)
}

func (s *SelectBuilder) subquery(name string, cte bool) *ast.Subquery {
	sub := &ast.Subquery{Name: name, CTE: cte}
	stmt, err := s.Statement()
	switch {
	case err != nil:
		sub.Err = err
	case name == "":
		sub.Err = ast.ErrUnaliasedSubquery
	default:
		sub.Stmt = stmt
	}
	return sub
}
