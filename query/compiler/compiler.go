// Package compiler compiles query AST into SQL.
package compiler

import (
	"fmt"

	"github.com/katungi/drizzle-orm/query/ast"
	"github.com/katungi/drizzle-orm/query/sqlgen"
)

// Compiler compiles query AST into SQL
type Compiler struct {
	dialect sqlgen.Dialect
}

// NewCompiler creates a new query compiler
func NewCompiler(dialect sqlgen.Dialect) *Compiler {
	return &Compiler{dialect: dialect}
}

// Dialect returns the dialect the compiler renders for
func (c *Compiler) Dialect() sqlgen.Dialect {
	return c.dialect
}

// SelectedField describes one output column of a compiled statement
type SelectedField struct {
	Path    []string
	Decoder sqlgen.Decoder
	// Owner is the relation the field reads from, nil for expressions
	// that do not reference a single column
	Owner sqlgen.Relation
	// Nullable is set when an outer join may leave Owner without a row
	Nullable bool
	// NotNull is set for columns declared not null
	NotNull bool
}

// Compiled is the output of compiling a statement
type Compiled struct {
	Query     sqlgen.Query
	Kind      ast.NodeType
	Selection []SelectedField
}

// Compile compiles a statement into SQL, arguments and output metadata.
// Compiling the same statement twice yields identical results.
func (c *Compiler) Compile(stmt ast.Statement) (*Compiled, error) {
	if stmt == nil {
		return nil, ErrUnsupportedQuery
	}
	b := sqlgen.NewBuilder(c.dialect, c)
	selection, err := c.render(b, stmt)
	if err != nil {
		return nil, err
	}
	return &Compiled{
		Query:     b.Query(),
		Kind:      stmt.Type(),
		Selection: selection,
	}, nil
}

// CompileNode renders a standalone fragment, compiling any statements
// nested in it
func (c *Compiler) CompileNode(n sqlgen.Node) (sqlgen.Query, error) {
	return sqlgen.Build(c.dialect, n, c)
}

// RenderStatement renders a statement nested in another query. It shares
// the enclosing builder so parameters keep their global order.
func (c *Compiler) RenderStatement(b *sqlgen.Builder, n sqlgen.Node) error {
	stmt, ok := n.(ast.Statement)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnsupportedQuery, n)
	}
	b.WriteString("(")
	err := b.Qualified(func() error {
		_, err := c.render(b, stmt)
		return err
	})
	if err != nil {
		return err
	}
	b.WriteString(")")
	return nil
}

func (c *Compiler) render(b *sqlgen.Builder, stmt ast.Statement) ([]SelectedField, error) {
	switch s := stmt.(type) {
	case *ast.Select:
		return c.renderSelect(b, s)
	case *ast.Insert:
		return c.renderInsert(b, s)
	case *ast.Update:
		return c.renderUpdate(b, s)
	case *ast.Delete:
		return c.renderDelete(b, s)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedQuery, stmt)
	}
}
