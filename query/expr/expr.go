// Package expr provides comparison and logical operators over SQL nodes.
package expr

import (
	"reflect"

	"github.com/katungi/drizzle-orm/query/sqlgen"
)

// bindTo turns v into a node, encoding plain values with the column on the
// other side of the comparison
func bindTo(left sqlgen.Node, v interface{}) sqlgen.Node {
	var enc sqlgen.Encoder
	if e, ok := left.(sqlgen.Encoder); ok {
		enc = e
	}
	return sqlgen.Bind(v, enc)
}

func binary(left sqlgen.Node, op string, right interface{}) sqlgen.Node {
	return sqlgen.Concat(left, sqlgen.Raw(" "+op+" "), bindTo(left, right))
}

func Eq(left sqlgen.Node, right interface{}) sqlgen.Node  { return binary(left, "=", right) }
func Ne(left sqlgen.Node, right interface{}) sqlgen.Node  { return binary(left, "<>", right) }
func Gt(left sqlgen.Node, right interface{}) sqlgen.Node  { return binary(left, ">", right) }
func Gte(left sqlgen.Node, right interface{}) sqlgen.Node { return binary(left, ">=", right) }
func Lt(left sqlgen.Node, right interface{}) sqlgen.Node  { return binary(left, "<", right) }
func Lte(left sqlgen.Node, right interface{}) sqlgen.Node { return binary(left, "<=", right) }

func Like(left sqlgen.Node, pattern interface{}) sqlgen.Node {
	return binary(left, "like", pattern)
}

func NotLike(left sqlgen.Node, pattern interface{}) sqlgen.Node {
	return binary(left, "not like", pattern)
}

// ILike is a case-insensitive like; Postgres only
func ILike(left sqlgen.Node, pattern interface{}) sqlgen.Node {
	return binary(left, "ilike", pattern)
}

func IsNull(n sqlgen.Node) sqlgen.Node {
	return sqlgen.Concat(n, sqlgen.Raw(" is null"))
}

func IsNotNull(n sqlgen.Node) sqlgen.Node {
	return sqlgen.Concat(n, sqlgen.Raw(" is not null"))
}

// InArray renders left in (...). values is either a slice, each element
// becoming a parameter, or a statement whose SQL is embedded. An empty
// slice matches nothing.
func InArray(left sqlgen.Node, values interface{}) sqlgen.Node {
	return in(left, "in", values, "false")
}

// NotInArray is the negation of InArray. An empty slice matches everything.
func NotInArray(left sqlgen.Node, values interface{}) sqlgen.Node {
	return in(left, "not in", values, "true")
}

func in(left sqlgen.Node, op string, values interface{}, empty string) sqlgen.Node {
	if values == nil {
		return sqlgen.Raw(empty)
	}
	if n, ok := values.(sqlgen.Node); ok && !isPlaceholder(n) {
		return sqlgen.Concat(left, sqlgen.Raw(" "+op+" "), n)
	}
	rv := reflect.ValueOf(values)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return sqlgen.Concat(left, sqlgen.Raw(" "+op+" ("), bindTo(left, values), sqlgen.Raw(")"))
	}
	if rv.Len() == 0 {
		return sqlgen.Raw(empty)
	}
	items := make([]sqlgen.Node, rv.Len())
	for i := range items {
		items[i] = bindTo(left, rv.Index(i).Interface())
	}
	return sqlgen.Concat(left, sqlgen.Raw(" "+op+" ("), sqlgen.Join(items, ", "), sqlgen.Raw(")"))
}

func isPlaceholder(n sqlgen.Node) bool {
	switch n.(type) {
	case sqlgen.Placeholder, *sqlgen.Placeholder:
		return true
	}
	return false
}

func Between(left sqlgen.Node, min, max interface{}) sqlgen.Node {
	return sqlgen.Concat(left, sqlgen.Raw(" between "), bindTo(left, min), sqlgen.Raw(" and "), bindTo(left, max))
}

func NotBetween(left sqlgen.Node, min, max interface{}) sqlgen.Node {
	return sqlgen.Concat(left, sqlgen.Raw(" not between "), bindTo(left, min), sqlgen.Raw(" and "), bindTo(left, max))
}

// Exists embeds a statement in an exists predicate
func Exists(stmt sqlgen.Node) sqlgen.Node {
	return sqlgen.Concat(sqlgen.Raw("exists "), stmt)
}

func NotExists(stmt sqlgen.Node) sqlgen.Node {
	return sqlgen.Concat(sqlgen.Raw("not exists "), stmt)
}

// And joins conditions with and, wrapped in parentheses. Nil conditions are
// skipped; with none left the result is nil.
func And(conds ...sqlgen.Node) sqlgen.Node {
	return logical("and", conds)
}

// Or joins conditions with or, wrapped in parentheses
func Or(conds ...sqlgen.Node) sqlgen.Node {
	return logical("or", conds)
}

func logical(op string, conds []sqlgen.Node) sqlgen.Node {
	var kept []sqlgen.Node
	for _, c := range conds {
		if c != nil {
			kept = append(kept, c)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return sqlgen.Concat(sqlgen.Raw("("), sqlgen.Join(kept, " "+op+" "), sqlgen.Raw(")"))
}

// Not negates cond. A nil condition stays nil.
func Not(cond sqlgen.Node) sqlgen.Node {
	if cond == nil {
		return nil
	}
	return sqlgen.Concat(sqlgen.Raw("not ("), cond, sqlgen.Raw(")"))
}

// Asc orders by n ascending
func Asc(n sqlgen.Node) sqlgen.Node {
	return sqlgen.Concat(n, sqlgen.Raw(" asc"))
}

// Desc orders by n descending
func Desc(n sqlgen.Node) sqlgen.Node {
	return sqlgen.Concat(n, sqlgen.Raw(" desc"))
}
