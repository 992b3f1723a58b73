package expr

import (
	"strconv"

	"github.com/katungi/drizzle-orm/query/sqlgen"
)

// toInt64 decodes count results, which drivers return as int64, []byte or
// string
func toInt64(v interface{}) (interface{}, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	case string:
		return strconv.ParseInt(n, 10, 64)
	}
	return v, nil
}

// toNumberString decodes sum and avg results, which are exact numerics on
// most databases
func toNumberString(v interface{}) (interface{}, error) {
	switch n := v.(type) {
	case []byte:
		return string(n), nil
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	case int64:
		return strconv.FormatInt(n, 10), nil
	}
	return v, nil
}

// Count counts rows, or non-null values of n when given
func Count(n ...sqlgen.Node) *sqlgen.SQL {
	if len(n) == 0 || n[0] == nil {
		return sqlgen.Expr("count(*)").MapWith(toInt64)
	}
	return sqlgen.Expr("count(?)", n[0]).MapWith(toInt64)
}

func CountDistinct(n sqlgen.Node) *sqlgen.SQL {
	return sqlgen.Expr("count(distinct ?)", n).MapWith(toInt64)
}

// Sum decodes to a decimal string to avoid losing precision
func Sum(n sqlgen.Node) *sqlgen.SQL {
	return sqlgen.Expr("sum(?)", n).MapWith(toNumberString)
}

// Avg decodes to a decimal string to avoid losing precision
func Avg(n sqlgen.Node) *sqlgen.SQL {
	return sqlgen.Expr("avg(?)", n).MapWith(toNumberString)
}

// Max keeps the decoder of n when n is a column
func Max(n sqlgen.Node) *sqlgen.SQL {
	return withDecoderOf(sqlgen.Expr("max(?)", n), n)
}

// Min keeps the decoder of n when n is a column
func Min(n sqlgen.Node) *sqlgen.SQL {
	return withDecoderOf(sqlgen.Expr("min(?)", n), n)
}

func withDecoderOf(s *sqlgen.SQL, n sqlgen.Node) *sqlgen.SQL {
	if d, ok := n.(sqlgen.Decodable); ok && d.Decoder() != nil {
		return s.MapWith(d.Decoder().DecodeValue)
	}
	return s
}
