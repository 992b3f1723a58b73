package builder

import (
	"fmt"
	"strconv"

	"github.com/katungi/drizzle-orm/query/sqlgen"
)

// FrameBoundKind is one end of a window frame
type FrameBoundKind string

const (
	UnboundedPreceding FrameBoundKind = "unbounded preceding"
	Preceding          FrameBoundKind = "preceding"
	CurrentRow         FrameBoundKind = "current row"
	Following          FrameBoundKind = "following"
	UnboundedFollowing FrameBoundKind = "unbounded following"
)

// FrameBound defines a frame boundary. Offset applies to Preceding and
// Following.
type FrameBound struct {
	Kind   FrameBoundKind
	Offset int
}

// WindowFrame defines the window frame
type WindowFrame struct {
	Type  string // "rows", "range" or "groups"
	Start FrameBound
	End   FrameBound
}

// WindowFunction is a function call with an over clause
type WindowFunction struct {
	call        sqlgen.Node
	partitionBy []sqlgen.Node
	orderBy     []sqlgen.Node
	frame       *WindowFrame
	decoder     sqlgen.Decoder
}

func window(call *sqlgen.SQL) *WindowFunction {
	return &WindowFunction{call: call, decoder: call.Decoder()}
}

func RowNumber() *WindowFunction { return window(sqlgen.Expr("row_number()").MapWith(toInt64)) }
func Rank() *WindowFunction      { return window(sqlgen.Expr("rank()").MapWith(toInt64)) }
func DenseRank() *WindowFunction { return window(sqlgen.Expr("dense_rank()").MapWith(toInt64)) }

// Sum is sum(n) over a window
func Sum(n sqlgen.Node) *WindowFunction { return window(sqlgen.Expr("sum(?)", n)) }

// Avg is avg(n) over a window
func Avg(n sqlgen.Node) *WindowFunction { return window(sqlgen.Expr("avg(?)", n)) }

// Count is count(n) over a window, or count(*) when n is nil
func Count(n sqlgen.Node) *WindowFunction {
	if n == nil {
		return window(sqlgen.Expr("count(*)").MapWith(toInt64))
	}
	return window(sqlgen.Expr("count(?)", n).MapWith(toInt64))
}

// Lag reads n from offset rows before the current row
func Lag(n sqlgen.Node, offset int) *WindowFunction {
	return window(sqlgen.Expr("lag(?, "+strconv.Itoa(offset)+")", n))
}

// Lead reads n from offset rows after the current row
func Lead(n sqlgen.Node, offset int) *WindowFunction {
	return window(sqlgen.Expr("lead(?, "+strconv.Itoa(offset)+")", n))
}

func FirstValue(n sqlgen.Node) *WindowFunction { return window(sqlgen.Expr("first_value(?)", n)) }
func LastValue(n sqlgen.Node) *WindowFunction  { return window(sqlgen.Expr("last_value(?)", n)) }

// PartitionBy returns a copy partitioned by keys
func (w *WindowFunction) PartitionBy(keys ...sqlgen.Node) *WindowFunction {
	cp := *w
	cp.partitionBy = append([]sqlgen.Node(nil), keys...)
	return &cp
}

// OrderBy returns a copy ordered by keys
func (w *WindowFunction) OrderBy(keys ...sqlgen.Node) *WindowFunction {
	cp := *w
	cp.orderBy = append([]sqlgen.Node(nil), keys...)
	return &cp
}

// Frame returns a copy with an explicit frame
func (w *WindowFunction) Frame(frame WindowFrame) *WindowFunction {
	cp := *w
	cp.frame = &frame
	return &cp
}

// As gives the window function an output alias
func (w *WindowFunction) As(alias string) *sqlgen.Aliased {
	return sqlgen.Alias(w, alias)
}

func (w *WindowFunction) Decoder() sqlgen.Decoder { return w.decoder }

func (w *WindowFunction) Render(b *sqlgen.Builder) error {
	if err := b.Render(w.call); err != nil {
		return err
	}
	b.WriteString(" over (")
	sep := ""
	if len(w.partitionBy) > 0 {
		b.WriteString("partition by ")
		if err := b.RenderList(w.partitionBy, ", "); err != nil {
			return err
		}
		sep = " "
	}
	if len(w.orderBy) > 0 {
		b.WriteString(sep + "order by ")
		if err := b.RenderList(w.orderBy, ", "); err != nil {
			return err
		}
		sep = " "
	}
	if w.frame != nil {
		switch w.frame.Type {
		case "rows", "range", "groups":
		default:
			return fmt.Errorf("%w: unknown frame type %q", ErrInvalidProjection, w.frame.Type)
		}
		start, err := frameBound(w.frame.Start)
		if err != nil {
			return err
		}
		end, err := frameBound(w.frame.End)
		if err != nil {
			return err
		}
		b.WriteString(sep + w.frame.Type + " between " + start + " and " + end)
	}
	b.WriteString(")")
	return nil
}

func frameBound(fb FrameBound) (string, error) {
	switch fb.Kind {
	case Preceding, Following:
		if fb.Offset < 0 {
			return "", fmt.Errorf("%w: negative frame offset", ErrInvalidProjection)
		}
		return strconv.Itoa(fb.Offset) + " " + string(fb.Kind), nil
	case UnboundedPreceding, CurrentRow, UnboundedFollowing:
		return string(fb.Kind), nil
	default:
		return "", fmt.Errorf("%w: unknown frame bound %q", ErrInvalidProjection, fb.Kind)
	}
}

func toInt64(v interface{}) (interface{}, error) {
	switch n := v.(type) {
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	case string:
		return strconv.ParseInt(n, 10, 64)
	case int:
		return int64(n), nil
	}
	return v, nil
}
