package sqlgen

import (
	"fmt"
	"strings"
)

// Raw is literal SQL text
type Raw string

// Render writes the text unchanged
func (r Raw) Render(b *Builder) error {
	b.WriteString(string(r))
	return nil
}

// Name is an identifier that is quoted per dialect
type Name string

// Render writes the quoted identifier
func (n Name) Render(b *Builder) error {
	b.WriteIdent(string(n))
	return nil
}

// Param is a bound value, optionally encoded by the column it is compared to
type Param struct {
	Value   interface{}
	Encoder Encoder
}

// Render writes a placeholder and records the value
func (p Param) Render(b *Builder) error {
	return b.WriteParam(p.Value, p.Encoder)
}

// Placeholder is a named hole filled when a prepared statement executes
type Placeholder struct {
	Name string
}

// Named creates a placeholder marker
func Named(name string) Placeholder {
	return Placeholder{Name: name}
}

// Render writes a placeholder slot
func (p Placeholder) Render(b *Builder) error {
	return b.WriteParam(p, nil)
}

// Bind returns v itself when it already renders, otherwise a parameter
// encoded with enc
func Bind(v interface{}, enc Encoder) Node {
	if n, ok := v.(Node); ok && n != nil {
		if _, isPlaceholder := n.(Placeholder); !isPlaceholder {
			return n
		}
	}
	return Param{Value: v, Encoder: enc}
}

// SQL is a composite fragment built from text chunks and nested nodes
type SQL struct {
	chunks  []Node
	decoder Decoder
	err     error
}

// Expr builds a fragment from a template where each ? is replaced by the
// next argument and ?? is a literal question mark. Arguments that render
// are embedded in place; any other value becomes a bound parameter.
func Expr(format string, args ...interface{}) *SQL {
	s := &SQL{}
	var text strings.Builder
	next := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '?' {
			text.WriteByte(c)
			continue
		}
		if i+1 < len(format) && format[i+1] == '?' {
			text.WriteByte('?')
			i++
			continue
		}
		if text.Len() > 0 {
			s.chunks = append(s.chunks, Raw(text.String()))
			text.Reset()
		}
		if next >= len(args) {
			s.err = fmt.Errorf("%w: %q wants more than %d", ErrTemplateArgs, format, len(args))
			return s
		}
		s.chunks = append(s.chunks, Bind(args[next], nil))
		next++
	}
	if text.Len() > 0 {
		s.chunks = append(s.chunks, Raw(text.String()))
	}
	if next != len(args) {
		s.err = fmt.Errorf("%w: %q uses %d of %d", ErrTemplateArgs, format, next, len(args))
	}
	return s
}

// Concat joins nodes with no separator
func Concat(nodes ...Node) *SQL {
	return &SQL{chunks: nonNil(nodes)}
}

// Join joins nodes with sep
func Join(nodes []Node, sep string) *SQL {
	nodes = nonNil(nodes)
	s := &SQL{}
	for i, n := range nodes {
		if i > 0 {
			s.chunks = append(s.chunks, Raw(sep))
		}
		s.chunks = append(s.chunks, n)
	}
	return s
}

func nonNil(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Render renders every chunk in order
func (s *SQL) Render(b *Builder) error {
	if s.err != nil {
		return s.err
	}
	for _, c := range s.chunks {
		if err := b.Render(c); err != nil {
			return err
		}
	}
	return nil
}

// Empty reports whether the fragment renders nothing
func (s *SQL) Empty() bool {
	return s.err == nil && len(s.chunks) == 0
}

// MapWith returns a copy of the fragment that decodes results with fn
func (s *SQL) MapWith(fn func(v interface{}) (interface{}, error)) *SQL {
	cp := *s
	cp.decoder = DecoderFunc(fn)
	return &cp
}

// Decoder returns the fragment's result decoder, if any
func (s *SQL) Decoder() Decoder {
	return s.decoder
}

// As gives the fragment an output alias for use in projections
func (s *SQL) As(alias string) *Aliased {
	return &Aliased{Expr: s, Alias: alias}
}

// Aliased is an expression with an output alias. Outside a projection list
// it renders the bare expression.
type Aliased struct {
	Expr  Node
	Alias string
}

// Alias wraps any node with an output alias
func Alias(n Node, alias string) *Aliased {
	return &Aliased{Expr: n, Alias: alias}
}

// Render renders the underlying expression
func (a *Aliased) Render(b *Builder) error {
	return b.Render(a.Expr)
}

// Decoder returns the decoder of the underlying expression
func (a *Aliased) Decoder() Decoder {
	if d, ok := a.Expr.(Decodable); ok {
		return d.Decoder()
	}
	return nil
}
