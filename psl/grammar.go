package psl

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// File is the parse tree of one schema file
type File struct {
	Pos   lexer.Position
	Items []*Item `@@*`
}

// Item is a top-level declaration
type Item struct {
	Pos   lexer.Position
	Enum  *EnumDecl  `  @@`
	Table *TableDecl `| @@`
}

// EnumDecl declares a named set of string values
type EnumDecl struct {
	Pos    lexer.Position
	Name   string   `"enum" @Ident "{"`
	Values []string `( (@Ident | @String) ","? )* "}"`
}

// TableDecl declares a table with its columns and block attributes
type TableDecl struct {
	Pos     lexer.Position
	Name    string   `"table" @(Ident | String) "{"`
	Entries []*Entry `( @@ ";"? )* "}"`
}

// Entry is one line of a table body
type Entry struct {
	Pos       lexer.Position
	Attribute *BlockAttribute `  @@`
	Column    *ColumnDecl     `| @@`
}

// ColumnDecl declares a column: key, type and field attributes
type ColumnDecl struct {
	Pos        lexer.Position
	Key        string       `@Ident`
	Type       *TypeRef     `@@`
	Attributes []*Attribute `@@*`
}

// TypeRef is a SQL type name with optional parameters and array dimensions
type TypeRef struct {
	Pos    lexer.Position
	Name   string   `@Ident`
	Params []string `( "(" @Number ( "," @Number )* ")" )?`
	Dims   []*Dim   `@@*`
}

// Dim is one array dimension, optionally sized
type Dim struct {
	Open bool    `@"["`
	Size *string `@Number? "]"`
}

// Attribute is a field attribute (@name(args))
type Attribute struct {
	Pos  lexer.Position
	Name string      `"@" @Ident`
	Args []*Argument `( "(" ( @@ ( "," @@ )* )? ")" )?`
}

// BlockAttribute is a table attribute (@@name(args))
type BlockAttribute struct {
	Pos  lexer.Position
	Name string      `"@@" @Ident`
	Args []*Argument `( "(" ( @@ ( "," @@ )* )? ")" )?`
}

// Argument is a positional or named attribute argument
type Argument struct {
	Pos   lexer.Position
	Name  string `( @Ident ":" )?`
	Value *Value `@@`
}

// Value is an attribute argument value
type Value struct {
	Pos    lexer.Position
	String *string `  @String`
	Number *string `| @Number`
	Call   *Call   `| @@`
	List   *List   `| @@`
	Ref    *Ref    `| @@`
}

// Call is a function value such as now() or sql("...")
type Call struct {
	Name string   `@Ident "("`
	Args []*Value `( @@ ( "," @@ )* )? ")"`
}

// List is a bracketed value list
type List struct {
	Open  bool     `@"["`
	Items []*Value `( @@ ( "," @@ )* )? "]"`
}

// Ref is a bare or dotted identifier
type Ref struct {
	Parts []string `@Ident ( "." @Ident )*`
}

func (r *Ref) String() string { return strings.Join(r.Parts, ".") }

// Literal returns the Go value of a string, number or boolean/null value
func (v *Value) Literal() (interface{}, bool) {
	switch {
	case v.String != nil:
		return *v.String, true
	case v.Number != nil:
		if n, err := strconv.ParseInt(*v.Number, 10, 64); err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(*v.Number, 64)
		return f, err == nil
	case v.Ref != nil && len(v.Ref.Parts) == 1:
		switch v.Ref.Parts[0] {
		case "true":
			return true, true
		case "false":
			return false, true
		case "null":
			return nil, true
		}
	}
	return nil, false
}

var parser = participle.MustBuild[File](
	participle.Lexer(SchemaLexer),
	participle.Elide("Whitespace", "Newline", "Comment", "MultiLineComment"),
	participle.Unquote("String"),
	participle.UseLookahead(10),
)
