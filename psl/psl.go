// Package psl loads table definitions written in the schema language:
//
//	enum mood { sad ok happy }
//
//	table users {
//	  id     serial  @pk
//	  name   text    @notnull @default("anon")
//	  cityId integer @map("city_id") @references(cities.id, onDelete: "cascade")
//	  mood   mood
//	  tags   text[]
//
//	  @@index([cityId], name: "users_city_idx")
//	  @@check("users_name_len", "length(name) > 0")
//	}
//
// Column keys become schema keys; @map overrides the SQL column name.
package psl

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// Parse parses and converts a schema from r
func Parse(filename string, r io.Reader) (*Schema, error) {
	file, err := parser.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return convert(file)
}

// ParseString parses and converts a schema held in a string
func ParseString(filename, input string) (*Schema, error) {
	return Parse(filename, strings.NewReader(input))
}

// MustParseString is like ParseString but panics on error
func MustParseString(filename, input string) *Schema {
	s, err := ParseString(filename, input)
	if err != nil {
		panic(err)
	}
	return s
}

// Load reads and parses the schema file at path
func Load(fs afero.Fs, path string) (*Schema, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(path, f)
}
