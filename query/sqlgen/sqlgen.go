// Package sqlgen renders SQL fragments for different database providers.
package sqlgen

import (
	"fmt"
	"sort"
	"strings"
)

// Query represents a SQL query with arguments
type Query struct {
	SQL  string
	Args []interface{}
}

// BoundPlaceholder is the argument slot left behind by a named placeholder.
// It is replaced by a caller supplied value when the query is bound.
type BoundPlaceholder struct {
	Name    string
	Encoder Encoder
}

// Placeholders returns the distinct placeholder names in argument order
func (q Query) Placeholders() []string {
	var names []string
	seen := make(map[string]bool)
	for _, arg := range q.Args {
		if p, ok := arg.(BoundPlaceholder); ok && !seen[p.Name] {
			seen[p.Name] = true
			names = append(names, p.Name)
		}
	}
	return names
}

// Bind substitutes placeholder slots with values, leaving every other
// argument untouched. The receiver is not modified.
func (q Query) Bind(values map[string]interface{}) ([]interface{}, error) {
	args := make([]interface{}, len(q.Args))
	var missing []string
	for i, arg := range q.Args {
		p, ok := arg.(BoundPlaceholder)
		if !ok {
			args[i] = arg
			continue
		}
		value, ok := values[p.Name]
		if !ok {
			missing = append(missing, p.Name)
			continue
		}
		if p.Encoder != nil && value != nil {
			encoded, err := p.Encoder.EncodeValue(value)
			if err != nil {
				return nil, fmt.Errorf("placeholder %q: %w", p.Name, err)
			}
			value = encoded
		}
		args[i] = value
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s", ErrMissingPlaceholder, strings.Join(dedupe(missing), ", "))
	}
	return args, nil
}

func dedupe(names []string) []string {
	out := names[:0]
	for i, name := range names {
		if i == 0 || names[i-1] != name {
			out = append(out, name)
		}
	}
	return out
}

// Provider identifies a SQL dialect family
type Provider string

const (
	PostgreSQL Provider = "postgresql"
	MySQL      Provider = "mysql"
	SQLite     Provider = "sqlite"
)

// Dialect describes the lexical conventions of one SQL dialect
type Dialect interface {
	Provider() Provider
	QuoteIdentifier(name string) string
	Placeholder(index int) string
}

var (
	// Postgres renders "quoted" identifiers and $n placeholders
	Postgres Dialect = PostgresDialect{}
	// MySQLDialect renders `quoted` identifiers and ? placeholders
	MySQLDialect Dialect = mysqlDialect{}
	// SQLiteDialect renders "quoted" identifiers and ? placeholders
	SQLiteDialect Dialect = sqliteDialect{}
)

// NewDialect returns the dialect for the given provider name
func NewDialect(provider string) (Dialect, error) {
	switch strings.ToLower(provider) {
	case "postgresql", "postgres", "pg":
		return Postgres, nil
	case "mysql":
		return MySQLDialect, nil
	case "sqlite", "sqlite3":
		return SQLiteDialect, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
}

// PostgresDialect generates PostgreSQL SQL
type PostgresDialect struct{}

func (PostgresDialect) Provider() Provider { return PostgreSQL }

func (PostgresDialect) QuoteIdentifier(name string) string { return quoteIdentifier(name) }

func (PostgresDialect) Placeholder(index int) string { return fmt.Sprintf("$%d", index) }

type mysqlDialect struct{}

func (mysqlDialect) Provider() Provider { return MySQL }

func (mysqlDialect) QuoteIdentifier(name string) string { return quoteIdentifierMySQL(name) }

func (mysqlDialect) Placeholder(int) string { return "?" }

type sqliteDialect struct{}

func (sqliteDialect) Provider() Provider { return SQLite }

func (sqliteDialect) QuoteIdentifier(name string) string { return quoteIdentifier(name) }

func (sqliteDialect) Placeholder(int) string { return "?" }

// quoteIdentifier quotes an identifier for PostgreSQL and SQLite
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteIdentifierMySQL(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
