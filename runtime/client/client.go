// Package client opens a database and binds query builders to it.
package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/lib/pq"              // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"  // SQLite driver

	"github.com/katungi/drizzle-orm/query/builder"
	"github.com/katungi/drizzle-orm/query/executor"
	"github.com/katungi/drizzle-orm/query/sqlgen"
)

var (
	ErrMissingDSN = errors.New("missing database connection string")
	ErrInvalidDSN = errors.New("invalid database connection string")
)

// Options configures a Client
type Options struct {
	// Provider is postgresql, mysql or sqlite
	Provider string
	DSN      string
	// Logger receives debug logs of every query; nil disables query logging
	Logger     *slog.Logger
	Middleware []executor.Middleware
}

// Client is a query builder bound to a database
type Client struct {
	*builder.QueryBuilder
	db      *sql.DB
	exec    *executor.DBExecutor
	session *executor.Session
	opts    Options
}

// Open opens the database described by opts. The connection is verified
// lazily; call Ping to check it.
func Open(opts Options) (*Client, error) {
	dialect, err := sqlgen.NewDialect(opts.Provider)
	if err != nil {
		return nil, err
	}
	dsn, err := NormalizeDSN(dialect.Provider(), opts.DSN)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(DriverName(dialect.Provider()), dsn)
	if err != nil {
		return nil, err
	}
	return newClient(dialect, db, opts), nil
}

// NewFromDB creates a client over an already opened database
func NewFromDB(provider string, db *sql.DB, opts Options) (*Client, error) {
	dialect, err := sqlgen.NewDialect(provider)
	if err != nil {
		return nil, err
	}
	opts.Provider = provider
	return newClient(dialect, db, opts), nil
}

func newClient(dialect sqlgen.Dialect, db *sql.DB, opts Options) *Client {
	exec := executor.NewDBExecutor(db)
	session := executor.NewSession(dialect, exec, sessionOptions(opts)...)
	return &Client{
		QueryBuilder: builder.NewWithSession(session),
		db:           db,
		exec:         exec,
		session:      session,
		opts:         opts,
	}
}

func sessionOptions(opts Options) []executor.Option {
	var out []executor.Option
	if opts.Logger != nil {
		out = append(out, executor.WithLogger(opts.Logger), executor.WithMiddleware(executor.LoggingMiddleware(opts.Logger)))
	}
	return append(out, executor.WithMiddleware(opts.Middleware...))
}

// DriverName maps a provider to its database/sql driver name
func DriverName(p sqlgen.Provider) string {
	switch p {
	case sqlgen.PostgreSQL:
		return "postgres"
	case sqlgen.MySQL:
		return "mysql"
	case sqlgen.SQLite:
		return "sqlite3"
	default:
		return ""
	}
}

// NormalizeDSN validates dsn for provider. MySQL connections always parse
// time columns; postgres URLs are converted to key=value form.
func NormalizeDSN(p sqlgen.Provider, dsn string) (string, error) {
	if dsn == "" {
		return "", ErrMissingDSN
	}
	switch p {
	case sqlgen.MySQL:
		cfg, err := mysql.ParseDSN(strings.TrimPrefix(dsn, "mysql://"))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidDSN, err)
		}
		cfg.ParseTime = true
		return cfg.FormatDSN(), nil
	case sqlgen.PostgreSQL:
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			converted, err := pq.ParseURL(dsn)
			if err != nil {
				return "", fmt.Errorf("%w: %v", ErrInvalidDSN, err)
			}
			return converted, nil
		}
		return dsn, nil
	case sqlgen.SQLite:
		return strings.TrimPrefix(dsn, "sqlite://"), nil
	}
	return dsn, nil
}

// Ping verifies the connection
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes cached prepared statements and the database
func (c *Client) Close() error {
	c.exec.ClearStmtCache()
	return c.db.Close()
}

// DB returns the underlying database connection
func (c *Client) DB() *sql.DB {
	return c.db
}

// Session returns the session queries run through
func (c *Client) Session() *executor.Session {
	return c.session
}

// Execute runs a raw fragment, such as sqlgen.Expr or a builder
func (c *Client) Execute(ctx context.Context, n sqlgen.Node) (*executor.Rows, error) {
	return c.session.Execute(ctx, n)
}

// WithTx returns a query builder whose statements run inside tx. Committing
// and rolling back stay with the caller.
func (c *Client) WithTx(tx *sql.Tx) *builder.QueryBuilder {
	session := executor.NewSession(c.session.Dialect(), executor.NewTxExecutor(tx), sessionOptions(c.opts)...)
	return builder.NewWithSession(session)
}
