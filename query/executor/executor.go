// Package executor runs compiled statements and shapes their results.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// Rows is a result set: column names and positional values. Values are
// kept positionally so duplicate column names never collide.
type Rows struct {
	Columns []string
	Values  [][]interface{}
}

// Executor runs SQL against a database
type Executor interface {
	Query(ctx context.Context, query string, args []interface{}) (*Rows, error)
}

// PreparingExecutor can keep named server-side prepared statements
type PreparingExecutor interface {
	Executor
	QueryPrepared(ctx context.Context, name, query string, args []interface{}) (*Rows, error)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// DBExecutor executes queries on a *sql.DB and caches prepared statements
// by name
type DBExecutor struct {
	db        queryer
	stmtCache map[string]cachedStmt

	// statements replaced under their name, closed by ClearStmtCache
	retired []*sql.Stmt
	cacheMu sync.RWMutex
}

type cachedStmt struct {
	query string
	stmt  *sql.Stmt
}

// NewDBExecutor creates an executor over db
func NewDBExecutor(db *sql.DB) *DBExecutor {
	return newExecutor(db)
}

func newExecutor(db queryer) *DBExecutor {
	return &DBExecutor{
		db:        db,
		stmtCache: make(map[string]cachedStmt),
	}
}

// Query runs query with args and reads every row
func (e *DBExecutor) Query(ctx context.Context, query string, args []interface{}) (*Rows, error) {
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	return collect(rows)
}

// QueryPrepared runs query through the statement cached under name,
// preparing it on first use
func (e *DBExecutor) QueryPrepared(ctx context.Context, name, query string, args []interface{}) (*Rows, error) {
	stmt, err := e.getCachedStmt(ctx, name, query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("prepared statement %s failed: %w", name, err)
	}
	return collect(rows)
}

// getCachedStmt gets a cached prepared statement or creates a new one
func (e *DBExecutor) getCachedStmt(ctx context.Context, name, query string) (*sql.Stmt, error) {
	e.cacheMu.RLock()
	cached, ok := e.stmtCache[name]
	e.cacheMu.RUnlock()

	if ok && cached.query == query {
		return cached.stmt, nil
	}

	stmt, err := e.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	if current, exists := e.stmtCache[name]; exists {
		if current.query == query {
			stmt.Close()
			return current.stmt, nil
		}
		// a replaced statement may still be in use
		e.retired = append(e.retired, current.stmt)
	}
	e.stmtCache[name] = cachedStmt{query: query, stmt: stmt}
	return stmt, nil
}

// ClearStmtCache closes and forgets every prepared statement
func (e *DBExecutor) ClearStmtCache() {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	for _, cached := range e.stmtCache {
		cached.stmt.Close()
	}
	for _, stmt := range e.retired {
		stmt.Close()
	}
	e.stmtCache = make(map[string]cachedStmt)
	e.retired = nil
}

func collect(rows *sql.Rows) (*Rows, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	out := &Rows{Columns: columns}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out.Values = append(out.Values, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return out, nil
}
