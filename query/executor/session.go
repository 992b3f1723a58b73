package executor

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/katungi/drizzle-orm/query/ast"
	"github.com/katungi/drizzle-orm/query/compiler"
	"github.com/katungi/drizzle-orm/query/sqlgen"
)

// Session compiles statements for one dialect and runs them on an executor.
// It owns the named prepared statements created through it.
type Session struct {
	compiler   *compiler.Compiler
	exec       Executor
	logger     *slog.Logger
	middleware []Middleware

	mu       sync.Mutex
	prepared map[string]*Prepared
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the session logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMiddleware appends query middleware, run in the given order
func WithMiddleware(middleware ...Middleware) Option {
	return func(s *Session) {
		s.middleware = append(s.middleware, middleware...)
	}
}

// NewSession creates a session
func NewSession(dialect sqlgen.Dialect, exec Executor, opts ...Option) *Session {
	s := &Session{
		compiler: compiler.NewCompiler(dialect),
		exec:     exec,
		logger:   slog.New(slog.DiscardHandler),
		prepared: make(map[string]*Prepared),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Compiler() *compiler.Compiler { return s.compiler }

func (s *Session) Dialect() sqlgen.Dialect { return s.compiler.Dialect() }

// All compiles and runs stmt, returning rows shaped by its projection.
// Statements holding placeholders must go through Prepare.
func (s *Session) All(ctx context.Context, stmt ast.Statement) ([]map[string]interface{}, error) {
	compiled, err := s.compiler.Compile(stmt)
	if err != nil {
		return nil, err
	}
	args, err := compiled.Query.Bind(nil)
	if err != nil {
		return nil, err
	}
	rows, err := s.run(ctx, "", compiled.Query.SQL, args)
	if err != nil {
		return nil, err
	}
	return Shape(compiled.Selection, rows)
}

// Execute renders a raw fragment and runs it, returning unshaped rows
func (s *Session) Execute(ctx context.Context, n sqlgen.Node) (*Rows, error) {
	q, err := s.compiler.CompileNode(n)
	if err != nil {
		return nil, err
	}
	args, err := q.Bind(nil)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, "", q.SQL, args)
}

// Prepare compiles stmt once under name. Preparing a statement with the same
// SQL and output shape under the same name returns the existing handle.
func (s *Session) Prepare(name string, stmt ast.Statement) (*Prepared, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrDuplicatePrepared)
	}
	compiled, err := s.compiler.Compile(stmt)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.prepared[name]; ok {
		if !sameStatement(existing.compiled, compiled) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePrepared, name)
		}
		return existing, nil
	}
	p := &Prepared{name: name, session: s, compiled: compiled}
	s.prepared[name] = p
	s.logger.Debug("prepared statement registered", "name", name, "placeholders", compiled.Query.Placeholders())
	return p, nil
}

func sameStatement(a, b *compiler.Compiled) bool {
	if a.Query.SQL != b.Query.SQL || len(a.Selection) != len(b.Selection) {
		return false
	}
	for i := range a.Selection {
		fa, fb := a.Selection[i], b.Selection[i]
		if fa.Nullable != fb.Nullable || fa.NotNull != fb.NotNull || !slices.Equal(fa.Path, fb.Path) {
			return false
		}
	}
	return true
}

// Prepared returns the prepared statement registered under name
func (s *Session) Prepared(name string) (*Prepared, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prepared[name]
	return p, ok
}

func (s *Session) run(ctx context.Context, name, query string, args []interface{}) (*Rows, error) {
	if s.exec == nil {
		return nil, ErrNoExecutor
	}
	var rows *Rows
	event := &QueryEvent{Name: name, Query: query, Args: args}
	err := runWithMiddleware(ctx, s.middleware, event, func() error {
		var err error
		if pe, ok := s.exec.(PreparingExecutor); ok && name != "" {
			rows, err = pe.QueryPrepared(ctx, name, query, args)
		} else {
			rows, err = s.exec.Query(ctx, query, args)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
