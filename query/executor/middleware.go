package executor

import (
	"context"
	"log/slog"
	"time"
)

// QueryEvent represents a query execution event
type QueryEvent struct {
	Name     string
	Query    string
	Args     []interface{}
	Duration time.Duration
	Error    error
	Start    time.Time
	End      time.Time
}

// Middleware is a function that intercepts queries
type Middleware func(ctx context.Context, event *QueryEvent, next func() error) error

// runWithMiddleware executes a query with middleware chain
func runWithMiddleware(ctx context.Context, middlewares []Middleware, event *QueryEvent, exec func() error) error {
	event.Start = time.Now()
	finish := func() error {
		err := exec()
		event.End = time.Now()
		event.Duration = event.End.Sub(event.Start)
		event.Error = err
		return err
	}
	if len(middlewares) == 0 {
		return finish()
	}

	var next func() error
	index := 0

	next = func() error {
		if index >= len(middlewares) {
			return finish()
		}

		middleware := middlewares[index]
		index++
		return middleware(ctx, event, next)
	}

	return next()
}

// LoggingMiddleware logs every query at debug level and failures at error
// level
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		logger.DebugContext(ctx, "executing query", "sql", event.Query, "args", event.Args, "prepared", event.Name)
		err := next()
		if err != nil {
			logger.ErrorContext(ctx, "query failed", "sql", event.Query, "error", err)
		} else {
			logger.DebugContext(ctx, "query completed", "duration", event.Duration)
		}
		return err
	}
}

// TimingMiddleware creates a middleware that measures query execution time
func TimingMiddleware(onTiming func(query string, duration time.Duration)) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if onTiming != nil {
			onTiming(event.Query, event.Duration)
		}
		return err
	}
}

// ErrorMiddleware creates a middleware that handles errors
func ErrorMiddleware(onError func(query string, err error)) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if err != nil && onError != nil {
			onError(event.Query, err)
		}
		return err
	}
}
