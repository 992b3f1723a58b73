// Package debug builds the structured loggers used by the CLI and client
package debug

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Format selects the log handler
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat maps a configured format name to a Format, defaulting to text
func ParseFormat(name string) Format {
	if strings.EqualFold(name, string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}

// New returns a logger writing to w. When enabled is false every record is
// discarded, so callers can pass the result around unconditionally.
func New(enabled bool, w io.Writer, format Format) *slog.Logger {
	if !enabled || w == nil {
		return slog.New(slog.DiscardHandler)
	}
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	if format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Enabled reports whether logger emits debug records
func Enabled(logger *slog.Logger) bool {
	if logger == nil {
		return false
	}
	return logger.Handler().Enabled(context.Background(), slog.LevelDebug)
}
