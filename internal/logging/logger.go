// Package logging defines the structured-logging interface used across the
// service, with slog and zap backends.
package logging

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key-value pairs, e.g.:
//
//	log.Info(ctx, "vault item added", "vault_id", id, "category", cat)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value pairs.
	With(args ...any) Logger
}

// Backend names accepted by New.
const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

// New builds a JSON logger for the named backend writing to stdout.
func New(backend string, debug bool) (Logger, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendSlog:
		return NewSlog(os.Stdout, true, debug), nil
	case BackendZap:
		return NewZap(true, debug)
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}

// Truncate shortens s to limit runes for log previews, appending "..." when cut.
func Truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

type nop struct{}

func (nop) Debug(context.Context, string, ...any) {}
func (nop) Info(context.Context, string, ...any)  {}
func (nop) Warn(context.Context, string, ...any)  {}
func (nop) Error(context.Context, string, ...any) {}
func (n nop) With(...any) Logger                  { return n }

// Nop returns a logger that discards everything.
func Nop() Logger { return nop{} }
