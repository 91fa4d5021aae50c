package logging

import (
	"context"
	"io"
	"log/slog"

	"github.com/dmitrijs2005/careervault/internal/common"
)

// SlogLogger adapts a slog.Logger to Logger. Records logged with a context
// that carries an authenticated principal get a user_id attribute.
type SlogLogger struct {
	l *slog.Logger
}

func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: slog.New(principalHandler{l.Handler()})}
}

// NewSlog writes JSON or text records to w.
func NewSlog(w io.Writer, json bool, debug bool) *SlogLogger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
	}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if json {
		h = slog.NewJSONHandler(w, opts)
	}
	return NewSlogLogger(slog.New(h))
}

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.l.DebugContext(ctx, msg, args...)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, args...)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, args...)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, args...)
}

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}

// principalHandler stamps the request principal onto every record.
type principalHandler struct {
	slog.Handler
}

func (h principalHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := common.UserIDFromContext(ctx); id != "" {
		r.AddAttrs(slog.String(common.UserIDMetadataKey, id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h principalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return principalHandler{h.Handler.WithAttrs(attrs)}
}

func (h principalHandler) WithGroup(name string) slog.Handler {
	return principalHandler{h.Handler.WithGroup(name)}
}
