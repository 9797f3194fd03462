package clipper

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler discarding every record.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger used by the package. By default nothing is logged.
// Pass nil to restore the silent default. It is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current package logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// Diagnostics receives non-fatal notifications, like unknown preset lookups.
type Diagnostics interface {
	Warn(msg string)
}

// DiagnosticsFunc adapts a plain function to the Diagnostics interface.
type DiagnosticsFunc func(msg string)

// Warn calls f(msg).
func (f DiagnosticsFunc) Warn(msg string) { f(msg) }

// logDiagnostics forwards warnings to the package logger.
type logDiagnostics struct{}

func (logDiagnostics) Warn(msg string) {
	Logger().Warn(msg)
}
