package vsgbridge

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/vsgbridge/pipeline"
	"github.com/gogpu/vsgbridge/preview"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for vsgbridge and its sub-packages.
// By default, vsgbridge produces no log output.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by vsgbridge:
//   - [slog.LevelDebug]: cache hits and misses, derived pipeline layouts
//   - [slog.LevelInfo]: session begin and end, export written
//   - [slog.LevelWarn]: structural errors in permissive mode, buffers still
//     referenced at teardown, viewer failures
//
// Example:
//
//	vsgbridge.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	pipeline.SetLogger(l)
	preview.SetLogger(l)
}

// Logger returns the current logger used by vsgbridge.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
