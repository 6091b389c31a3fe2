package scenic

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that discards all records. Enabled
// returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr holds the active logger. Stored atomically so SetLogger
// may race with logging from renderer goroutines.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures logging for scenic and its sub-packages. By
// default scenic produces no output; pass nil to restore that.
//
// Levels in use:
//   - [slog.LevelDebug]: per-frame diagnostics (pass counts, buffer sizes)
//   - [slog.LevelInfo]: lifecycle events (adapter selected, device created)
//   - [slog.LevelWarn]: recoverable problems (malformed geometry, texture
//     decode failures, resource release errors)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Sub-packages call this to share
// one configuration without import cycles.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
