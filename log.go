package eventloop

import (
	slog "github.com/vearne/simplelog"
)

// Logger is the narrow logging seam the core depends on, so tests and
// embedders can swap in a recording logger without dragging in
// simplelog's global state.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// simpleLogger adapts github.com/vearne/simplelog to the Logger
// interface.
type simpleLogger struct{}

func (simpleLogger) Debugf(format string, args ...any) { slog.Debug(format, args...) }
func (simpleLogger) Warnf(format string, args ...any)  { slog.Warn(format, args...) }
func (simpleLogger) Errorf(format string, args ...any) { slog.Error(format, args...) }

// defaultLogger is used by NewExecutor when no WithLogger option is given.
var defaultLogger Logger = simpleLogger{}

// noopLogger discards everything; handy for tests that don't want
// simplelog's global writer touched.
type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Warnf(string, ...any)  {}
func (noopLogger) Errorf(string, ...any) {}
