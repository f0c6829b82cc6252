package logger

import (
	"io"
	"log/slog"
	"os"
)

// Interface is the structured logger handed to every component. Arguments
// after msg are alternating keys and values.
type Interface interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	// Fatalw logs at error level and exits the process.
	Fatalw(msg string, keysAndValues ...interface{})

	With(keysAndValues ...interface{}) Interface
	Named(name string) Interface
}

type slogAdapter struct {
	s *slog.Logger
}

// NewLogger wraps the process-wide logger configured by Init.
func NewLogger() Interface {
	return &slogAdapter{s: Get()}
}

// FromSlog wraps an arbitrary slog.Logger.
func FromSlog(s *slog.Logger) Interface {
	return &slogAdapter{s: s}
}

// Nop returns a logger that discards everything.
func Nop() Interface {
	return &slogAdapter{s: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (a *slogAdapter) Debugw(msg string, kv ...interface{}) { a.s.Debug(msg, kv...) }
func (a *slogAdapter) Infow(msg string, kv ...interface{})  { a.s.Info(msg, kv...) }
func (a *slogAdapter) Warnw(msg string, kv ...interface{})  { a.s.Warn(msg, kv...) }
func (a *slogAdapter) Errorw(msg string, kv ...interface{}) { a.s.Error(msg, kv...) }

func (a *slogAdapter) Fatalw(msg string, kv ...interface{}) {
	a.s.Error(msg, kv...)
	os.Exit(1)
}

func (a *slogAdapter) With(kv ...interface{}) Interface {
	return &slogAdapter{s: a.s.With(kv...)}
}

// Named tags every record with logger=name.
func (a *slogAdapter) Named(name string) Interface {
	return &slogAdapter{s: a.s.With("logger", name)}
}
