package logging

import (
	"context"
	"log/slog"
)

// NewNopLogger creates a logger that discards all output.
// Useful for testing or when logging needs to be disabled.
func NewNopLogger() Logger {
	return slog.New(nopHandler{})
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }
