package logger

import (
	"context"
	"log/slog"
)

// discardHandler is a slog.Handler that drops every record.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }

// Discard returns a logger that writes nothing. Packages use it when the
// caller supplies no logger.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}
