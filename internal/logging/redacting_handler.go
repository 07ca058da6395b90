package logging

import (
	"context"
	"log/slog"
	"strings"
)

const redacted = "[REDACTED]"

// Pasta bodies and key material never reach the log.
var sensitiveFields = map[string]struct{}{
	"content":       {},
	"encrypted_key": {},
	"password":      {},
	"token":         {},
	"secret":        {},
	"key":           {},
}

// RedactingHandler replaces the values of sensitive attributes before
// passing records to the wrapped handler.
type RedactingHandler struct {
	inner slog.Handler
}

// NewRedactingHandler wraps inner.
func NewRedactingHandler(inner slog.Handler) *RedactingHandler {
	return &RedactingHandler{inner: inner}
}

// Enabled defers to the wrapped handler.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle redacts the record attributes and passes the copy on. A panic while
// redacting is logged as an error record with the panic value hidden.
func (h *RedactingHandler) Handle(ctx context.Context, record slog.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fallback := slog.NewRecord(record.Time, slog.LevelError, "redaction handler panic recovered", record.PC)
			fallback.AddAttrs(slog.String("panic", redacted))
			err = h.inner.Handle(ctx, fallback)
		}
	}()

	out := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		out.AddAttrs(redactAttr(attr))
		return true
	})
	return h.inner.Handle(ctx, out)
}

// WithAttrs redacts attrs before binding them to the wrapped handler.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, redactAttr(attr))
	}
	return &RedactingHandler{inner: h.inner.WithAttrs(out)}
}

// WithGroup opens a group on the wrapped handler.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{inner: h.inner.WithGroup(name)}
}

// redactAttr masks sensitive keys, descending into groups.
func redactAttr(attr slog.Attr) slog.Attr {
	if _, ok := sensitiveFields[strings.ToLower(attr.Key)]; ok {
		return slog.String(attr.Key, redacted)
	}

	if attr.Value.Kind() == slog.KindGroup {
		group := attr.Value.Group()
		out := make([]slog.Attr, 0, len(group))
		for _, nested := range group {
			out = append(out, redactAttr(nested))
		}
		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(out...)}
	}

	return attr
}
