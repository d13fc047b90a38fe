// Package logging configures log/slog for the compiler and carries
// per-request fields through context.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/chazu/partforge/pkg/config"
)

// Setup installs the default logger: text in development, JSON in
// production, both enriched with context fields.
func Setup(cfg config.Config) *slog.Logger {
	l := New(os.Stdout, cfg)
	slog.SetDefault(l)
	return l
}

// New builds a logger writing to w.
func New(w io.Writer, cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var h slog.Handler
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(NewContextHandler(h))
}

// ContextHandler appends the Fields stored in a record's context.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	f := FieldsFrom(ctx)
	if f.DesignID != "" {
		r.AddAttrs(slog.String("design_id", f.DesignID))
	}
	if f.Revision != 0 {
		r.AddAttrs(slog.Int("revision", f.Revision))
	}
	if f.Stage != "" {
		r.AddAttrs(slog.String("stage", f.Stage))
	}
	if f.Component != "" {
		r.AddAttrs(slog.String("component", f.Component))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}

type contextKey string

const fieldsKey contextKey = "log_fields"

// Fields are added to every record logged with a context that carries them.
type Fields struct {
	DesignID  string
	Revision  int
	Stage     string // pipeline stage, e.g. "synthesize"
	Component string // e.g. "partforge.compiler"
}

// WithFields merges f into the context's fields; non-empty values in f win.
func WithFields(ctx context.Context, f Fields) context.Context {
	cur := FieldsFrom(ctx)
	if f.DesignID != "" {
		cur.DesignID = f.DesignID
	}
	if f.Revision != 0 {
		cur.Revision = f.Revision
	}
	if f.Stage != "" {
		cur.Stage = f.Stage
	}
	if f.Component != "" {
		cur.Component = f.Component
	}
	return context.WithValue(ctx, fieldsKey, cur)
}

// FieldsFrom returns the fields carried by ctx, or the zero value.
func FieldsFrom(ctx context.Context) Fields {
	if f, ok := ctx.Value(fieldsKey).(Fields); ok {
		return f
	}
	return Fields{}
}

// Discard is a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
