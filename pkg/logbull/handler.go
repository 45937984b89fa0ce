package logbull

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"runtime"
	"strings"

	"logbull/internal/formatting"
	"logbull/internal/models"
)

// Handler is a log/slog handler that ships records through a Logger's
// delivery engine. Attributes become fields; group names are joined to keys
// with ".".
type Handler struct {
	core   *core
	fields map[string]any
	groups []string
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler starts a delivery engine for cfg and returns a handler over it.
func NewHandler(cfg Config, opts ...Option) (*Handler, error) {
	l, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return l.Handler(), nil
}

// Handler returns a slog handler sharing this logger's engine and context.
func (l *Logger) Handler() *Handler {
	return &Handler{
		core:   l.core,
		fields: maps.Clone(l.context),
	}
}

// LevelFromSlog maps slog levels onto LogBull levels.
func LevelFromSlog(level slog.Level) Level {
	switch {
	case level < slog.LevelInfo:
		return models.LevelDebug
	case level < slog.LevelWarn:
		return models.LevelInfo
	case level < slog.LevelError:
		return models.LevelWarning
	case level < slog.LevelError+4:
		return models.LevelError
	default:
		return models.LevelCritical
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return LevelFromSlog(level) >= h.core.cfg.EffectiveMinLevel()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	level := LevelFromSlog(r.Level)
	if level < h.core.cfg.EffectiveMinLevel() {
		return nil
	}

	fields := make(map[string]any, len(h.fields)+r.NumAttrs()+1)
	maps.Copy(fields, h.fields)

	prefix := groupPrefix(h.groups)
	r.Attrs(func(a slog.Attr) bool {
		addAttr(fields, prefix, a)
		return true
	})

	if h.core.addSource && r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := frames.Next()
		fields["source"] = fmt.Sprintf("%s:%d", f.File, f.Line)
	}

	h.core.sink.AddLog(models.NewLogEntry(
		level,
		formatting.FormatMessage(r.Message),
		h.core.ts.Next(),
		formatting.EnsureFields(fields),
	))
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	h2.fields = maps.Clone(h.fields)
	if h2.fields == nil {
		h2.fields = map[string]any{}
	}
	prefix := groupPrefix(h.groups)
	for _, a := range attrs {
		addAttr(h2.fields, prefix, a)
	}
	return &h2
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(append([]string(nil), h.groups...), name)
	return &h2
}

// Flush cuts a batch now.
func (h *Handler) Flush() {
	h.core.sink.Flush()
}

// Shutdown drains and stops the engine shared with the originating Logger.
func (h *Handler) Shutdown() {
	h.core.shutdown()
}

func groupPrefix(groups []string) string {
	if len(groups) == 0 {
		return ""
	}
	return strings.Join(groups, ".") + "."
}

func addAttr(fields map[string]any, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		nested := prefix
		if a.Key != "" {
			nested = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			addAttr(fields, nested, ga)
		}
		return
	}

	fields[prefix+a.Key] = a.Value.Any()
}
