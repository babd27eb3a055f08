package logging

import (
	"context"
	"errors"
	"log/slog"
)

// Session describes the layout being edited. It is sampled for every log
// record, so records always carry the current preset and sensor count.
type Session struct {
	PresetID string
	Layout   string
	Sensors  int
}

// SessionFunc reports the current session.
type SessionFunc func() Session

func (s Session) attr() slog.Attr {
	attrs := make([]any, 0, 3)
	if s.PresetID != "" {
		attrs = append(attrs, slog.String("preset", s.PresetID))
	}
	if s.Layout != "" {
		attrs = append(attrs, slog.String("layout", s.Layout))
	}
	attrs = append(attrs, slog.Int("sensors", s.Sensors))
	return slog.Group("session", attrs...)
}

// sessionHandler adds the session group to each record before passing it on.
type sessionHandler struct {
	next    slog.Handler
	session SessionFunc
}

func (h *sessionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *sessionHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.session != nil {
		r.AddAttrs(h.session().attr())
	}
	return h.next.Handle(ctx, r)
}

func (h *sessionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sessionHandler{next: h.next.WithAttrs(attrs), session: h.session}
}

func (h *sessionHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &sessionHandler{next: h.next.WithGroup(name), session: h.session}
}

// fanout sends every record to all of its handlers.
type fanout []slog.Handler

// newFanout drops nil handlers.
func newFanout(handlers ...slog.Handler) fanout {
	out := make(fanout, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle delivers to every enabled handler even when some fail, and
// reports the failures together.
func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	if name == "" {
		return f
	}
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
