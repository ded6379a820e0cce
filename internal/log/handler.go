// Package log provides slog handlers.
package log

import (
	"context"
	"log/slog"

	"github.com/skyportal/skyportal/internal/middleware"
	"github.com/skyportal/skyportal/pkg/model"
)

// KeySubmission is the attribute key of the submission being processed.
const KeySubmission = "submission"

type submissionKey struct{}

// NewContextWithSubmission returns a [context.Context] whose log records carry the submission id.
func NewContextWithSubmission(ctx context.Context, id uint) context.Context {
	return context.WithValue(ctx, submissionKey{}, id)
}

// ContextHandler adds the correlation id, the authenticated user and the submission found in the
// [context.Context] to every [slog.Record]. The keys match the ones of [middleware.RequestLogger] so
// request logs and logs written while handling the request can be joined. Any of the values may be
// missing, e.g. on public routes or at startup.
type ContextHandler struct {
	slog.Handler
}

func New(handler slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: handler}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(contextAttrs(ctx)...)
	return h.Handler.Handle(ctx, r)
}

func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if id, ok := middleware.GetCorrelationID(ctx); ok {
		attrs = append(attrs, slog.String(middleware.RequestLoggerKeyCorrelationID, id))
	}
	if user, ok := model.GetUserFromContext(ctx); ok {
		attrs = append(attrs, slog.Uint64(middleware.RequestLoggerKeyUser, uint64(user.ID)))
	}
	if id, ok := ctx.Value(submissionKey{}).(uint); ok {
		attrs = append(attrs, slog.Uint64(KeySubmission, uint64(id)))
	}
	return attrs
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return New(h.Handler.WithAttrs(attrs))
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return New(h.Handler.WithGroup(name))
}
