package event

import (
	"io"
	"log/slog"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/skyportal/skyportal/internal/handler"
)

func NewHandler(logger *slog.Logger, broker broker) Handler {
	return Handler{logger: logger, broker: broker}
}

type Handler struct {
	logger *slog.Logger
	broker broker
}

type broker interface {
	Subscribe(userID uint) (uint64, <-chan Event)
	Unsubscribe(userID uint, id uint64)
}

// Stream sends the events of the current user as server-sent events until the client disconnects.
func (h Handler) Stream(c *gin.Context) {
	// swagger:route GET /sharing_service/submission/events streamSubmissionEvents
	//
	// Stream submission events
	//
	// Stream status updates of the submissions of the current user as server-sent events.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: Stream
	//   401: Error
	//   403: Error
	ctx := c.Request.Context()
	user, err := handler.GetUserFromContext(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	id, events := h.broker.Subscribe(user.ID)
	defer h.broker.Unsubscribe(user.ID, id)
	h.logger.InfoContext(ctx, "Subscribed to events", "subscription", id)

	c.Header("Content-Type", sse.ContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			h.logger.InfoContext(ctx, "Unsubscribed from events", "subscription", id)
			return false
		case event, ok := <-events:
			if !ok {
				return false
			}
			err := sse.Encode(w, sse.Event{Event: event.Type, Data: event.Data})
			if err != nil {
				h.logger.ErrorContext(ctx, "Failed to write event", "error", err)
				return false
			}
			return true
		}
	})
}
