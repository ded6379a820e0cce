package stream

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skyportal/skyportal/internal/handler"
	"github.com/skyportal/skyportal/pkg/model"
)

func NewHandler(streamService streamService) Handler {
	return Handler{streamService: streamService}
}

type Handler struct {
	streamService streamService
}

type streamService interface {
	Create(ctx context.Context, name string) (*model.Stream, error)
	FindAll(ctx context.Context, user *model.User) ([]model.Stream, error)
	AddUser(ctx context.Context, streamID, userID uint) error
	RemoveUser(ctx context.Context, streamID, userID uint) error
}

type CreateStreamRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create stream
func (h Handler) Create(c *gin.Context) {
	// swagger:route POST /streams createStream
	//
	// Create stream
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   201: Stream
	//   400: Error
	//   401: Error
	//   403: Error
	//   409: Error
	//   415: Error
	var request CreateStreamRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	stream, err := h.streamService.Create(c.Request.Context(), request.Name)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, stream)
}

// FindAll streams
func (h Handler) FindAll(c *gin.Context) {
	// swagger:route GET /streams findAllStreams
	//
	// Find all streams
	//
	// Find all streams the user has access to
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: []Stream
	//   401: Error
	ctx := c.Request.Context()
	user, err := handler.GetUserFromContext(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	streams, err := h.streamService.FindAll(ctx, user)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, streams)
}

// AddUser grants a user access to a stream
func (h Handler) AddUser(c *gin.Context) {
	// swagger:route POST /streams/{id}/users/{userId} addUserToStream
	//
	// Grant stream access
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   201:
	//   400: Error
	//   401: Error
	//   403: Error
	//   404: Error
	streamID, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	userID, ok := handler.GetPathParameter(c, "userId")
	if !ok {
		return
	}

	if err := h.streamService.AddUser(c.Request.Context(), streamID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusCreated)
}

// RemoveUser revokes stream access of a user
func (h Handler) RemoveUser(c *gin.Context) {
	// swagger:route DELETE /streams/{id}/users/{userId} removeUserFromStream
	//
	// Revoke stream access
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   204:
	//   400: Error
	//   401: Error
	//   403: Error
	//   404: Error
	streamID, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	userID, ok := handler.GetPathParameter(c, "userId")
	if !ok {
		return
	}

	if err := h.streamService.RemoveUser(c.Request.Context(), streamID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
