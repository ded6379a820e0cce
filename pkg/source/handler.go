package source

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skyportal/skyportal/internal/handler"
	"github.com/skyportal/skyportal/pkg/model"
)

func NewHandler(logger *slog.Logger, sourceService sourceService, autoSubmitter autoSubmitter) Handler {
	return Handler{
		logger:        logger,
		sourceService: sourceService,
		autoSubmitter: autoSubmitter,
	}
}

type Handler struct {
	logger        *slog.Logger
	sourceService sourceService
	autoSubmitter autoSubmitter
}

type sourceService interface {
	Save(ctx context.Context, user *model.User, source NewSource) (*model.Obj, error)
	FindAccessibleObj(ctx context.Context, user *model.User, id string) (*model.Obj, error)
}

// autoSubmitter publishes objects through the sharing services of the groups they were saved to.
type autoSubmitter interface {
	AutoSubmit(ctx context.Context, user *model.User, objID string, groupIDs []uint) error
}

type SaveSourceRequest struct {
	ID       string   `json:"id" binding:"required"`
	RA       *float64 `json:"ra" binding:"required,gte=0,lt=360"`
	Dec      *float64 `json:"dec" binding:"required,gte=-90,lte=90"`
	Redshift *float64 `json:"redshift"`
	GroupIDs []uint   `json:"groupIds" binding:"required,min=1"`
}

// Save source
func (h Handler) Save(c *gin.Context) {
	// swagger:route POST /sources saveSource
	//
	// Save source
	//
	// Save an object to groups. The object is created if it doesn't exist yet. Saving triggers
	// automatic submissions of the sharing services of the groups.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   201: Obj
	//   400: Error
	//   401: Error
	//   403: Error
	//   404: Error
	//   415: Error
	var request SaveSourceRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	ctx := c.Request.Context()
	user, err := handler.GetUserFromContext(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	obj, err := h.sourceService.Save(ctx, user, NewSource{
		ID:       request.ID,
		RA:       *request.RA,
		Dec:      *request.Dec,
		Redshift: request.Redshift,
		GroupIDs: request.GroupIDs,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	// the source is saved either way. auto submissions rejected before they are stored, like objs
	// without publishable photometry yet, are only logged.
	if err := h.autoSubmitter.AutoSubmit(ctx, user, obj.ID, request.GroupIDs); err != nil {
		h.logger.ErrorContext(ctx, "Failed to auto submit source", "objId", obj.ID, "error", err)
	}

	c.JSON(http.StatusCreated, obj)
}

// Find source
func (h Handler) Find(c *gin.Context) {
	// swagger:route GET /sources/{id} findSource
	//
	// Find source
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: Obj
	//   401: Error
	//   404: Error
	ctx := c.Request.Context()
	user, err := handler.GetUserFromContext(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	obj, err := h.sourceService.FindAccessibleObj(ctx, user, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, obj)
}
