package photometry

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skyportal/skyportal/internal/handler"
	"github.com/skyportal/skyportal/pkg/model"
)

func NewHandler(photometryService photometryService) Handler {
	return Handler{photometryService: photometryService}
}

type Handler struct {
	photometryService photometryService
}

type photometryService interface {
	Create(ctx context.Context, user *model.User, p NewPhotometry) (*model.Photometry, error)
	FindAccessible(ctx context.Context, user *model.User, objID string) ([]model.Photometry, error)
}

type CreatePhotometryRequest struct {
	ObjID        string   `json:"objId" binding:"required"`
	InstrumentID uint     `json:"instrumentId" binding:"required"`
	MJD          float64  `json:"mjd" binding:"required"`
	Flux         *float64 `json:"flux"`
	FluxErr      float64  `json:"fluxerr" binding:"required,gt=0"`
	Filter       string   `json:"filter" binding:"required"`
	MagSys       string   `json:"magsys" binding:"omitempty,oneOf=ab vega"`
	Origin       string   `json:"origin"`
	GroupIDs     []uint   `json:"groupIds" binding:"required,min=1"`
	StreamIDs    []uint   `json:"streamIds"`
}

// Create photometry
func (h Handler) Create(c *gin.Context) {
	// swagger:route POST /photometry createPhotometry
	//
	// Create photometry
	//
	// Add a flux measurement to an object. A missing flux marks a non detection.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   201: Photometry
	//   400: Error
	//   401: Error
	//   403: Error
	//   404: Error
	//   415: Error
	var request CreatePhotometryRequest
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

	photometry, err := h.photometryService.Create(ctx, user, NewPhotometry(request))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, photometry)
}

// FindBySource returns the accessible photometry of a source
func (h Handler) FindBySource(c *gin.Context) {
	// swagger:route GET /sources/{id}/photometry findSourcePhotometry
	//
	// Find source photometry
	//
	// Find the photometry of a source the user has access to, ordered by mjd
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: []Photometry
	//   401: Error
	//   404: Error
	ctx := c.Request.Context()
	user, err := handler.GetUserFromContext(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	photometry, err := h.photometryService.FindAccessible(ctx, user, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, photometry)
}
