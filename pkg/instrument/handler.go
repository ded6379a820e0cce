package instrument

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skyportal/skyportal/internal/handler"
	"github.com/skyportal/skyportal/pkg/model"
)

func NewHandler(instrumentService instrumentService) Handler {
	return Handler{instrumentService: instrumentService}
}

type Handler struct {
	instrumentService instrumentService
}

type instrumentService interface {
	Create(ctx context.Context, name, instrumentType string, filters []string) (*model.Instrument, error)
	Find(ctx context.Context, id uint) (*model.Instrument, error)
	FindAll(ctx context.Context) ([]model.Instrument, error)
}

type CreateInstrumentRequest struct {
	Name    string   `json:"name" binding:"required"`
	Type    string   `json:"type" binding:"required,oneOf=imager spectrograph"`
	Filters []string `json:"filters"`
}

// Create instrument
func (h Handler) Create(c *gin.Context) {
	// swagger:route POST /instruments createInstrument
	//
	// Create instrument
	//
	// Create an instrument and the filters it observes in
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   201: Instrument
	//   400: Error
	//   401: Error
	//   403: Error
	//   409: Error
	//   415: Error
	var request CreateInstrumentRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	instrument, err := h.instrumentService.Create(c.Request.Context(), request.Name, request.Type, request.Filters)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, instrument)
}

// Find instrument
func (h Handler) Find(c *gin.Context) {
	// swagger:route GET /instruments/{id} findInstrument
	//
	// Find instrument
	//
	// Find an instrument by id
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: Instrument
	//   400: Error
	//   401: Error
	//   404: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	instrument, err := h.instrumentService.Find(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, instrument)
}

// FindAll instruments
func (h Handler) FindAll(c *gin.Context) {
	// swagger:route GET /instruments findAllInstruments
	//
	// Find all instruments
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: []Instrument
	//   401: Error
	instruments, err := h.instrumentService.FindAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, instruments)
}
