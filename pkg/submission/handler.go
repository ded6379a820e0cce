package submission

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skyportal/skyportal/internal/handler"
	"github.com/skyportal/skyportal/internal/parse"
	"github.com/skyportal/skyportal/pkg/model"
)

func NewHandler(submissionService submissionService) Handler {
	return Handler{submissionService: submissionService}
}

type Handler struct {
	submissionService submissionService
}

type submissionService interface {
	Submit(ctx context.Context, user *model.User, sharingServiceID uint, request Request) (*model.SharingServiceSubmission, error)
	Find(ctx context.Context, user *model.User, id uint) (*model.SharingServiceSubmission, error)
	List(ctx context.Context, user *model.User, sharingServiceID uint, objID string, pageNumber, numPerPage int) (*Page, error)
}

type SubmitRequest struct {
	ObjID string `json:"objId" binding:"required"`
	// Either a list of ids or a comma separated string. Defaults to all instruments of the sharing service
	InstrumentIDs any `json:"instrumentIds"`
	// Either a list of ids or a comma separated string. Defaults to all streams of the sharing service
	StreamIDs any `json:"streamIds"`
	// Overrides the photometry options of the sharing service
	PhotometryOptions      map[string]any `json:"photometryOptions"`
	CustomPublishingString string         `json:"customPublishingString"`
	Archival               bool           `json:"archival"`
	ArchivalComment        string         `json:"archivalComment"`
	// Defaults to whether the sharing service publishes to TNS
	PublishToTNS *bool `json:"publishToTns"`
	// Defaults to whether the sharing service publishes to Hermes
	PublishToHermes *bool `json:"publishToHermes"`
}

// Submit an obj
func (h Handler) Submit(c *gin.Context) {
	// swagger:route POST /sharing_service/{id}/submission submitObj
	//
	// Submit object
	//
	// Queue the publication of an object with the sharing service. The status of the submission is streamed to the submitter.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   201: Submission
	//   400: Error
	//   401: Error
	//   403: Error
	//   404: Error
	//   409: Error
	//   415: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	var request SubmitRequest
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

	submission, err := h.submissionService.Submit(ctx, user, id, Request(request))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// List submissions
func (h Handler) List(c *gin.Context) {
	// swagger:route GET /sharing_service/{id}/submission listSubmissions
	//
	// List submissions
	//
	// List the submissions of the sharing service, newest first.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: SubmissionPage
	//   400: Error
	//   401: Error
	//   404: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	pageNumber, numPerPage, err := parse.Pagination(c.Query("pageNumber"), c.Query("numPerPage"), parse.MaxPerPage)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ctx := c.Request.Context()
	user, err := handler.GetUserFromContext(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	page, err := h.submissionService.List(ctx, user, id, c.Query("objID"), pageNumber, numPerPage)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Find submission
func (h Handler) Find(c *gin.Context) {
	// swagger:route GET /sharing_service/submission/{submissionId} findSubmission
	//
	// Find submission
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: Submission
	//   400: Error
	//   401: Error
	//   404: Error
	id, ok := handler.GetPathParameter(c, "submissionId")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	user, err := handler.GetUserFromContext(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	submission, err := h.submissionService.Find(ctx, user, id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, submission)
}
