package sharing

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/internal/handler"
	"github.com/skyportal/skyportal/internal/parse"
	"github.com/skyportal/skyportal/pkg/model"
)

func NewHandler(sharingService sharingService) Handler {
	return Handler{sharingService: sharingService}
}

type Handler struct {
	sharingService sharingService
}

type sharingService interface {
	Create(ctx context.Context, user *model.User, params NewSharingService) (*model.SharingService, error)
	Find(ctx context.Context, user *model.User, id uint) (*model.SharingService, error)
	FindAll(ctx context.Context, user *model.User, groupID uint) ([]model.SharingService, error)
	Update(ctx context.Context, user *model.User, id uint, update SharingServiceUpdate) (*model.SharingService, error)
	Delete(ctx context.Context, user *model.User, id uint) error
	AddGroup(ctx context.Context, user *model.User, id uint, newGroup NewGroup) (*model.SharingServiceGroup, error)
	UpdateGroup(ctx context.Context, user *model.User, id, groupID uint, update GroupUpdate) (*model.SharingServiceGroup, error)
	DeleteGroup(ctx context.Context, user *model.User, id, groupID uint) error
	AddAutoPublishers(ctx context.Context, user *model.User, id, groupID uint, userIDs []uint) (*model.SharingServiceGroup, error)
	RemoveAutoPublisher(ctx context.Context, user *model.User, id, groupID, userID uint) error
	AddCoauthor(ctx context.Context, user *model.User, id, userID uint) (*model.SharingService, error)
	RemoveCoauthor(ctx context.Context, user *model.User, id, userID uint) error
}

type CreateSharingServiceRequest struct {
	Name            string `json:"name" binding:"required"`
	BotName         string `json:"botName"`
	BotID           int    `json:"botId"`
	SourceGroupID   int    `json:"sourceGroupId"`
	APIKey          string `json:"apiKey"`
	Acknowledgments string `json:"acknowledgments"`
	// Recognised keys are firstAndLastDetections and autoSharingAllowArchival
	PhotometryOptions map[string]any `json:"photometryOptions"`
	// Either a list of ids or a comma separated string
	InstrumentIDs any `json:"instrumentIds" binding:"required"`
	// Either a list of ids or a comma separated string
	StreamIDs               any    `json:"streamIds"`
	OwnerGroupIDs           []uint `json:"ownerGroupIds" binding:"required,min=1"`
	EnableSharingWithTNS    bool   `json:"enableSharingWithTns"`
	EnableSharingWithHermes bool   `json:"enableSharingWithHermes"`
	Testing                 bool   `json:"testing"`
}

// Create sharing service
func (h Handler) Create(c *gin.Context) {
	// swagger:route POST /sharing_service createSharingService
	//
	// Create sharing service
	//
	// Create a sharing service owned by the given groups. The user has to be a member of each of them.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   201: SharingService
	//   400: Error
	//   401: Error
	//   403: Error
	//   404: Error
	//   409: Error
	//   415: Error
	var request CreateSharingServiceRequest
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

	service, err := h.sharingService.Create(ctx, user, NewSharingService(request))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, service)
}

// Find sharing service
func (h Handler) Find(c *gin.Context) {
	// swagger:route GET /sharing_service/{id} findSharingService
	//
	// Find sharing service
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: SharingService
	//   400: Error
	//   401: Error
	//   404: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	user, err := handler.GetUserFromContext(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	service, err := h.sharingService.Find(ctx, user, id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, service)
}

// FindAll sharing services
func (h Handler) FindAll(c *gin.Context) {
	// swagger:route GET /sharing_service findAllSharingServices
	//
	// Find all sharing services
	//
	// Find the sharing services of the groups the user is a member of
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: []SharingService
	//   400: Error
	//   401: Error
	var groupID uint
	if value := c.Query("groupID"); value != "" {
		ids, err := parse.IDList(value)
		if err != nil || len(ids) != 1 {
			_ = c.Error(errdef.NewBadRequest("invalid group id %q", value))
			return
		}
		groupID = ids[0]
	}

	ctx := c.Request.Context()
	user, err := handler.GetUserFromContext(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	services, err := h.sharingService.FindAll(ctx, user, groupID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, services)
}

type UpdateSharingServiceRequest struct {
	Name                    *string        `json:"name"`
	BotName                 *string        `json:"botName"`
	BotID                   *int           `json:"botId"`
	SourceGroupID           *int           `json:"sourceGroupId"`
	APIKey                  *string        `json:"apiKey"`
	Acknowledgments         *string        `json:"acknowledgments"`
	PhotometryOptions       map[string]any `json:"photometryOptions"`
	InstrumentIDs           any            `json:"instrumentIds"`
	StreamIDs               any            `json:"streamIds"`
	EnableSharingWithTNS    *bool          `json:"enableSharingWithTns"`
	EnableSharingWithHermes *bool          `json:"enableSharingWithHermes"`
	Testing                 *bool          `json:"testing"`
}

// Update sharing service
func (h Handler) Update(c *gin.Context) {
	// swagger:route PUT /sharing_service/{id} updateSharingService
	//
	// Update sharing service
	//
	// Update the given fields of a sharing service. Photometry options are merged with the current
	// ones.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: SharingService
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

	var request UpdateSharingServiceRequest
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

	service, err := h.sharingService.Update(ctx, user, id, SharingServiceUpdate(request))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, service)
}

// Delete sharing service
func (h Handler) Delete(c *gin.Context) {
	// swagger:route DELETE /sharing_service/{id} deleteSharingService
	//
	// Delete sharing service
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
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	user, err := handler.GetUserFromContext(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.sharingService.Delete(ctx, user, id); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

type AddGroupRequest struct {
	GroupID              uint `json:"groupId" binding:"required"`
	Owner                bool `json:"owner"`
	AutoShareToTNS       bool `json:"autoShareToTns"`
	AutoShareToHermes    bool `json:"autoShareToHermes"`
	AutoSharingAllowBots bool `json:"autoSharingAllowBots"`
}

// AddGroup to sharing service
func (h Handler) AddGroup(c *gin.Context) {
	// swagger:route POST /sharing_service/{id}/group addSharingServiceGroup
	//
	// Add group to sharing service
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   201: SharingServiceGroup
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

	var request AddGroupRequest
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

	group, err := h.sharingService.AddGroup(ctx, user, id, NewGroup(request))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, group)
}

type UpdateGroupRequest struct {
	Owner                *bool `json:"owner"`
	AutoShareToTNS       *bool `json:"autoShareToTns"`
	AutoShareToHermes    *bool `json:"autoShareToHermes"`
	AutoSharingAllowBots *bool `json:"autoSharingAllowBots"`
}

// UpdateGroup of sharing service
func (h Handler) UpdateGroup(c *gin.Context) {
	// swagger:route PUT /sharing_service/{id}/group/{groupId} updateSharingServiceGroup
	//
	// Update sharing service group
	//
	// Update ownership and auto sharing flags of a group. The last owner group can't give up
	// ownership and bots can't be disallowed while a bot is an auto publisher.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: SharingServiceGroup
	//   400: Error
	//   401: Error
	//   403: Error
	//   404: Error
	//   415: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	groupID, ok := handler.GetPathParameter(c, "groupId")
	if !ok {
		return
	}

	var request UpdateGroupRequest
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

	group, err := h.sharingService.UpdateGroup(ctx, user, id, groupID, GroupUpdate(request))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// DeleteGroup from sharing service
func (h Handler) DeleteGroup(c *gin.Context) {
	// swagger:route DELETE /sharing_service/{id}/group/{groupId} deleteSharingServiceGroup
	//
	// Remove group from sharing service
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
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	groupID, ok := handler.GetPathParameter(c, "groupId")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	user, err := handler.GetUserFromContext(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.sharingService.DeleteGroup(ctx, user, id, groupID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

type AddAutoPublishersRequest struct {
	UserIDs []uint `json:"userIds" binding:"required,min=1"`
}

// AddAutoPublishers to a sharing service group
func (h Handler) AddAutoPublishers(c *gin.Context) {
	// swagger:route POST /sharing_service/{id}/group/{groupId}/auto_publisher addAutoPublishers
	//
	// Add auto publishers
	//
	// Sources saved to the group by auto publishers are submitted automatically. Auto publishers
	// have to be members of the group with an affiliation.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   201: SharingServiceGroup
	//   400: Error
	//   401: Error
	//   403: Error
	//   404: Error
	//   415: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	groupID, ok := handler.GetPathParameter(c, "groupId")
	if !ok {
		return
	}

	var request AddAutoPublishersRequest
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

	group, err := h.sharingService.AddAutoPublishers(ctx, user, id, groupID, request.UserIDs)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, group)
}

// RemoveAutoPublisher from a sharing service group
func (h Handler) RemoveAutoPublisher(c *gin.Context) {
	// swagger:route DELETE /sharing_service/{id}/group/{groupId}/auto_publisher/{userId} removeAutoPublisher
	//
	// Remove auto publisher
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
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	groupID, ok := handler.GetPathParameter(c, "groupId")
	if !ok {
		return
	}

	userID, ok := handler.GetPathParameter(c, "userId")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	user, err := handler.GetUserFromContext(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.sharingService.RemoveAutoPublisher(ctx, user, id, groupID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddCoauthor to a sharing service
func (h Handler) AddCoauthor(c *gin.Context) {
	// swagger:route POST /sharing_service/{id}/coauthor/{userId} addCoauthor
	//
	// Add coauthor
	//
	// Coauthors are listed on every report of the sharing service. They can't be bots and need an
	// affiliation.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   201: SharingService
	//   400: Error
	//   401: Error
	//   403: Error
	//   404: Error
	//   409: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	userID, ok := handler.GetPathParameter(c, "userId")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	user, err := handler.GetUserFromContext(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	service, err := h.sharingService.AddCoauthor(ctx, user, id, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, service)
}

// RemoveCoauthor from a sharing service
func (h Handler) RemoveCoauthor(c *gin.Context) {
	// swagger:route DELETE /sharing_service/{id}/coauthor/{userId} removeCoauthor
	//
	// Remove coauthor
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
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	userID, ok := handler.GetPathParameter(c, "userId")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	user, err := handler.GetUserFromContext(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.sharingService.RemoveCoauthor(ctx, user, id, userID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
