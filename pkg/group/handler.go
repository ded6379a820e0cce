package group

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skyportal/skyportal/internal/handler"
	"github.com/skyportal/skyportal/pkg/model"
)

func NewHandler(groupService groupService) Handler {
	return Handler{
		groupService: groupService,
	}
}

type Handler struct {
	groupService groupService
}

type groupService interface {
	Create(ctx context.Context, name string) (*model.Group, error)
	FindWithDetails(ctx context.Context, user *model.User, id uint) (*model.Group, error)
	FindAll(ctx context.Context, user *model.User) ([]model.Group, error)
	AddUser(ctx context.Context, groupID uint, userID uint) error
	AddAdminUser(ctx context.Context, groupID uint, userID uint) error
	RemoveUser(ctx context.Context, groupID uint, userID uint) error
}

type CreateGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create group
func (h Handler) Create(c *gin.Context) {
	// swagger:route POST /groups groupCreate
	//
	// Create group
	//
	// Create a group...
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   201: Group
	//   400: Error
	//   401: Error
	//   403: Error
	//   409: Error
	//   415: Error
	var request CreateGroupRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	group, err := h.groupService.Create(c.Request.Context(), request.Name)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, group)
}

// AddUserToGroup group
func (h Handler) AddUserToGroup(c *gin.Context) {
	// swagger:route POST /groups/{id}/users/{userId} addUserToGroup
	//
	// Add user to group
	//
	// Add a user to a group...
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
	groupID, userID, ok := groupAndUserID(c)
	if !ok {
		return
	}

	err := h.groupService.AddUser(c.Request.Context(), groupID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusCreated)
}

// AddAdminUserToGroup group
func (h Handler) AddAdminUserToGroup(c *gin.Context) {
	// swagger:route POST /groups/{id}/admins/{userId} addAdminUserToGroup
	//
	// Add admin user to group
	//
	// Add a user as member and admin of a group...
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
	groupID, userID, ok := groupAndUserID(c)
	if !ok {
		return
	}

	err := h.groupService.AddAdminUser(c.Request.Context(), groupID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusCreated)
}

// RemoveUserFromGroup group
func (h Handler) RemoveUserFromGroup(c *gin.Context) {
	// swagger:route DELETE /groups/{id}/users/{userId} removeUserFromGroup
	//
	// Remove user from group
	//
	// Remove a user from a group...
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
	groupID, userID, ok := groupAndUserID(c)
	if !ok {
		return
	}

	err := h.groupService.RemoveUser(c.Request.Context(), groupID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func groupAndUserID(c *gin.Context) (uint, uint, bool) {
	groupID, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return 0, 0, false
	}

	userID, ok := handler.GetPathParameter(c, "userId")
	if !ok {
		return 0, 0, false
	}

	return groupID, userID, true
}

// Find group by id
func (h Handler) Find(c *gin.Context) {
	// swagger:route GET /groups/{id} findGroup
	//
	// Find group
	//
	// Find a group and its members by id
	//
	// responses:
	//   200: Group
	//   401: Error
	//   403: Error
	//   404: Error
	//
	// security:
	//   oauth2:
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

	group, err := h.groupService.FindWithDetails(ctx, user, id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// FindAll find all groups by user
func (h Handler) FindAll(c *gin.Context) {
	// swagger:route GET /groups findAllGroupsByUser
	//
	// Find all groups
	//
	// Find all groups by user
	//
	// responses:
	//   200: []Group
	//   401: Error
	//
	// security:
	//   oauth2:
	ctx := c.Request.Context()
	user, err := handler.GetUserFromContext(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	groups, err := h.groupService.FindAll(ctx, user)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, groups)
}
