package user

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/internal/handler"
	"github.com/skyportal/skyportal/internal/util"
	"github.com/skyportal/skyportal/pkg/model"
	"github.com/skyportal/skyportal/pkg/token"
)

func NewHandler(userService userService, tokenService tokenService) Handler {
	return Handler{
		userService,
		tokenService,
	}
}

type Handler struct {
	userService  userService
	tokenService tokenService
}

type userService interface {
	Create(ctx context.Context, newUser NewUser) (*model.User, error)
	FindById(ctx context.Context, id uint) (*model.User, error)
	FindAll(ctx context.Context) ([]*model.User, error)
	Update(ctx context.Context, id uint, update UserUpdate) (*model.User, error)
	Delete(ctx context.Context, id uint) error
}

type tokenService interface {
	GetTokens(user *model.User) (*token.Tokens, error)
}

type createUserRequest struct {
	Username     string   `json:"username" binding:"required"`
	Password     string   `json:"password" binding:"omitempty,gte=16,lte=128"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	Email        string   `json:"email" binding:"omitempty,email"`
	Affiliations []string `json:"affiliations"`
	IsBot        bool     `json:"isBot"`
}

// Create user
func (h Handler) Create(c *gin.Context) {
	// swagger:route POST /users createUser
	//
	// Create user
	//
	// Create a user. Only administrators can create users. Bot accounts can't sign in and therefore don't need a password.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   201: User
	//   400: Error
	//   401: Error
	//   403: Error
	//   409: Error
	//   415: Error
	var request createUserRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), NewUser{
		Username:     request.Username,
		Password:     request.Password,
		FirstName:    request.FirstName,
		LastName:     request.LastName,
		Email:        request.Email,
		Affiliations: request.Affiliations,
		IsBot:        request.IsBot,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// SignIn user
func (h Handler) SignIn(c *gin.Context) {
	// swagger:route POST /tokens signIn
	//
	// Sign in
	//
	// Sign in... And get tokens
	//
	// security:
	//   basicAuth:
	//
	// responses:
	//   201: Tokens
	//   401: Error
	//   403: Error
	//   404: Error
	//   415: Error
	user, err := handler.GetUserFromContext(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	tokens, err := h.tokenService.GetTokens(user)
	if err != nil {
		_ = c.Error(err)
		return
	}

	util.SetCookies(c, tokens, http.SameSiteStrictMode)
	c.JSON(http.StatusCreated, tokens)
}

// Me user
func (h Handler) Me(c *gin.Context) {
	// swagger:route GET /me me
	//
	// User details
	//
	// Current user details
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: User
	//   401: Error
	//   403: Error
	//   404: Error
	//   415: Error
	user, err := handler.GetUserFromContext(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// FindById user
func (h Handler) FindById(c *gin.Context) {
	// swagger:route GET /users/{id} findUserById
	//
	// Find user
	//
	// Find a user by its id
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	200: User
	//	401: Error
	//	403: Error
	//	404: Error
	//	415: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	userWithGroups, err := h.userService.FindById(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, userWithGroups)
}

// FindAll user
func (h Handler) FindAll(c *gin.Context) {
	// swagger:route GET /users findAllUsers
	//
	// Find users
	//
	// Find all users with the groups they belong to
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	200: []User
	//	401: Error
	//	403: Error
	//	415: Error
	users, err := h.userService.FindAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, users)
}

type updateUserRequest struct {
	FirstName    *string  `json:"firstName"`
	LastName     *string  `json:"lastName"`
	Email        *string  `json:"email" binding:"omitempty,email"`
	Affiliations []string `json:"affiliations"`
	Password     string   `json:"password" binding:"omitempty,gte=16,lte=128"`
}

// Update user
func (h Handler) Update(c *gin.Context) {
	// swagger:route PUT /users/{id} updateUser
	//
	// Update user
	//
	// Update name, email, affiliations or password of a user. Users can update themselves, administrators can update anyone.
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	200: User
	//	400: Error
	//	401: Error
	//	403: Error
	//	404: Error
	//	415: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	user, err := handler.GetUserFromContext(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	if user.ID != id && !user.IsAdministrator() {
		_ = c.Error(errdef.NewForbidden("user %d can't update user %d", user.ID, id))
		return
	}

	var request updateUserRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	updated, err := h.userService.Update(c.Request.Context(), id, UserUpdate{
		FirstName:    request.FirstName,
		LastName:     request.LastName,
		Email:        request.Email,
		Affiliations: request.Affiliations,
		Password:     request.Password,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete user
func (h Handler) Delete(c *gin.Context) {
	// swagger:route DELETE /users/{id} deleteUser
	//
	// Delete user
	//
	// Delete user by id
	//
	// Security:
	//	oauth2:
	//
	// Responses:
	//	204:
	//	401: Error
	//	403: Error
	//	404: Error
	//	415: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	user, err := handler.GetUserFromContext(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	if user.ID == id {
		_ = c.Error(errdef.NewBadRequest("cannot delete the current user"))
		return
	}

	err = h.userService.Delete(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
