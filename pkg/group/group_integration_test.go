package group_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/skyportal/skyportal/pkg/group"
	"github.com/skyportal/skyportal/pkg/inttest"
	"github.com/skyportal/skyportal/pkg/model"
	"github.com/skyportal/skyportal/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestAuthenticationMiddleware struct {
	userService interface {
		FindById(ctx context.Context, id uint) (*model.User, error)
	}
	userID uint
}

func (t TestAuthenticationMiddleware) TokenAuthentication(c *gin.Context) {
	u, err := t.userService.FindById(c.Request.Context(), t.userID)
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.Request = c.Request.WithContext(model.NewContextWithUser(c.Request.Context(), u))
}

type TestAuthorizationMiddleware struct{}

func (t TestAuthorizationMiddleware) RequireAdministrator(c *gin.Context) {
	c.Next()
}

func TestGroupHandler(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := inttest.SetupDB(t)
	userRepository := user.NewRepository(db)
	userService := user.NewService(userRepository)
	groupRepository := group.NewRepository(db)
	groupService := group.NewService(groupRepository, userService)

	err := user.CreateAdminUser(ctx, "admin", "admin", userService, groupService)
	require.NoError(t, err, "failed to create admin user and group")
	admin, err := userService.FindOrCreate(ctx, "admin", "admin")
	require.NoError(t, err)

	client := inttest.SetupHTTPServer(t, func(engine *gin.Engine) {
		handler := group.NewHandler(groupService)
		authentication := TestAuthenticationMiddleware{userService: userService, userID: admin.ID}
		authorization := TestAuthorizationMiddleware{}
		group.Routes(engine, authentication, authorization, handler)
	})

	u, err := userService.Create(ctx, user.NewUser{Username: "user1", Password: "oneoneoneoneoneoneone111"})
	require.NoError(t, err)

	g, err := groupService.Create(ctx, "test-group")
	require.NoError(t, err)

	t.Run("CreateGroup", func(t *testing.T) {
		t.Parallel()

		var group model.Group
		client.PostJSON(t, "/groups", strings.NewReader(`{"name": "ztf-partnership"}`), &group)

		require.Equal(t, "ztf-partnership", group.Name)
		require.NotZero(t, group.ID)
	})

	t.Run("CreateDuplicateGroup", func(t *testing.T) {
		t.Parallel()

		body := client.DoJSON(t, http.MethodPost, "/groups", strings.NewReader(`{"name": "test-group"}`), http.StatusConflict)

		require.Equal(t, `group "test-group" already exists`, string(body))
	})

	t.Run("AddUserToGroup", func(t *testing.T) {
		t.Run("AddUserToGroup", func(t *testing.T) {
			path := fmt.Sprintf("/groups/%d/users/%d", g.ID, u.ID)

			client.Do(t, http.MethodPost, path, nil, http.StatusCreated)

			var group model.Group
			client.GetJSON(t, fmt.Sprintf("/groups/%d", g.ID), &group)
			require.Len(t, group.Users, 1)
			assert.Equal(t, u.ID, group.Users[0].ID)
		})

		t.Run("AddUserToGroupNonExistingGroup", func(t *testing.T) {
			path := fmt.Sprintf("/groups/%d/users/%d", 9999, u.ID)

			response := client.Do(t, http.MethodPost, path, nil, http.StatusNotFound)

			require.Equal(t, "group 9999 doesn't exist", string(response))
		})

		t.Run("AddNonExistingUserToGroup", func(t *testing.T) {
			path := fmt.Sprintf("/groups/%d/users/%d", g.ID, 123)

			response := client.Do(t, http.MethodPost, path, nil, http.StatusNotFound)

			require.Equal(t, "failed to find user with id 123", string(response))
		})

		t.Run("InvalidUserID", func(t *testing.T) {
			path := fmt.Sprintf("/groups/%d/users/abc", g.ID)

			client.Do(t, http.MethodPost, path, nil, http.StatusBadRequest)
		})
	})

	t.Run("RemoveUserFromGroup", func(t *testing.T) {
		other, err := userService.Create(ctx, user.NewUser{Username: "user2", Password: "oneoneoneoneoneoneone111"})
		require.NoError(t, err)
		require.NoError(t, groupService.AddAdminUser(ctx, g.ID, other.ID))

		client.Delete(t, fmt.Sprintf("/groups/%d/users/%d", g.ID, other.ID))

		found, err := userService.FindById(ctx, other.ID)
		require.NoError(t, err)
		assert.False(t, found.IsMemberOf(g.ID))
		assert.False(t, found.IsAdminOf(g.ID))
	})

	t.Run("FindAllGroups", func(t *testing.T) {
		var groups []model.Group
		client.GetJSON(t, "/groups", &groups)

		names := make([]string, len(groups))
		for i, group := range groups {
			names[i] = group.Name
		}
		assert.Contains(t, names, model.AdministratorGroupName)
		assert.Contains(t, names, "test-group")
	})

	t.Run("FindGroupFailed", func(t *testing.T) {
		client.Do(t, http.MethodGet, "/groups/9999", nil, http.StatusNotFound)
	})
}
