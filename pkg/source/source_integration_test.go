package source_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/pkg/group"
	"github.com/skyportal/skyportal/pkg/inttest"
	"github.com/skyportal/skyportal/pkg/model"
	"github.com/skyportal/skyportal/pkg/source"
	"github.com/skyportal/skyportal/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAuthenticationMiddleware struct {
	userService interface {
		FindById(ctx context.Context, id uint) (*model.User, error)
	}
	userID *uint
}

func (t testAuthenticationMiddleware) TokenAuthentication(c *gin.Context) {
	u, err := t.userService.FindById(c.Request.Context(), *t.userID)
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.Request = c.Request.WithContext(model.NewContextWithUser(c.Request.Context(), u))
}

type recordingAutoSubmitter struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (r *recordingAutoSubmitter) AutoSubmit(_ context.Context, user *model.User, objID string, groupIDs []uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf("%d:%s:%v", user.ID, objID, groupIDs))
	return r.err
}

func TestSourceHandler(t *testing.T) {
	ctx := context.Background()
	db := inttest.SetupDB(t)
	userService := user.NewService(user.NewRepository(db))
	groupService := group.NewService(group.NewRepository(db), userService)
	sourceService := source.NewService(source.NewRepository(db), groupService)

	ztf, err := groupService.Create(ctx, "ZTF")
	require.NoError(t, err)
	other, err := groupService.Create(ctx, "Other")
	require.NoError(t, err)
	member, err := userService.Create(ctx, user.NewUser{Username: "member", Password: "membermembermember1"})
	require.NoError(t, err)
	require.NoError(t, groupService.AddUser(ctx, ztf.ID, member.ID))
	outsider, err := userService.Create(ctx, user.NewUser{Username: "outsider", Password: "outsideroutsider1"})
	require.NoError(t, err)

	autoSubmitter := &recordingAutoSubmitter{}
	currentUserID := member.ID
	client := inttest.SetupHTTPServer(t, func(engine *gin.Engine) {
		authentication := testAuthenticationMiddleware{userService: userService, userID: &currentUserID}
		source.Routes(engine, authentication, source.NewHandler(slog.Default(), sourceService, autoSubmitter))
	})

	t.Run("Save", func(t *testing.T) {
		body := fmt.Sprintf(`{"id": "ZTF21aaaaaaa", "ra": 229.9620403, "dec": 34.8442757, "groupIds": [%d]}`, ztf.ID)

		var obj model.Obj
		client.PostJSON(t, "/sources", strings.NewReader(body), &obj)

		assert.Equal(t, "ZTF21aaaaaaa", obj.ID)
		assert.InDelta(t, 229.9620403, obj.RA, 1e-9)
		require.Len(t, obj.Sources, 1)
		assert.Equal(t, ztf.ID, obj.Sources[0].GroupID)
		assert.Equal(t, member.ID, obj.Sources[0].SavedByID)
		assert.Equal(t, []string{fmt.Sprintf("%d:ZTF21aaaaaaa:[%d]", member.ID, ztf.ID)}, autoSubmitter.calls)
	})

	t.Run("SaveAgainKeepsObj", func(t *testing.T) {
		body := fmt.Sprintf(`{"id": "ZTF21aaaaaaa", "ra": 1, "dec": 1, "groupIds": [%d]}`, ztf.ID)

		var obj model.Obj
		client.PostJSON(t, "/sources", strings.NewReader(body), &obj)

		assert.InDelta(t, 229.9620403, obj.RA, 1e-9)
		assert.Len(t, obj.Sources, 1)
	})

	t.Run("SaveWhenAutoSubmissionIsRejected", func(t *testing.T) {
		autoSubmitter.err = errdef.NewBadRequest("no detection of ZTF21ccccccc to publish")
		defer func() { autoSubmitter.err = nil }()
		body := fmt.Sprintf(`{"id": "ZTF21ccccccc", "ra": 20, "dec": 20, "groupIds": [%d]}`, ztf.ID)

		var obj model.Obj
		client.PostJSON(t, "/sources", strings.NewReader(body), &obj)

		assert.Equal(t, "ZTF21ccccccc", obj.ID)
		assert.Contains(t, autoSubmitter.calls, fmt.Sprintf("%d:ZTF21ccccccc:[%d]", member.ID, ztf.ID))
	})

	t.Run("SaveToGroupOfOthers", func(t *testing.T) {
		body := fmt.Sprintf(`{"id": "ZTF21bbbbbbb", "ra": 10, "dec": 10, "groupIds": [%d]}`, other.ID)

		response := client.DoJSON(t, http.MethodPost, "/sources", strings.NewReader(body), http.StatusForbidden)

		assert.Equal(t, fmt.Sprintf("user %d is not a member of group %d", member.ID, other.ID), string(response))
	})

	t.Run("SaveInvalidCoordinates", func(t *testing.T) {
		body := fmt.Sprintf(`{"id": "ZTF21bbbbbbb", "ra": 400, "dec": 10, "groupIds": [%d]}`, ztf.ID)

		client.DoJSON(t, http.MethodPost, "/sources", strings.NewReader(body), http.StatusBadRequest)
	})

	t.Run("FindAsOutsider", func(t *testing.T) {
		currentUserID = outsider.ID
		defer func() { currentUserID = member.ID }()

		response := client.Do(t, http.MethodGet, "/sources/ZTF21aaaaaaa", nil, http.StatusNotFound)

		assert.Equal(t, `source "ZTF21aaaaaaa" doesn't exist`, string(response))
	})

	t.Run("Find", func(t *testing.T) {
		var obj model.Obj
		client.GetJSON(t, "/sources/ZTF21aaaaaaa", &obj)

		assert.Equal(t, "ZTF21aaaaaaa", obj.ID)
		require.Len(t, obj.Sources, 1)
		require.NotNil(t, obj.Sources[0].Group)
		assert.Equal(t, "ZTF", obj.Sources[0].Group.Name)
	})
}
