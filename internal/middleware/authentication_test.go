package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/internal/handler"
	"github.com/skyportal/skyportal/pkg/model"
	"github.com/skyportal/skyportal/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserService struct {
	users map[uint]*model.User
}

func (f fakeUserService) SignIn(_ context.Context, username string, password string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username && password == "secret" {
			return u, nil
		}
	}
	return nil, errdef.NewUnauthorized("invalid username or password")
}

func (f fakeUserService) FindById(_ context.Context, id uint) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, errdef.NewNotFound("user not found for id: %d", id)
	}
	return u, nil
}

func TestTokenAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	users := fakeUserService{users: map[uint]*model.User{
		1: {ID: 1, Username: "vera"},
	}}
	authentication := NewAuthentication(&privateKey.PublicKey, users)
	tokens, err := token.NewService(privateKey, 60).GetTokens(users.users[1])
	require.NoError(t, err)
	unknownUserTokens, err := token.NewService(privateKey, 60).GetTokens(&model.User{ID: 2})
	require.NoError(t, err)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	foreignTokens, err := token.NewService(otherKey, 60).GetTokens(users.users[1])
	require.NoError(t, err)

	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/me", authentication.TokenAuthentication, func(c *gin.Context) {
		u, err := handler.GetUserFromContext(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.String(http.StatusOK, "%s", u.Username)
	})

	t.Run("BearerToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "vera", w.Body.String())
	})

	t.Run("Cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: tokens.AccessToken})
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "vera", w.Body.String())
	})

	t.Run("MissingToken", func(t *testing.T) {
		w := httptest.NewRecorder()

		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("SignedByAnotherKey", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+foreignTokens.AccessToken)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+unknownUserTokens.AccessToken)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "user 2 not found")
	})
}

func TestBasicAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	users := fakeUserService{users: map[uint]*model.User{
		1: {ID: 1, Username: "vera"},
	}}
	authentication := NewAuthentication(nil, users)

	r := gin.New()
	r.Use(ErrorHandler())
	r.POST("/tokens", authentication.BasicAuthentication, func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	t.Run("ValidCredentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/tokens", nil)
		req.SetBasicAuth("vera", "secret")
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/tokens", nil)
		req.SetBasicAuth("vera", "wrong")
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		w := httptest.NewRecorder()

		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/tokens", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
