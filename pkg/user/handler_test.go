package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/pkg/model"
	"github.com/skyportal/skyportal/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandler_SignIn(t *testing.T) {
	user := &model.User{ID: 123}
	tokenService := &mockTokenService{}
	tokens := &token.Tokens{
		AccessToken: "accessToken",
		TokenType:   "bearer",
		ExpiresIn:   312,
	}
	tokenService.
		On("GetTokens", user).
		Return(tokens, nil)
	handler := NewHandler(&mockUserService{}, tokenService)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = newRequest(t, http.MethodPost, "/tokens", nil).WithContext(model.NewContextWithUser(context.Background(), user))

	handler.SignIn(c)

	require.Empty(t, c.Errors)
	assert.Equal(t, http.StatusCreated, recorder.Code)
	var got token.Tokens
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	assert.Equal(t, *tokens, got)
	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "accessToken", cookies[0].Name)
	assert.Equal(t, "accessToken", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	tokenService.AssertExpectations(t)
}

func TestHandler_Update(t *testing.T) {
	t.Run("Self", func(t *testing.T) {
		user := &model.User{ID: 1}
		userService := &mockUserService{}
		userService.
			On("Update", uint(1), UserUpdate{Affiliations: []string{"Caltech"}}).
			Return(&model.User{ID: 1, Affiliations: []string{"Caltech"}}, nil)
		handler := NewHandler(userService, &mockTokenService{})

		recorder := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(recorder)
		c.Params = gin.Params{{Key: "id", Value: "1"}}
		c.Request = newRequest(t, http.MethodPut, "/users/1", map[string]any{"affiliations": []string{"Caltech"}}).
			WithContext(model.NewContextWithUser(context.Background(), user))

		handler.Update(c)

		require.Empty(t, c.Errors)
		assert.Equal(t, http.StatusOK, recorder.Code)
		userService.AssertExpectations(t)
	})

	t.Run("OtherUserAsNonAdministrator", func(t *testing.T) {
		user := &model.User{ID: 1}
		userService := &mockUserService{}
		handler := NewHandler(userService, &mockTokenService{})

		recorder := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(recorder)
		c.Params = gin.Params{{Key: "id", Value: "2"}}
		c.Request = newRequest(t, http.MethodPut, "/users/2", map[string]any{"affiliations": []string{"Caltech"}}).
			WithContext(model.NewContextWithUser(context.Background(), user))

		handler.Update(c)

		require.Len(t, c.Errors, 1)
		assert.True(t, errdef.IsForbidden(c.Errors.Last()))
		userService.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestHandler_Delete_CurrentUser(t *testing.T) {
	user := &model.User{ID: 1}
	userService := &mockUserService{}
	handler := NewHandler(userService, &mockTokenService{})

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Request = newRequest(t, http.MethodDelete, "/users/1", nil).WithContext(model.NewContextWithUser(context.Background(), user))

	handler.Delete(c)

	require.Len(t, c.Errors, 1)
	assert.True(t, errdef.IsBadRequest(c.Errors.Last()))
	userService.AssertNotCalled(t, "Delete", mock.Anything)
}

func newRequest(t *testing.T, method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

type mockUserService struct{ mock.Mock }

func (m *mockUserService) Create(ctx context.Context, newUser NewUser) (*model.User, error) {
	called := m.Called(newUser)
	return called.Get(0).(*model.User), called.Error(1)
}

func (m *mockUserService) FindById(ctx context.Context, id uint) (*model.User, error) {
	called := m.Called(id)
	return called.Get(0).(*model.User), called.Error(1)
}

func (m *mockUserService) FindAll(ctx context.Context) ([]*model.User, error) {
	called := m.Called()
	return called.Get(0).([]*model.User), called.Error(1)
}

func (m *mockUserService) Update(ctx context.Context, id uint, update UserUpdate) (*model.User, error) {
	called := m.Called(id, update)
	return called.Get(0).(*model.User), called.Error(1)
}

func (m *mockUserService) Delete(ctx context.Context, id uint) error {
	return m.Called(id).Error(0)
}

type mockTokenService struct{ mock.Mock }

func (m *mockTokenService) GetTokens(user *model.User) (*token.Tokens, error) {
	called := m.Called(user)
	return called.Get(0).(*token.Tokens), called.Error(1)
}
