package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/skyportal/skyportal/pkg/model"
	"github.com/stretchr/testify/assert"
)

func TestRequireAdministrator(t *testing.T) {
	gin.SetMode(gin.TestMode)
	authorization := NewAuthorization(slog.Default())

	tests := map[string]struct {
		user     *model.User
		expected int
	}{
		"Administrator": {
			user:     &model.User{ID: 1, Groups: []model.Group{{ID: 1, Name: model.AdministratorGroupName}}},
			expected: http.StatusOK,
		},
		"Member": {
			user:     &model.User{ID: 2, Groups: []model.Group{{ID: 2, Name: "ZTF"}}},
			expected: http.StatusForbidden,
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			r := gin.New()
			r.Use(ErrorHandler())
			r.GET("/users", func(c *gin.Context) {
				setUser(c, test.user)
			}, authorization.RequireAdministrator, func(c *gin.Context) {
				c.Status(http.StatusOK)
			})
			w := httptest.NewRecorder()

			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))

			assert.Equal(t, test.expected, w.Code)
		})
	}
}
