package event

import (
	"bufio"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skyportal/skyportal/internal/middleware"
	"github.com/skyportal/skyportal/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Stream(t *testing.T) {
	gin.SetMode(gin.TestMode)
	broker := NewBroker()
	engine := gin.New()
	authenticator := func(c *gin.Context) {
		c.Request = c.Request.WithContext(model.NewContextWithUser(c.Request.Context(), &model.User{ID: 1}))
	}
	Routes(engine, authenticator, NewHandler(slog.Default(), broker))
	server := httptest.NewServer(engine)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/sharing_service/submission/events", nil)
	require.NoError(t, err)

	response, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer response.Body.Close()
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "text/event-stream", response.Header.Get("Content-Type"))

	require.Eventually(t, func() bool {
		return len(broker.Subscribers()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	broker.Send(2, Event{Type: "submission", Data: "other user"})
	broker.Send(1, Event{Type: "submission", Data: map[string]any{"id": 1, "tnsStatus": "submitted"}})

	reader := bufio.NewReader(response.Body)
	eventLine, err := reader.ReadString('\n')
	require.NoError(t, err)
	dataLine, err := reader.ReadString('\n')
	require.NoError(t, err)

	assert.Equal(t, "event:submission\n", eventLine)
	assert.JSONEq(t, `{"id":1,"tnsStatus":"submitted"}`, dataLine[len("data:"):])

	cancel()
	require.Eventually(t, func() bool {
		return len(broker.Subscribers()) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_StreamWithoutUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	broker := NewBroker()
	engine := gin.New()
	engine.Use(middleware.ErrorHandler())
	Routes(engine, func(c *gin.Context) {}, NewHandler(slog.Default(), broker))
	w := httptest.NewRecorder()

	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sharing_service/submission/events", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, broker.Subscribers())
}
