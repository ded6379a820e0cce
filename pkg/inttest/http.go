package inttest

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/skyportal/skyportal/internal/handler"
	"github.com/skyportal/skyportal/internal/middleware"
	"github.com/skyportal/skyportal/internal/server"
	"github.com/stretchr/testify/require"
)

// SetupHTTPServer serves the engine created by server.GetEngine after routes have been registered
// on it using f. The returned client talks to that server.
func SetupHTTPServer(t *testing.T, f func(engine *gin.Engine)) *HTTPClient {
	t.Helper()

	require.NoError(t, handler.RegisterValidation(), "failed to register validation")
	gin.SetMode(gin.TestMode)

	engine := server.GetEngine(slog.Default(), "")
	f(engine)

	srv := httptest.NewServer(engine)
	client := srv.Client()
	t.Cleanup(func() {
		client.CloseIdleConnections()
		srv.Close()
	})

	return &HTTPClient{Client: client, ServerURL: srv.URL}
}

// HTTPClient sends requests to a test server failing the test on any unexpected outcome.
type HTTPClient struct {
	Client    *http.Client
	ServerURL string
}

// RequestOption modifies a request before it is sent.
type RequestOption func(*http.Request)

func WithHeader(key string, value string) RequestOption {
	return func(req *http.Request) {
		req.Header.Add(key, value)
	}
}

func WithBasicAuth(username string, password string) RequestOption {
	return func(req *http.Request) {
		req.SetBasicAuth(username, password)
	}
}

func WithAuthToken(token string) RequestOption {
	return WithHeader("Authorization", "Bearer "+token)
}

// WithCorrelationID sends id so server logs of the request can be found by it.
func WithCorrelationID(id string) RequestOption {
	return WithHeader(middleware.CorrelationIDHeader, id)
}

func (hc *HTTPClient) Get(t *testing.T, path string, options ...RequestOption) []byte {
	t.Helper()
	return hc.Do(t, http.MethodGet, path, nil, http.StatusOK, options...)
}

func (hc *HTTPClient) Post(t *testing.T, path string, requestBody io.Reader, options ...RequestOption) []byte {
	t.Helper()
	return hc.Do(t, http.MethodPost, path, requestBody, http.StatusCreated, options...)
}

func (hc *HTTPClient) Put(t *testing.T, path string, requestBody io.Reader, options ...RequestOption) []byte {
	t.Helper()
	return hc.Do(t, http.MethodPut, path, requestBody, http.StatusOK, options...)
}

func (hc *HTTPClient) Delete(t *testing.T, path string, options ...RequestOption) []byte {
	t.Helper()
	return hc.Do(t, http.MethodDelete, path, nil, http.StatusNoContent, options...)
}

// Do sends a request and returns the whole response body. The test fails if the request can't be
// sent, the body can't be read or the response status isn't expectedStatus. The body is part of the
// failure message so error responses of the API show up in the test output.
func (hc *HTTPClient) Do(t *testing.T, method, path string, requestBody io.Reader, expectedStatus int, options ...RequestOption) []byte {
	t.Helper()

	call := fmt.Sprintf("%s %q", method, path)

	req, err := http.NewRequest(method, hc.ServerURL+path, requestBody)
	require.NoError(t, err, "%s: failed to create request", call)
	for _, option := range options {
		option(req)
	}

	res, err := hc.Client.Do(req)
	require.NoError(t, err, "%s: request failed", call)
	defer func() {
		require.NoError(t, res.Body.Close(), "%s: failed to close response body", call)
	}()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err, "%s: failed to read response body", call)
	require.Equal(t, expectedStatus, res.StatusCode, "%s: unexpected status, body %q", call, body)
	return body
}

// DoJSON is Do with a JSON request body.
func (hc *HTTPClient) DoJSON(t *testing.T, method, path string, requestBody io.Reader, expectedStatus int, options ...RequestOption) []byte {
	t.Helper()
	return hc.Do(t, method, path, requestBody, expectedStatus, append(options, WithHeader("Content-Type", "application/json"))...)
}

// GetJSON unmarshals the body of a successful GET into responseBody.
func (hc *HTTPClient) GetJSON(t *testing.T, path string, responseBody any, options ...RequestOption) {
	t.Helper()
	unmarshal(t, hc.Get(t, path, options...), responseBody)
}

// PostJSON expects 201 and unmarshals the response into responseBody. A nil requestBody is sent
// without content type, as sign in does.
func (hc *HTTPClient) PostJSON(t *testing.T, path string, requestBody io.Reader, responseBody any, options ...RequestOption) {
	t.Helper()

	if requestBody != nil {
		options = append(options, WithHeader("Content-Type", "application/json"))
	}
	unmarshal(t, hc.Post(t, path, requestBody, options...), responseBody)
}

func (hc *HTTPClient) PutJSON(t *testing.T, path string, requestBody io.Reader, responseBody any, options ...RequestOption) {
	t.Helper()
	body := hc.Put(t, path, requestBody, append(options, WithHeader("Content-Type", "application/json"))...)
	unmarshal(t, body, responseBody)
}

func unmarshal(t *testing.T, body []byte, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(body, v), "failed to unmarshal response body %q", body)
}
