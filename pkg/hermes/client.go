package hermes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

func NewClient(logger *slog.Logger, url, token string) *Client {
	client := retryablehttp.NewClient()
	client.Logger = logger
	client.RetryMax = 3
	return &Client{client: client, url: url, token: token}
}

type Client struct {
	client *retryablehttp.Client
	url    string
	token  string
}

// Submit posts the message and returns the raw response body.
func (c *Client) Submit(ctx context.Context, message *Message) ([]byte, error) {
	if c.token == "" {
		return nil, errors.New("no Hermes token configured")
	}

	data, err := json.Marshal(message)
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(c.url, "/")+"/api/v0/submit_message/", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.token)

	response, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to submit message to Hermes: %v", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK && response.StatusCode != http.StatusCreated {
		return body, fmt.Errorf("hermes responded with %d: %s", response.StatusCode, body)
	}

	return body, nil
}
