package tns

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// NewClient returns a client of the TNS bulk report API. Testing services report to sandboxURL.
func NewClient(logger *slog.Logger, url, sandboxURL string) *Client {
	client := retryablehttp.NewClient()
	client.Logger = logger
	client.RetryMax = 3
	client.RetryWaitMin = 2 * time.Second
	client.RetryWaitMax = 30 * time.Second
	return &Client{client: client, url: url, sandboxURL: sandboxURL}
}

type Client struct {
	client     *retryablehttp.Client
	url        string
	sandboxURL string
}

// Bot identifies the TNS bot a report is sent as.
type Bot struct {
	ID      int
	Name    string
	APIKey  string
	Testing bool
}

// Response of the bulk report endpoint.
type Response struct {
	IDCode    int    `json:"id_code"`
	IDMessage string `json:"id_message"`
	Data      struct {
		ReportID int `json:"report_id"`
	} `json:"data"`
}

// SubmitReport posts the report and returns the parsed response together with its raw body.
func (c *Client) SubmitReport(ctx context.Context, bot Bot, report *Report) (*Response, []byte, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return nil, nil, err
	}

	form := url.Values{}
	form.Set("api_key", bot.APIKey)
	form.Set("data", string(data))

	baseURL := c.url
	if bot.Testing {
		baseURL = c.sandboxURL
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(baseURL, "/")+"/api/bulk-report", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent(bot))

	response, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to submit report to TNS: %v", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, nil, err
	}

	if response.StatusCode != http.StatusOK {
		return nil, body, fmt.Errorf("TNS responded with %d: %s", response.StatusCode, body)
	}

	var r Response
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, body, fmt.Errorf("failed to parse TNS response: %v", err)
	}

	if r.Data.ReportID == 0 {
		return &r, body, fmt.Errorf("TNS didn't return a report id: %s", r.IDMessage)
	}

	return &r, body, nil
}

func userAgent(bot Bot) string {
	marker, _ := json.Marshal(struct {
		ID   int    `json:"tns_id"`
		Type string `json:"type"`
		Name string `json:"name"`
	}{bot.ID, "bot", bot.Name})
	return "tns_marker" + string(marker)
}
