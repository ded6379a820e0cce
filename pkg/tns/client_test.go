package tns

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SubmitReport(t *testing.T) {
	t.Run("Sandbox", func(t *testing.T) {
		var sandboxCalls int
		production := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("testing bots must not report to production")
		}))
		defer production.Close()
		sandbox := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sandboxCalls++
			assert.Equal(t, "/api/bulk-report", r.URL.Path)
			assert.Equal(t, `tns_marker{"tns_id":42,"type":"bot","name":"skyportal_bot"}`, r.Header.Get("User-Agent"))
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "secret", r.PostForm.Get("api_key"))

			var report Report
			require.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("data")), &report))
			assert.Equal(t, "ZTF21aaaaaaa", report.ATReport["0"].InternalName)

			_, _ = io.WriteString(w, `{"id_code":200,"id_message":"OK","data":{"report_id":1234}}`)
		}))
		defer sandbox.Close()

		client := NewClient(slog.Default(), production.URL, sandbox.URL)
		bot := Bot{ID: 42, Name: "skyportal_bot", APIKey: "secret", Testing: true}
		report := &Report{ATReport: map[string]ATReport{"0": {InternalName: "ZTF21aaaaaaa"}}}

		response, body, err := client.SubmitReport(context.Background(), bot, report)
		require.NoError(t, err)

		assert.Equal(t, 1, sandboxCalls)
		assert.Equal(t, 1234, response.Data.ReportID)
		assert.JSONEq(t, `{"id_code":200,"id_message":"OK","data":{"report_id":1234}}`, string(body))
	})

	t.Run("Rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"id_code":400,"id_message":"Bad request"}`)
		}))
		defer server.Close()

		client := NewClient(slog.Default(), server.URL, server.URL)

		_, body, err := client.SubmitReport(context.Background(), Bot{ID: 1}, &Report{})

		require.ErrorContains(t, err, "TNS responded with 400")
		assert.Contains(t, string(body), "Bad request")
	})

	t.Run("NoReportID", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"id_code":200,"id_message":"nothing reported","data":{}}`)
		}))
		defer server.Close()

		client := NewClient(slog.Default(), server.URL, server.URL)

		_, _, err := client.SubmitReport(context.Background(), Bot{ID: 1}, &Report{})

		require.EqualError(t, err, "TNS didn't return a report id: nothing reported")
	})
}
