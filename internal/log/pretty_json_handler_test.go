package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyJSONHandler(t *testing.T) {
	fixedTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newOptions := func(prettyPrint bool) *PrettyJSONHandlerOptions {
		return &PrettyJSONHandlerOptions{
			HandlerOptions: slog.HandlerOptions{
				ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Time(a.Key, fixedTime)
					}
					return a
				},
			},
			PrettyPrint: prettyPrint,
		}
	}

	for _, prettyPrint := range []bool{true, false} {
		var buf bytes.Buffer
		logger := slog.New(NewPrettyJSONHandler(&buf, newOptions(prettyPrint)))

		logger.Info("submission queued", "submission", 42)

		got := buf.String()
		assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")), "want output to end with a newline")
		assert.Equal(t, prettyPrint, bytes.Contains(buf.Bytes(), []byte("\n  ")), "indentation mismatch: %s", got)

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "INFO", record["level"])
		assert.Equal(t, "submission queued", record["msg"])
		assert.Equal(t, "2024-01-01T00:00:00Z", record["time"])
		assert.EqualValues(t, 42, record["submission"])
	}
}

func TestPrettyJSONHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyJSONHandler(&buf, &PrettyJSONHandlerOptions{PrettyPrint: true}))

	logger.With("worker", "submission").WithGroup("tns").Info("sent", "status", 200)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "submission", record["worker"])
	assert.Equal(t, map[string]any{"status": float64(200)}, record["tns"])
}

func TestPrettyJSONHandler_NilOptions(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyJSONHandler(&buf, nil))

	logger.Info("test message")

	assert.NotZero(t, buf.Len())
}
