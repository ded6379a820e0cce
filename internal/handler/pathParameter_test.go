package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/skyportal/skyportal/internal/errdef"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPathParameter(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.AddParam("submissionId", "123")

		id, ok := GetPathParameter(c, "submissionId")

		require.True(t, ok)
		assert.Equal(t, uint(123), id)
		assert.False(t, c.IsAborted())
	})

	invalid := map[string]string{
		"Missing":    "",
		"Negative":   "-1",
		"NotANumber": "ZTF21aaaaaaa",
		"Overflow":   "4294967296",
	}
	for name, value := range invalid {
		t.Run(name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			if value != "" {
				c.AddParam("submissionId", value)
			}

			id, ok := GetPathParameter(c, "submissionId")

			assert.False(t, ok)
			assert.Zero(t, id)
			assert.True(t, c.IsAborted())
			err := c.Errors.Last()
			require.NotNil(t, err)
			assert.True(t, errdef.IsBadRequest(err))
		})
	}
}
