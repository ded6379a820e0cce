package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skyportal/skyportal/internal/errdef"
)

// ErrorHandler writes the last error of the gin error chain as response. Errors from package
// errdef are mapped onto their status code, any other error results in an internal server error
// which only exposes the correlation id.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		err := c.Errors.Last()
		if err == nil {
			return
		}
		if c.Writer.Written() {
			return
		}
		if c.Writer.Status() != http.StatusOK {
			c.String(c.Writer.Status(), "%s", err.Error())
			return
		}

		status := errdef.Status(err)
		if status == http.StatusInternalServerError {
			id, _ := GetCorrelationID(c.Request.Context())
			c.String(status, "something went wrong. We'll look into it if you send us the id %q :)", id)
			return
		}
		c.String(status, "%s", err.Error())
	}
}
