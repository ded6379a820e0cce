package handler

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/skyportal/skyportal/internal/errdef"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// DataBinder binds the JSON body of the request into req. Failed validations are reported per
// field using the JSON field name.
func DataBinder(c *gin.Context, req any) error {
	if c.ContentType() != binding.MIMEJSON {
		return errdef.NewUnsupportedMediaType("%s only accepts content of type %s", c.FullPath(), binding.MIMEJSON)
	}

	err := c.ShouldBindJSON(req)
	if err == nil {
		return nil
	}

	if errors.Is(err, io.EOF) {
		return errdef.NewBadRequest("request body is empty")
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make([]string, len(validationErrors))
		for i, fieldError := range validationErrors {
			fields[i] = fmt.Sprintf("%s failed on %q", fieldError.Field(), fieldError.Tag())
		}
		return errdef.NewBadRequest("invalid request: %s", strings.Join(fields, ", "))
	}

	return errdef.NewBadRequest("error binding data: %v", err)
}
