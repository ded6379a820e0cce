package errdef_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/skyportal/skyportal/internal/errdef"

	"github.com/stretchr/testify/assert"
)

func TestIsForbidden(t *testing.T) {
	assert.False(t, errdef.IsForbidden(errors.New("some error")))
	assert.True(t, errdef.IsForbidden(errdef.NewForbidden("some error")))
}

func TestIsBadRequest(t *testing.T) {
	assert.False(t, errdef.IsBadRequest(errors.New("some error")))
	assert.True(t, errdef.IsBadRequest(errdef.NewBadRequest("some error")))
}

func TestIsDuplicate(t *testing.T) {
	assert.False(t, errdef.IsDuplicated(errors.New("some error")))
	assert.True(t, errdef.IsDuplicated(errdef.NewDuplicated("some error")))
}

func TestIsUnauthorized(t *testing.T) {
	assert.False(t, errdef.IsUnauthorized(errors.New("some error")))
	assert.True(t, errdef.IsUnauthorized(errdef.NewUnauthorized("some error")))
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, errdef.IsNotFound(errors.New("some error")))
	assert.True(t, errdef.IsNotFound(errdef.NewNotFound("some error")))
}

func TestIsConflict(t *testing.T) {
	assert.False(t, errdef.IsConflict(errors.New("some error")))
	assert.True(t, errdef.IsConflict(errdef.NewConflict("some error")))
}

func TestIsUnsupportedMediaType(t *testing.T) {
	assert.False(t, errdef.IsUnsupportedMediaType(errors.New("some error")))
	assert.True(t, errdef.IsUnsupportedMediaType(errdef.NewUnsupportedMediaType("some error")))
}

func TestWrappedErrorsKeepTheirKind(t *testing.T) {
	err := fmt.Errorf("loading sharing service: %w", errdef.NewNotFound("sharing service %d not found", 1))

	assert.True(t, errdef.IsNotFound(err))
	assert.False(t, errdef.IsBadRequest(err))
	assert.Equal(t, "loading sharing service: sharing service 1 not found", err.Error())
}

func TestStatus(t *testing.T) {
	tests := map[string]struct {
		err    error
		status int
	}{
		"BadRequest":           {errdef.NewBadRequest("bad"), http.StatusBadRequest},
		"Unauthorized":         {errdef.NewUnauthorized("who"), http.StatusUnauthorized},
		"Forbidden":            {errdef.NewForbidden("no"), http.StatusForbidden},
		"NotFound":             {errdef.NewNotFound("gone"), http.StatusNotFound},
		"Duplicated":           {errdef.NewDuplicated("twice"), http.StatusConflict},
		"Conflict":             {errdef.NewConflict("pending"), http.StatusConflict},
		"UnsupportedMediaType": {errdef.NewUnsupportedMediaType("xml"), http.StatusUnsupportedMediaType},
		"Wrapped":              {fmt.Errorf("outer: %w", errdef.NewForbidden("no")), http.StatusForbidden},
		"Joined":               {errors.Join(errors.New("tns down"), errdef.NewBadRequest("no photometry")), http.StatusBadRequest},
		"Other":                {errors.New("boom"), http.StatusInternalServerError},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.status, errdef.Status(test.err))
		})
	}
}
