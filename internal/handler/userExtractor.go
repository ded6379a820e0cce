package handler

import (
	"context"
	"errors"

	"github.com/skyportal/skyportal/pkg/model"
)

// GetUserFromContext returns the authenticated user. It has to have been stored by the
// authentication middleware.
func GetUserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := model.GetUserFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found on context")
	}
	return user, nil
}
