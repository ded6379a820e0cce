package user

import (
	"context"
	"fmt"

	"github.com/skyportal/skyportal/pkg/model"
)

type groupService interface {
	FindOrCreate(ctx context.Context, name string) (*model.Group, error)
	AddUser(ctx context.Context, groupID uint, userID uint) error
}

type userServiceUtil interface {
	FindOrCreate(ctx context.Context, username, password string) (*model.User, error)
}

// CreateAdminUser ensures the administrators group exists and given user is a member of it.
func CreateAdminUser(ctx context.Context, username, password string, userService userServiceUtil, groupService groupService) error {
	u, err := userService.FindOrCreate(ctx, username, password)
	if err != nil {
		return fmt.Errorf("error creating admin user: %v", err)
	}

	g, err := groupService.FindOrCreate(ctx, model.AdministratorGroupName)
	if err != nil {
		return fmt.Errorf("error creating admin group: %v", err)
	}

	err = groupService.AddUser(ctx, g.ID, u.ID)
	if err != nil {
		return fmt.Errorf("error adding admin user to admin group: %v", err)
	}

	return nil
}
