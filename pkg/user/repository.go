package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/pkg/model"
	"gorm.io/gorm"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{db}
}

type repository struct {
	db *gorm.DB
}

func (r repository) save(ctx context.Context, user *model.User) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Save(&user).Error
}

func (r repository) create(ctx context.Context, u *model.User) error {
	ctx = context.WithoutCancel(ctx)

	err := r.db.WithContext(ctx).Create(&u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errdef.NewDuplicated("user %q already exists", u.Username)
	}

	return err
}

// withAccess preloads everything the access checks of the other packages depend on.
func (r repository) withAccess(ctx context.Context) *gorm.DB {
	return r.db.
		WithContext(ctx).
		Preload("Groups").
		Preload("AdminGroups").
		Preload("Streams")
}

func (r repository) findAll(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	err := r.withAccess(ctx).
		Order("username").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find all users: %v", err)
	}

	return users, nil
}

func (r repository) findByUsername(ctx context.Context, username string) (*model.User, error) {
	var u *model.User
	err := r.withAccess(ctx).
		Where("username = ?", username).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("failed to find user with username %q", username)
	}
	return u, err
}

func (r repository) findOrCreate(ctx context.Context, user *model.User) (*model.User, error) {
	ctx = context.WithoutCancel(ctx)

	var u *model.User
	err := r.db.
		WithContext(ctx).
		Where(model.User{Username: user.Username}).
		Attrs(model.User{Password: user.Password}).
		FirstOrCreate(&u).Error
	return u, err
}

func (r repository) findById(ctx context.Context, id uint) (*model.User, error) {
	var u *model.User
	err := r.withAccess(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("failed to find user with id %d", id)
	}
	return u, err
}

func (r repository) delete(ctx context.Context, id uint) error {
	ctx = context.WithoutCancel(ctx)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := &model.User{ID: id}
		for _, association := range []string{"Groups", "AdminGroups", "Streams"} {
			if err := tx.Model(user).Association(association).Clear(); err != nil {
				return err
			}
		}

		db := tx.Delete(&model.User{}, id)
		if db.Error != nil {
			return db.Error
		} else if db.RowsAffected < 1 {
			return errdef.NewNotFound("failed to find user with id %d", id)
		}
		return nil
	})
	if err != nil && !errdef.IsNotFound(err) {
		return fmt.Errorf("failed to delete user with id %d: %v", id, err)
	}

	return err
}

func (r repository) update(ctx context.Context, user *model.User) (*model.User, error) {
	ctx = context.WithoutCancel(ctx)

	err := r.db.
		WithContext(ctx).
		Model(user).
		Select("FirstName", "LastName", "Affiliations", "Password").
		Updates(user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %v", err)
	}

	return user, nil
}
