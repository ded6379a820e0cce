package group

import (
	"context"
	"errors"
	"fmt"

	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/pkg/model"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{
		db: db,
	}
}

func (r repository) find(ctx context.Context, id uint) (*model.Group, error) {
	var group *model.Group
	err := r.db.
		WithContext(ctx).
		First(&group, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("group %d doesn't exist", id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find group: %v", err)
	}

	return group, nil
}

func (r repository) findWithDetails(ctx context.Context, id uint) (*model.Group, error) {
	var group *model.Group
	err := r.db.
		WithContext(ctx).
		Preload("Users").
		Preload("AdminUsers").
		First(&group, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("group %d doesn't exist", id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find group with details: %v", err)
	}

	return group, nil
}

func (r repository) findAll(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.
		WithContext(ctx).
		Order("name").
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find groups: %v", err)
	}

	return groups, nil
}

func (r repository) findByIds(ctx context.Context, ids []uint) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.
		WithContext(ctx).
		Where("id IN ?", ids).
		Order("id").
		Find(&groups).Error
	return groups, err
}

func (r repository) create(ctx context.Context, group *model.Group) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	err := r.db.WithContext(ctx).Create(&group).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errdef.NewDuplicated("group %q already exists", group.Name)
	}

	return err
}

func (r repository) findOrCreate(ctx context.Context, name string) (*model.Group, error) {
	ctx = context.WithoutCancel(ctx)

	var g *model.Group
	err := r.db.
		WithContext(ctx).
		Where(model.Group{Name: name}).
		FirstOrCreate(&g).Error
	return g, err
}

func (r repository) addUser(ctx context.Context, group *model.Group, user *model.User) error {
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Model(&group).Association("Users").Append([]*model.User{user})
}

func (r repository) addAdminUser(ctx context.Context, group *model.Group, user *model.User) error {
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Model(&group).Association("AdminUsers").Append([]*model.User{user})
}

func (r repository) removeUser(ctx context.Context, group *model.Group, user *model.User) error {
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&group).Association("Users").Delete([]*model.User{user}); err != nil {
			return err
		}
		return tx.Model(&group).Association("AdminUsers").Delete([]*model.User{user})
	})
}
