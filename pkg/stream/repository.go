package stream

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
	return &repository{db: db}
}

type repository struct {
	db *gorm.DB
}

func (r repository) create(ctx context.Context, stream *model.Stream) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	err := r.db.WithContext(ctx).Create(stream).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errdef.NewDuplicated("stream %q already exists", stream.Name)
	}

	return err
}

func (r repository) find(ctx context.Context, id uint) (*model.Stream, error) {
	var stream *model.Stream
	err := r.db.WithContext(ctx).First(&stream, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("stream %d doesn't exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find stream: %v", err)
	}

	return stream, nil
}

func (r repository) findAll(ctx context.Context) ([]model.Stream, error) {
	var streams []model.Stream
	err := r.db.WithContext(ctx).Order("id").Find(&streams).Error
	return streams, err
}

func (r repository) findByIds(ctx context.Context, ids []uint) ([]model.Stream, error) {
	var streams []model.Stream
	err := r.db.
		WithContext(ctx).
		Where("id IN ?", ids).
		Order("id").
		Find(&streams).Error
	return streams, err
}

func (r repository) addUser(ctx context.Context, stream *model.Stream, user *model.User) error {
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Model(stream).Association("Users").Append([]*model.User{user})
}

func (r repository) removeUser(ctx context.Context, stream *model.Stream, user *model.User) error {
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Model(stream).Association("Users").Delete([]*model.User{user})
}
