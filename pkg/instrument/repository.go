package instrument

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

func (r repository) create(ctx context.Context, instrument *model.Instrument) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	err := r.db.WithContext(ctx).Create(instrument).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errdef.NewDuplicated("instrument %q already exists", instrument.Name)
	}

	return err
}

func (r repository) find(ctx context.Context, id uint) (*model.Instrument, error) {
	var instrument *model.Instrument
	err := r.db.WithContext(ctx).First(&instrument, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("instrument %d doesn't exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find instrument: %v", err)
	}

	return instrument, nil
}

func (r repository) findAll(ctx context.Context) ([]model.Instrument, error) {
	var instruments []model.Instrument
	err := r.db.WithContext(ctx).Order("id").Find(&instruments).Error
	return instruments, err
}

func (r repository) findByIds(ctx context.Context, ids []uint) ([]model.Instrument, error) {
	var instruments []model.Instrument
	err := r.db.
		WithContext(ctx).
		Where("id IN ?", ids).
		Order("id").
		Find(&instruments).Error
	return instruments, err
}
