package photometry

import (
	"context"
	"fmt"

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

func (r repository) create(ctx context.Context, photometry *model.Photometry) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	err := r.db.WithContext(ctx).Omit("Obj", "Instrument").Create(photometry).Error
	if err != nil {
		return fmt.Errorf("failed to create photometry: %v", err)
	}
	return nil
}

// findByObj returns all photometry of the obj ordered by mjd.
func (r repository) findByObj(ctx context.Context, objID string) ([]model.Photometry, error) {
	var photometry []model.Photometry
	err := r.db.
		WithContext(ctx).
		Preload("Instrument").
		Preload("Groups").
		Preload("Streams").
		Where("obj_id = ?", objID).
		Order("mjd, id").
		Find(&photometry).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find photometry of %q: %v", objID, err)
	}
	return photometry, nil
}
