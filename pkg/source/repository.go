package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/pkg/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{db: db}
}

type repository struct {
	db *gorm.DB
}

// save creates the obj unless it exists and saves it to the groups of given sources. Sources which
// already exist are left untouched.
func (r repository) save(ctx context.Context, obj *model.Obj, sources []model.Source) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where(model.Obj{ID: obj.ID}).
			Attrs(model.Obj{RA: obj.RA, Dec: obj.Dec, Redshift: obj.Redshift}).
			FirstOrCreate(obj).Error
		if err != nil {
			return fmt.Errorf("failed to create obj %q: %v", obj.ID, err)
		}

		err = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&sources).Error
		if err != nil {
			return fmt.Errorf("failed to save obj %q to groups: %v", obj.ID, err)
		}

		return nil
	})
}

func (r repository) find(ctx context.Context, id string) (*model.Obj, error) {
	var obj *model.Obj
	err := r.db.
		WithContext(ctx).
		Preload("Sources", func(db *gorm.DB) *gorm.DB {
			return db.Order("saved_at")
		}).
		Preload("Sources.Group").
		First(&obj, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("source %q doesn't exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find source %q: %v", id, err)
	}

	return obj, nil
}
