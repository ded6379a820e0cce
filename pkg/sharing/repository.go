package sharing

import (
	"context"
	"errors"
	"fmt"

	"github.com/gosimple/slug"
	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/pkg/model"
	"golang.org/x/exp/slices"
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

func (r repository) create(ctx context.Context, service *model.SharingService) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	service.Slug = slug.Make(service.Name)

	err := r.db.WithContext(ctx).Create(service).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errdef.NewDuplicated("sharing service %q already exists", service.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to create sharing service: %v", err)
	}

	return nil
}

func (r repository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.
		WithContext(ctx).
		Preload("Instruments", func(db *gorm.DB) *gorm.DB {
			return db.Order("instruments.id")
		}).
		Preload("Streams", func(db *gorm.DB) *gorm.DB {
			return db.Order("streams.id")
		}).
		Preload("Groups", func(db *gorm.DB) *gorm.DB {
			return db.Order("sharing_service_groups.group_id")
		}).
		Preload("Groups.Group").
		Preload("Groups.AutoPublishers").
		Preload("Coauthors")
}

func (r repository) find(ctx context.Context, id uint) (*model.SharingService, error) {
	var service *model.SharingService
	err := r.preloaded(ctx).First(&service, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("sharing service %d doesn't exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find sharing service %d: %v", id, err)
	}

	return service, nil
}

func (r repository) findAll(ctx context.Context) ([]model.SharingService, error) {
	var services []model.SharingService
	err := r.preloaded(ctx).Order("id").Find(&services).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find sharing services: %v", err)
	}

	return services, nil
}

type sharingServiceUpdate struct {
	columns     []string
	instruments []model.Instrument
	streams     []model.Stream
}

func (r repository) update(ctx context.Context, service *model.SharingService, update sharingServiceUpdate) error {
	ctx = context.WithoutCancel(ctx)

	if slices.Contains(update.columns, "Name") {
		service.Slug = slug.Make(service.Name)
		update.columns = append(update.columns, "Slug")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(update.columns) > 0 {
			err := tx.Model(service).Select(update.columns).Updates(service).Error
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errdef.NewDuplicated("sharing service %q already exists", service.Name)
			}
			if err != nil {
				return err
			}
		}

		if update.instruments != nil {
			if err := tx.Model(service).Association("Instruments").Replace(update.instruments); err != nil {
				return err
			}
		}

		if update.streams != nil {
			if err := tx.Model(service).Association("Streams").Replace(update.streams); err != nil {
				return err
			}
		}

		return nil
	})
	if errdef.IsDuplicated(err) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to update sharing service %d: %v", service.ID, err)
	}

	return nil
}

func (r repository) delete(ctx context.Context, id uint) error {
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		service := &model.SharingService{ID: id}
		err := tx.Where("sharing_service_group_id IN (?)",
			tx.Model(&model.SharingServiceGroup{}).Select("id").Where("sharing_service_id = ?", id),
		).Delete(&sharingServiceGroupAutoPublisher{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete auto publishers of sharing service %d: %v", id, err)
		}

		if err := tx.Where("sharing_service_id = ?", id).Delete(&model.SharingServiceGroup{}).Error; err != nil {
			return fmt.Errorf("failed to delete groups of sharing service %d: %v", id, err)
		}

		err = tx.Select("Instruments", "Streams", "Coauthors").Delete(service).Error
		if err != nil {
			return fmt.Errorf("failed to delete sharing service %d: %v", id, err)
		}

		return nil
	})
}

// sharingServiceGroupAutoPublisher maps the auto publishers join table for bulk deletes.
type sharingServiceGroupAutoPublisher struct {
	SharingServiceGroupID uint
	UserID                uint
}

func (sharingServiceGroupAutoPublisher) TableName() string {
	return "sharing_service_group_auto_publishers"
}

func (r repository) createGroup(ctx context.Context, group *model.SharingServiceGroup) error {
	ctx = context.WithoutCancel(ctx)

	err := r.db.WithContext(ctx).Omit("Group", "AutoPublishers").Create(group).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errdef.NewDuplicated("group %d is already part of sharing service %d", group.GroupID, group.SharingServiceID)
	}

	return err
}

// updateGroup stores the flags of the group. Ownership can't be taken from the last owner group.
func (r repository) updateGroup(ctx context.Context, group *model.SharingServiceGroup) error {
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !group.Owner {
			if err := requireOtherOwner(tx, group); err != nil {
				return err
			}
		}

		return tx.
			Model(group).
			Select("Owner", "AutoShareToTNS", "AutoShareToHermes", "AutoSharingAllowBots").
			Updates(group).Error
	})
}

func (r repository) deleteGroup(ctx context.Context, group *model.SharingServiceGroup) error {
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireOtherOwner(tx, group); err != nil {
			return err
		}

		return tx.Select("AutoPublishers").Delete(group).Error
	})
}

// requireOtherOwner locks the sharing service of group until the transaction ends and fails unless
// another group owns it.
func requireOtherOwner(tx *gorm.DB, group *model.SharingServiceGroup) error {
	var service model.SharingService
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&service, group.SharingServiceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errdef.NewNotFound("sharing service %d doesn't exist", group.SharingServiceID)
	}
	if err != nil {
		return fmt.Errorf("failed to lock sharing service %d: %v", group.SharingServiceID, err)
	}

	var owners int64
	err = tx.
		Model(&model.SharingServiceGroup{}).
		Where("sharing_service_id = ? AND owner AND id <> ?", group.SharingServiceID, group.ID).
		Count(&owners).Error
	if err != nil {
		return err
	}
	if owners == 0 {
		return errdef.NewBadRequest("sharing service %d must have at least one owner group", group.SharingServiceID)
	}

	return nil
}

func (r repository) addAutoPublishers(ctx context.Context, group *model.SharingServiceGroup, users []*model.User) error {
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Model(group).Association("AutoPublishers").Append(users)
}

func (r repository) removeAutoPublisher(ctx context.Context, group *model.SharingServiceGroup, user *model.User) error {
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Model(group).Association("AutoPublishers").Delete(user)
}

func (r repository) addCoauthor(ctx context.Context, service *model.SharingService, user *model.User) error {
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Model(service).Association("Coauthors").Append(user)
}

func (r repository) removeCoauthor(ctx context.Context, service *model.SharingService, user *model.User) error {
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Model(service).Association("Coauthors").Delete(user)
}

// findAutoSharingGroups returns the sharing service groups of given groups which share
// automatically to any target.
func (r repository) findAutoSharingGroups(ctx context.Context, groupIDs []uint) ([]model.SharingServiceGroup, error) {
	var groups []model.SharingServiceGroup
	err := r.db.
		WithContext(ctx).
		Preload("AutoPublishers").
		Where("group_id IN ?", groupIDs).
		Where("auto_share_to_tns OR auto_share_to_hermes").
		Order("sharing_service_id, group_id").
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find auto sharing groups: %v", err)
	}

	return groups, nil
}
