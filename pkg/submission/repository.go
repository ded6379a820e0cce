package submission

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

// createUnlessPending stores the submission unless check rejects the submissions of the same obj
// through the same sharing service which are still pending. Concurrent calls for the same obj and
// sharing service are serialized by a transaction level advisory lock.
func (r repository) createUnlessPending(ctx context.Context, submission *model.SharingServiceSubmission, check func(pending []model.SharingServiceSubmission) error) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to transactions being rolled back. we likely want to rollback a
	// transaction only if a user request is cancelled and not because a client disconnected.
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec("SELECT pg_advisory_xact_lock(?, hashtext(?))", int32(submission.SharingServiceID), submission.ObjID).Error
		if err != nil {
			return fmt.Errorf("failed to lock submissions of %s: %v", submission.ObjID, err)
		}

		pending, err := findPending(tx, submission.SharingServiceID, submission.ObjID)
		if err != nil {
			return err
		}
		if err := check(pending); err != nil {
			return err
		}

		return tx.Omit("SharingService", "User").Create(submission).Error
	})
}

func (r repository) find(ctx context.Context, id uint) (*model.SharingServiceSubmission, error) {
	var submission *model.SharingServiceSubmission
	err := r.db.
		WithContext(ctx).
		Preload("User").
		First(&submission, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errdef.NewNotFound("submission %d doesn't exist", id)
		}
		return nil, err
	}

	return submission, nil
}

// updateResult stores the statuses, payloads and responses of the submission.
func (r repository) updateResult(ctx context.Context, submission *model.SharingServiceSubmission) error {
	ctx = context.WithoutCancel(ctx)

	return r.db.
		WithContext(ctx).
		Model(submission).
		Select("TNSStatus", "HermesStatus", "TNSSubmissionID", "TNSPayload", "TNSResponse", "HermesPayload", "HermesResponse").
		Updates(submission).Error
}

// findPending returns the submissions of obj through the sharing service with a pending target.
func findPending(db *gorm.DB, sharingServiceID uint, objID string) ([]model.SharingServiceSubmission, error) {
	pending := []string{model.SubmissionStatusPending, model.SubmissionStatusProcessing}

	var submissions []model.SharingServiceSubmission
	err := db.
		Where("sharing_service_id = ? AND obj_id = ?", sharingServiceID, objID).
		Where(db.Session(&gorm.Session{NewDB: true}).Where("publish_to_tns AND tns_status IN ?", pending).Or("publish_to_hermes AND hermes_status IN ?", pending)).
		Order("id").
		Find(&submissions).Error

	return submissions, err
}

// failPending sets status on the targets of the submission which are still pending. Targets which
// have been published keep their status.
func (r repository) failPending(ctx context.Context, id uint, status string) error {
	ctx = context.WithoutCancel(ctx)

	pending := []string{model.SubmissionStatusPending, model.SubmissionStatusProcessing}
	return r.db.
		WithContext(ctx).
		Model(&model.SharingServiceSubmission{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"tns_status":    gorm.Expr("CASE WHEN publish_to_tns AND tns_status IN ? THEN ? ELSE tns_status END", pending, status),
			"hermes_status": gorm.Expr("CASE WHEN publish_to_hermes AND hermes_status IN ? THEN ? ELSE hermes_status END", pending, status),
		}).Error
}

// findAll returns a page of the submissions of the sharing service, newest first, and the total
// number of matching submissions. An empty objID doesn't filter by obj.
func (r repository) findAll(ctx context.Context, sharingServiceID uint, objID string, offset, limit int) ([]model.SharingServiceSubmission, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Where("sharing_service_id = ?", sharingServiceID)
		if objID != "" {
			db = db.Where("obj_id = ?", objID)
		}
		return db
	}

	var total int64
	err := r.db.
		WithContext(ctx).
		Model(&model.SharingServiceSubmission{}).
		Scopes(filter).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var submissions []model.SharingServiceSubmission
	err = r.db.
		WithContext(ctx).
		Scopes(filter).
		Preload("User").
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&submissions).Error

	return submissions, total, err
}
