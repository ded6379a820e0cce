// Package submission publishes objects to TNS and Hermes through sharing services. Submissions are
// stored as pending and processed asynchronously by a queue consumer.
package submission

import (
	"context"
	"errors"
	"fmt"

	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/internal/parse"
	"github.com/skyportal/skyportal/pkg/dataaccess"
	"github.com/skyportal/skyportal/pkg/event"
	"github.com/skyportal/skyportal/pkg/model"
	"github.com/skyportal/skyportal/pkg/sharing"
	"gorm.io/datatypes"
)

// EventType of the events sent whenever a submission changes.
const EventType = "submission"

//goland:noinspection GoExportedFuncWithUnexportedType
func NewService(
	repository *repository,
	sharingService sharingService,
	dataAccess dataAccess,
	queue queue,
	events eventSender,
) *service {
	return &service{
		repository:     repository,
		sharingService: sharingService,
		dataAccess:     dataAccess,
		queue:          queue,
		events:         events,
	}
}

type sharingService interface {
	Find(ctx context.Context, user *model.User, id uint) (*model.SharingService, error)
	FindByID(ctx context.Context, id uint) (*model.SharingService, error)
	APIKey(service *model.SharingService) (string, error)
	AutoSharingGroups(ctx context.Context, groupIDs []uint) ([]sharing.AutoSharingGroup, error)
}

type dataAccess interface {
	PublishableObjPhotometry(ctx context.Context, user *model.User, service *model.SharingService, request dataaccess.PublishRequest) (*dataaccess.Publishable, error)
}

type queue interface {
	Enqueue(ctx context.Context, submissionID uint) error
}

type eventSender interface {
	Send(userID uint, event event.Event) int
}

type service struct {
	repository     *repository
	sharingService sharingService
	dataAccess     dataAccess
	queue          queue
	events         eventSender
}

// Request to publish an obj. Nil targets default to the targets enabled on the sharing service.
type Request struct {
	ObjID                  string
	InstrumentIDs          any
	StreamIDs              any
	PhotometryOptions      map[string]any
	CustomPublishingString string
	Archival               bool
	ArchivalComment        string
	PublishToTNS           *bool
	PublishToHermes        *bool
}

// Submit validates the request and queues a submission of the obj through the sharing service.
func (s service) Submit(ctx context.Context, user *model.User, sharingServiceID uint, request Request) (*model.SharingServiceSubmission, error) {
	service, err := s.sharingService.Find(ctx, user, sharingServiceID)
	if err != nil {
		return nil, err
	}

	return s.submit(ctx, user, service, request, false)
}

func (s service) submit(ctx context.Context, user *model.User, service *model.SharingService, request Request, autoSubmission bool) (*model.SharingServiceSubmission, error) {
	publishToTNS, publishToHermes, err := targets(service, request)
	if err != nil {
		return nil, err
	}

	publishable, err := s.dataAccess.PublishableObjPhotometry(ctx, user, service, dataaccess.PublishRequest{
		ObjID:             request.ObjID,
		InstrumentIDs:     request.InstrumentIDs,
		StreamIDs:         request.StreamIDs,
		PhotometryOptions: request.PhotometryOptions,
		Archival:          request.Archival,
		ArchivalComment:   request.ArchivalComment,
		AutoSubmission:    autoSubmission,
	})
	if err != nil {
		return nil, err
	}

	submission := &model.SharingServiceSubmission{
		SharingServiceID:       service.ID,
		ObjID:                  publishable.Obj.ID,
		UserID:                 user.ID,
		InstrumentIDs:          toInt64Array(publishable.InstrumentIDs),
		StreamIDs:              toInt64Array(publishable.StreamIDs),
		PhotometryOptions:      datatypes.NewJSONType(publishable.Options),
		CustomPublishingString: request.CustomPublishingString,
		Archival:               request.Archival,
		ArchivalComment:        request.ArchivalComment,
		AutoSubmission:         autoSubmission,
		PublishToTNS:           publishToTNS,
		PublishToHermes:        publishToHermes,
	}
	if publishToTNS {
		submission.TNSStatus = model.SubmissionStatusPending
	}
	if publishToHermes {
		submission.HermesStatus = model.SubmissionStatusPending
	}

	err = s.repository.createUnlessPending(ctx, submission, func(pending []model.SharingServiceSubmission) error {
		return checkDuplicate(service, submission, pending)
	})
	if err != nil {
		return nil, err
	}

	if err := s.queue.Enqueue(ctx, submission.ID); err != nil {
		failed := fmt.Errorf("failed to queue submission: %v", err)
		setTargetsStatus(submission, model.SubmissionErrorStatus(failed))
		if updateErr := s.repository.updateResult(ctx, submission); updateErr != nil {
			return nil, errors.Join(failed, updateErr)
		}
		return nil, failed
	}

	s.events.Send(user.ID, event.Event{Type: EventType, Data: *submission})

	return submission, nil
}

// targets resolves the targets to publish to. Targets which aren't enabled on the sharing service
// can't be requested.
func targets(service *model.SharingService, request Request) (bool, bool, error) {
	publishToTNS := service.EnableSharingWithTNS
	if request.PublishToTNS != nil {
		if *request.PublishToTNS && !service.EnableSharingWithTNS {
			return false, false, errdef.NewBadRequest("sharing service %s doesn't allow publishing to TNS", service.Name)
		}
		publishToTNS = *request.PublishToTNS
	}

	publishToHermes := service.EnableSharingWithHermes
	if request.PublishToHermes != nil {
		if *request.PublishToHermes && !service.EnableSharingWithHermes {
			return false, false, errdef.NewBadRequest("sharing service %s doesn't allow publishing to Hermes", service.Name)
		}
		publishToHermes = *request.PublishToHermes
	}

	if !publishToTNS && !publishToHermes {
		return false, false, errdef.NewBadRequest("no target to publish %s to with sharing service %s", request.ObjID, service.Name)
	}

	return publishToTNS, publishToHermes, nil
}

// checkDuplicate rejects the submission if any of its targets is still pending on another
// submission of the same obj.
func checkDuplicate(service *model.SharingService, submission *model.SharingServiceSubmission, pending []model.SharingServiceSubmission) error {
	for _, p := range pending {
		if submission.PublishToTNS && p.PublishToTNS && isPending(p.TNSStatus) {
			return errdef.NewConflict("a submission of %s to TNS with sharing service %s is already pending", submission.ObjID, service.Name)
		}
		if submission.PublishToHermes && p.PublishToHermes && isPending(p.HermesStatus) {
			return errdef.NewConflict("a submission of %s to Hermes with sharing service %s is already pending", submission.ObjID, service.Name)
		}
	}

	return nil
}

func isPending(status string) bool {
	return status == model.SubmissionStatusPending || status == model.SubmissionStatusProcessing
}

// AutoSubmit submits the obj through every sharing service one of the groups automatically shares
// with, provided the user is one of the group's auto publishers. A sharing service is submitted to
// once even if several of its groups match.
func (s service) AutoSubmit(ctx context.Context, user *model.User, objID string, groupIDs []uint) error {
	groups, err := s.sharingService.AutoSharingGroups(ctx, groupIDs)
	if err != nil {
		return err
	}

	type autoSubmission struct {
		service         *model.SharingService
		publishToTNS    bool
		publishToHermes bool
	}
	var order []uint
	submissions := make(map[uint]*autoSubmission)
	for _, g := range groups {
		if !g.Group.HasAutoPublisher(user.ID) {
			continue
		}
		if user.IsBot && !g.Group.AutoSharingAllowBots {
			continue
		}

		publishToTNS := g.Group.AutoShareToTNS && g.Service.EnableSharingWithTNS
		publishToHermes := g.Group.AutoShareToHermes && g.Service.EnableSharingWithHermes
		if !publishToTNS && !publishToHermes {
			continue
		}

		submission, ok := submissions[g.Service.ID]
		if !ok {
			submission = &autoSubmission{service: g.Service}
			submissions[g.Service.ID] = submission
			order = append(order, g.Service.ID)
		}
		submission.publishToTNS = submission.publishToTNS || publishToTNS
		submission.publishToHermes = submission.publishToHermes || publishToHermes
	}

	var errs []error
	for _, id := range order {
		submission := submissions[id]
		_, err := s.submit(ctx, user, submission.service, Request{
			ObjID:           objID,
			PublishToTNS:    &submission.publishToTNS,
			PublishToHermes: &submission.publishToHermes,
		}, true)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to auto submit %s with sharing service %s: %w", objID, submission.service.Name, err))
		}
	}

	return errors.Join(errs...)
}

// Find returns the submission if the user can read its sharing service.
func (s service) Find(ctx context.Context, user *model.User, id uint) (*model.SharingServiceSubmission, error) {
	submission, err := s.repository.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.sharingService.Find(ctx, user, submission.SharingServiceID); err != nil {
		if errdef.IsNotFound(err) {
			return nil, errdef.NewNotFound("submission %d doesn't exist", id)
		}
		return nil, err
	}

	return submission, nil
}

// Page of submissions.
// swagger:model SubmissionPage
type Page struct {
	Submissions  []model.SharingServiceSubmission `json:"submissions"`
	TotalMatches int64                            `json:"totalMatches"`
	PageNumber   int                              `json:"pageNumber"`
	NumPerPage   int                              `json:"numPerPage"`
}

// List returns a page of the submissions of the sharing service, newest first.
func (s service) List(ctx context.Context, user *model.User, sharingServiceID uint, objID string, pageNumber, numPerPage int) (*Page, error) {
	if _, err := s.sharingService.Find(ctx, user, sharingServiceID); err != nil {
		return nil, err
	}

	submissions, total, err := s.repository.findAll(ctx, sharingServiceID, objID, parse.Offset(pageNumber, numPerPage), numPerPage)
	if err != nil {
		return nil, err
	}

	return &Page{
		Submissions:  submissions,
		TotalMatches: total,
		PageNumber:   pageNumber,
		NumPerPage:   numPerPage,
	}, nil
}

func setTargetsStatus(submission *model.SharingServiceSubmission, status string) {
	if submission.PublishToTNS {
		submission.TNSStatus = status
	}
	if submission.PublishToHermes {
		submission.HermesStatus = status
	}
}

func toInt64Array(ids []uint) []int64 {
	array := make([]int64, len(ids))
	for i, id := range ids {
		array[i] = int64(id)
	}
	return array
}

func toUintSlice(array []int64) []uint {
	ids := make([]uint, len(array))
	for i, id := range array {
		ids[i] = uint(id)
	}
	return ids
}
