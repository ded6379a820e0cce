package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/skyportal/skyportal/internal/log"
	"github.com/skyportal/skyportal/pkg/dataaccess"
	"github.com/skyportal/skyportal/pkg/event"
	"github.com/skyportal/skyportal/pkg/hermes"
	"github.com/skyportal/skyportal/pkg/model"
	"github.com/skyportal/skyportal/pkg/tns"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// RateLimitedError is returned by [Processor.Process] when TNS can't be called right now. The
// submission should be processed again after RetryAfter.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("TNS rate limit exceeded, retry after %s", e.RetryAfter)
}

type limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

type tnsClient interface {
	SubmitReport(ctx context.Context, bot tns.Bot, report *tns.Report) (*tns.Response, []byte, error)
}

type hermesClient interface {
	Submit(ctx context.Context, message *hermes.Message) ([]byte, error)
}

type userService interface {
	FindById(ctx context.Context, id uint) (*model.User, error)
}

type archive interface {
	Upload(ctx context.Context, bucket string, key string, contentType string, body []byte) error
}

type notifier interface {
	Notify(ctx context.Context, user *model.User, service *model.SharingService, submission *model.SharingServiceSubmission) error
}

// Publishers groups the clients and settings used to publish to TNS and Hermes.
type Publishers struct {
	TNS                tnsClient
	TNSMapping         *tns.Mapping
	TNSLimiter         limiter
	Hermes             hermesClient
	DetectionThreshold float64
}

func NewProcessor(
	logger *slog.Logger,
	repository *repository,
	sharingService sharingService,
	userService userService,
	dataAccess dataAccess,
	publishers Publishers,
	archive archive,
	bucket string,
	notifier notifier,
	events eventSender,
) *Processor {
	return &Processor{
		logger:         logger,
		repository:     repository,
		sharingService: sharingService,
		userService:    userService,
		dataAccess:     dataAccess,
		publishers:     publishers,
		archive:        archive,
		bucket:         bucket,
		notifier:       notifier,
		events:         events,
	}
}

// Processor publishes queued submissions.
type Processor struct {
	logger         *slog.Logger
	repository     *repository
	sharingService sharingService
	userService    userService
	dataAccess     dataAccess
	publishers     Publishers
	// archive is optional, submissions are only archived if a bucket is set
	archive archive
	bucket  string
	// notifier is optional
	notifier notifier
	events   eventSender
}

// Process publishes the pending targets of the submission. Publishing failures are recorded as
// error status of the target and aren't returned.
func (p Processor) Process(ctx context.Context, id uint) error {
	ctx = log.NewContextWithSubmission(ctx, id)

	submission, err := p.repository.find(ctx, id)
	if err != nil {
		return err
	}

	publishToTNS := submission.PublishToTNS && isPending(submission.TNSStatus)
	publishToHermes := submission.PublishToHermes && isPending(submission.HermesStatus)
	if !publishToTNS && !publishToHermes {
		p.logger.InfoContext(ctx, "Submission already processed")
		return nil
	}

	service, err := p.sharingService.FindByID(ctx, submission.SharingServiceID)
	if err != nil {
		return err
	}

	if publishToTNS {
		allowed, retryAfter, err := p.publishers.TNSLimiter.Allow(ctx, fmt.Sprintf("tns:%d", service.BotID))
		if err != nil {
			p.logger.ErrorContext(ctx, "Failed to check TNS rate limit", "error", err)
			return &RateLimitedError{RetryAfter: retryAfter}
		}
		if !allowed {
			return &RateLimitedError{RetryAfter: retryAfter}
		}
	}

	if publishToTNS {
		submission.TNSStatus = model.SubmissionStatusProcessing
	}
	if publishToHermes {
		submission.HermesStatus = model.SubmissionStatusProcessing
	}
	if err := p.repository.updateResult(ctx, submission); err != nil {
		return err
	}
	p.events.Send(submission.UserID, event.Event{Type: EventType, Data: *submission})

	user, publishable, err := p.publishable(ctx, service, submission)
	if err != nil {
		p.logger.WarnContext(ctx, "Submission isn't publishable", "error", err)
		setTargetsStatus(submission, model.SubmissionErrorStatus(err))
	} else {
		if publishToTNS {
			p.publishToTNS(ctx, user, service, submission, publishable)
		}
		if publishToHermes {
			p.publishToHermes(ctx, user, service, submission, publishable)
		}
	}

	if err := p.repository.updateResult(ctx, submission); err != nil {
		return err
	}
	p.events.Send(submission.UserID, event.Event{Type: EventType, Data: *submission})

	if err := p.archiveSubmission(ctx, submission); err != nil {
		p.logger.ErrorContext(ctx, "Failed to archive submission", "error", err)
	}

	if user != nil && p.notifier != nil {
		if err := p.notifier.Notify(ctx, user, service, submission); err != nil {
			p.logger.ErrorContext(ctx, "Failed to notify submitter", "error", err)
		}
	}

	return nil
}

// Fail records cause as error status on the targets of the submission which are still pending so
// the obj can be submitted again. It is used once a submission can't be processed.
func (p Processor) Fail(ctx context.Context, id uint, cause error) error {
	ctx = log.NewContextWithSubmission(ctx, id)

	if err := p.repository.failPending(ctx, id, model.SubmissionErrorStatus(cause)); err != nil {
		return fmt.Errorf("failed to record error of submission %d: %v", id, err)
	}

	submission, err := p.repository.find(ctx, id)
	if err != nil {
		p.logger.WarnContext(ctx, "Failed to load failed submission", "error", err)
		return nil
	}
	p.events.Send(submission.UserID, event.Event{Type: EventType, Data: *submission})

	return nil
}

// publishable vets the submission again as photometry or access might have changed since it was
// submitted.
func (p Processor) publishable(ctx context.Context, service *model.SharingService, submission *model.SharingServiceSubmission) (*model.User, *dataaccess.Publishable, error) {
	user, err := p.userService.FindById(ctx, submission.UserID)
	if err != nil {
		return nil, nil, err
	}

	options := submission.PhotometryOptions.Data()
	publishable, err := p.dataAccess.PublishableObjPhotometry(ctx, user, service, dataaccess.PublishRequest{
		ObjID:         submission.ObjID,
		InstrumentIDs: toUintSlice(submission.InstrumentIDs),
		StreamIDs:     toUintSlice(submission.StreamIDs),
		PhotometryOptions: map[string]any{
			"firstAndLastDetections":   options.FirstAndLastDetections,
			"autoSharingAllowArchival": options.AutoSharingAllowArchival,
		},
		Archival:        submission.Archival,
		ArchivalComment: submission.ArchivalComment,
		AutoSubmission:  submission.AutoSubmission,
	})
	if err != nil {
		return user, nil, err
	}

	return user, publishable, nil
}

func (p Processor) publishToTNS(ctx context.Context, user *model.User, service *model.SharingService, submission *model.SharingServiceSubmission, publishable *dataaccess.Publishable) {
	fail := func(err error) {
		p.logger.WarnContext(ctx, "Failed to publish to TNS", "error", err)
		submission.TNSStatus = model.SubmissionErrorStatus(err)
	}

	apiKey, err := p.sharingService.APIKey(service)
	if err != nil {
		fail(fmt.Errorf("failed to decrypt TNS API key: %v", err))
		return
	}

	report, err := tns.BuildReport(p.publishers.TNSMapping, tns.ReportParams{
		Service:                service,
		Submitter:              user,
		Obj:                    publishable.Obj,
		Photometry:             publishable.Photometry,
		CustomPublishingString: submission.CustomPublishingString,
		Archival:               submission.Archival,
		ArchivalComment:        submission.ArchivalComment,
		FallbackToArchival:     submission.AutoSubmission && publishable.Options.AutoSharingAllowArchival,
		DetectionThreshold:     p.publishers.DetectionThreshold,
	})
	if err != nil {
		fail(err)
		return
	}

	payload, err := json.Marshal(report)
	if err != nil {
		fail(err)
		return
	}
	submission.TNSPayload = datatypes.JSON(payload)

	bot := tns.Bot{ID: service.BotID, Name: service.BotName, APIKey: apiKey, Testing: service.Testing}
	response, body, err := p.publishers.TNS.SubmitReport(ctx, bot, report)
	if json.Valid(body) {
		submission.TNSResponse = datatypes.JSON(body)
	}
	if err != nil {
		fail(err)
		return
	}

	submission.TNSSubmissionID = &response.Data.ReportID
	submission.TNSStatus = model.SubmissionStatusSubmitted
	p.logger.InfoContext(ctx, "Published to TNS", "report", response.Data.ReportID)
}

func (p Processor) publishToHermes(ctx context.Context, user *model.User, service *model.SharingService, submission *model.SharingServiceSubmission, publishable *dataaccess.Publishable) {
	fail := func(err error) {
		p.logger.WarnContext(ctx, "Failed to publish to Hermes", "error", err)
		submission.HermesStatus = model.SubmissionErrorStatus(err)
	}

	message, err := hermes.BuildMessage(hermes.MessageParams{
		Service:                service,
		Submitter:              user,
		Obj:                    publishable.Obj,
		Photometry:             publishable.Photometry,
		CustomPublishingString: submission.CustomPublishingString,
		DetectionThreshold:     p.publishers.DetectionThreshold,
	})
	if err != nil {
		fail(err)
		return
	}

	payload, err := json.Marshal(message)
	if err != nil {
		fail(err)
		return
	}
	submission.HermesPayload = datatypes.JSON(payload)

	body, err := p.publishers.Hermes.Submit(ctx, message)
	if json.Valid(body) {
		submission.HermesResponse = datatypes.JSON(body)
	}
	if err != nil {
		fail(err)
		return
	}

	submission.HermesStatus = model.SubmissionStatusComplete
	p.logger.InfoContext(ctx, "Published to Hermes")
}

// archiveSubmission uploads the payloads and responses of the submission.
func (p Processor) archiveSubmission(ctx context.Context, submission *model.SharingServiceSubmission) error {
	if p.archive == nil || p.bucket == "" {
		return nil
	}

	documents := map[string]datatypes.JSON{
		"tns-payload":     submission.TNSPayload,
		"tns-response":    submission.TNSResponse,
		"hermes-payload":  submission.HermesPayload,
		"hermes-response": submission.HermesResponse,
	}

	g, ctx := errgroup.WithContext(ctx)
	for name, document := range documents {
		if len(document) == 0 {
			continue
		}
		key := fmt.Sprintf("submissions/%d/%s.json", submission.ID, name)
		g.Go(func() error {
			return p.archive.Upload(ctx, p.bucket, key, "application/json", document)
		})
	}
	return g.Wait()
}

// IsRateLimited reports whether err is a [RateLimitedError] and returns the time to wait.
func IsRateLimited(err error) (time.Duration, bool) {
	var rateLimited *RateLimitedError
	if errors.As(err, &rateLimited) {
		return rateLimited.RetryAfter, true
	}
	return 0, false
}
