package photometry

import (
	"context"
	"strings"

	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/pkg/model"
	"golang.org/x/exp/slices"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewService(
	repository *repository,
	sourceService sourceService,
	instrumentService instrumentService,
	groupService groupService,
	streamService streamService,
) *service {
	return &service{
		repository:        repository,
		sourceService:     sourceService,
		instrumentService: instrumentService,
		groupService:      groupService,
		streamService:     streamService,
	}
}

type sourceService interface {
	FindAccessibleObj(ctx context.Context, user *model.User, id string) (*model.Obj, error)
}

type instrumentService interface {
	Find(ctx context.Context, id uint) (*model.Instrument, error)
}

type groupService interface {
	FindByIds(ctx context.Context, ids []uint) ([]model.Group, error)
}

type streamService interface {
	FindByIds(ctx context.Context, ids []uint) ([]model.Stream, error)
}

type service struct {
	repository        *repository
	sourceService     sourceService
	instrumentService instrumentService
	groupService      groupService
	streamService     streamService
}

type NewPhotometry struct {
	ObjID        string
	InstrumentID uint
	MJD          float64
	Flux         *float64
	FluxErr      float64
	Filter       string
	MagSys       string
	Origin       string
	GroupIDs     []uint
	StreamIDs    []uint
}

func (s service) Create(ctx context.Context, user *model.User, p NewPhotometry) (*model.Photometry, error) {
	obj, err := s.sourceService.FindAccessibleObj(ctx, user, p.ObjID)
	if err != nil {
		return nil, err
	}

	instrument, err := s.instrumentService.Find(ctx, p.InstrumentID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(instrument.Filters, p.Filter) {
		return nil, errdef.NewBadRequest("filter %q is not available on instrument %q", p.Filter, instrument.Name)
	}

	groups, err := s.groupService.FindByIds(ctx, p.GroupIDs)
	if err != nil {
		return nil, err
	}
	for _, group := range groups {
		if !user.IsAdministrator() && !user.IsMemberOf(group.ID) {
			return nil, errdef.NewForbidden("user %d is not a member of group %d", user.ID, group.ID)
		}
	}

	streams, err := s.streamService.FindByIds(ctx, p.StreamIDs)
	if err != nil {
		return nil, err
	}
	if len(streams) != len(p.StreamIDs) {
		return nil, errdef.NewNotFound("one or more streams not found")
	}
	for _, stream := range streams {
		if !user.IsAdministrator() && !user.HasStreamAccess(stream.ID) {
			return nil, errdef.NewForbidden("user %d has no access to stream %d", user.ID, stream.ID)
		}
	}

	magSys := strings.ToLower(strings.TrimSpace(p.MagSys))
	if magSys == "" {
		magSys = "ab"
	}

	photometry := &model.Photometry{
		ObjID:        obj.ID,
		InstrumentID: instrument.ID,
		MJD:          p.MJD,
		Flux:         p.Flux,
		FluxErr:      p.FluxErr,
		Filter:       p.Filter,
		MagSys:       magSys,
		Origin:       p.Origin,
		Groups:       groups,
		Streams:      streams,
	}
	if err := s.repository.create(ctx, photometry); err != nil {
		return nil, err
	}
	photometry.Instrument = instrument

	return photometry, nil
}

// FindAccessible returns the photometry of the obj the user can read ordered by mjd.
func (s service) FindAccessible(ctx context.Context, user *model.User, objID string) ([]model.Photometry, error) {
	obj, err := s.sourceService.FindAccessibleObj(ctx, user, objID)
	if err != nil {
		return nil, err
	}

	all, err := s.repository.findByObj(ctx, obj.ID)
	if err != nil {
		return nil, err
	}

	photometry := make([]model.Photometry, 0, len(all))
	for _, p := range all {
		if p.IsAccessibleBy(user) {
			photometry = append(photometry, p)
		}
	}

	return photometry, nil
}
