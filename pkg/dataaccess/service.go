// Package dataaccess resolves which instruments, streams and photometry of an object a user may
// publish through a sharing service. Validation failures are returned as bad request errors so
// they are reported back to the submitter.
package dataaccess

import (
	"context"

	"github.com/skyportal/skyportal/pkg/model"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewService(
	instrumentService instrumentService,
	streamService streamService,
	sourceService sourceService,
	photometryService photometryService,
	detectionThreshold float64,
) *Service {
	return &Service{
		instrumentService:  instrumentService,
		streamService:      streamService,
		sourceService:      sourceService,
		photometryService:  photometryService,
		detectionThreshold: detectionThreshold,
	}
}

type instrumentService interface {
	FindByIds(ctx context.Context, ids []uint) ([]model.Instrument, error)
}

type streamService interface {
	FindByIds(ctx context.Context, ids []uint) ([]model.Stream, error)
}

type sourceService interface {
	FindAccessibleObj(ctx context.Context, user *model.User, id string) (*model.Obj, error)
}

type photometryService interface {
	FindAccessible(ctx context.Context, user *model.User, objID string) ([]model.Photometry, error)
}

type Service struct {
	instrumentService  instrumentService
	streamService      streamService
	sourceService      sourceService
	photometryService  photometryService
	detectionThreshold float64
}
