package instrument

import (
	"context"
	"strings"

	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/pkg/model"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewService(repository *repository) *service {
	return &service{repository: repository}
}

type service struct {
	repository *repository
}

func (s service) Create(ctx context.Context, name, instrumentType string, filters []string) (*model.Instrument, error) {
	cleaned := make([]string, 0, len(filters))
	for _, filter := range filters {
		filter = strings.TrimSpace(filter)
		if filter == "" {
			return nil, errdef.NewBadRequest("instrument filters can't be blank")
		}
		cleaned = append(cleaned, filter)
	}

	instrument := &model.Instrument{
		Name:    name,
		Type:    instrumentType,
		Filters: cleaned,
	}
	if err := s.repository.create(ctx, instrument); err != nil {
		return nil, err
	}

	return instrument, nil
}

func (s service) Find(ctx context.Context, id uint) (*model.Instrument, error) {
	return s.repository.find(ctx, id)
}

func (s service) FindAll(ctx context.Context) ([]model.Instrument, error) {
	return s.repository.findAll(ctx)
}

// FindByIds returns the instruments of given ids ordered by id. Unknown ids are skipped so callers
// can report which of them are missing.
func (s service) FindByIds(ctx context.Context, ids []uint) ([]model.Instrument, error) {
	if len(ids) == 0 {
		return []model.Instrument{}, nil
	}
	return s.repository.findByIds(ctx, ids)
}
