package stream

import (
	"context"

	"github.com/skyportal/skyportal/pkg/model"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewService(repository *repository, userService userService) *service {
	return &service{repository: repository, userService: userService}
}

type userService interface {
	FindById(ctx context.Context, id uint) (*model.User, error)
}

type service struct {
	repository  *repository
	userService userService
}

func (s service) Create(ctx context.Context, name string) (*model.Stream, error) {
	stream := &model.Stream{Name: name}
	if err := s.repository.create(ctx, stream); err != nil {
		return nil, err
	}
	return stream, nil
}

// FindAll returns all streams to administrators and the streams the user has access to otherwise.
func (s service) FindAll(ctx context.Context, user *model.User) ([]model.Stream, error) {
	if user.IsAdministrator() {
		return s.repository.findAll(ctx)
	}
	return user.Streams, nil
}

// FindByIds returns the streams of given ids ordered by id. Unknown ids are skipped.
func (s service) FindByIds(ctx context.Context, ids []uint) ([]model.Stream, error) {
	if len(ids) == 0 {
		return []model.Stream{}, nil
	}
	return s.repository.findByIds(ctx, ids)
}

func (s service) AddUser(ctx context.Context, streamID, userID uint) error {
	stream, user, err := s.findStreamAndUser(ctx, streamID, userID)
	if err != nil {
		return err
	}
	return s.repository.addUser(ctx, stream, user)
}

func (s service) RemoveUser(ctx context.Context, streamID, userID uint) error {
	stream, user, err := s.findStreamAndUser(ctx, streamID, userID)
	if err != nil {
		return err
	}
	return s.repository.removeUser(ctx, stream, user)
}

func (s service) findStreamAndUser(ctx context.Context, streamID, userID uint) (*model.Stream, *model.User, error) {
	stream, err := s.repository.find(ctx, streamID)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.userService.FindById(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	return stream, user, nil
}
