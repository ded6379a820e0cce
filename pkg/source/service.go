package source

import (
	"context"
	"strings"

	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/pkg/model"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewService(repository *repository, groupService groupService) *service {
	return &service{repository: repository, groupService: groupService}
}

type groupService interface {
	FindByIds(ctx context.Context, ids []uint) ([]model.Group, error)
}

type service struct {
	repository   *repository
	groupService groupService
}

type NewSource struct {
	ID       string
	RA       float64
	Dec      float64
	Redshift *float64
	GroupIDs []uint
}

// Save saves an obj to the given groups, creating the obj if it doesn't exist yet. Users can only
// save to groups they are a member of.
func (s service) Save(ctx context.Context, user *model.User, source NewSource) (*model.Obj, error) {
	id := strings.TrimSpace(source.ID)
	if id == "" {
		return nil, errdef.NewBadRequest("source id can't be blank")
	}
	if len(source.GroupIDs) == 0 {
		return nil, errdef.NewBadRequest("at least one group id is required")
	}

	groups, err := s.groupService.FindByIds(ctx, source.GroupIDs)
	if err != nil {
		return nil, err
	}

	sources := make([]model.Source, len(groups))
	for i, group := range groups {
		if !user.IsAdministrator() && !user.IsMemberOf(group.ID) {
			return nil, errdef.NewForbidden("user %d is not a member of group %d", user.ID, group.ID)
		}
		sources[i] = model.Source{ObjID: id, GroupID: group.ID, SavedByID: user.ID}
	}

	obj := &model.Obj{ID: id, RA: source.RA, Dec: source.Dec, Redshift: source.Redshift}
	if err := s.repository.save(ctx, obj, sources); err != nil {
		return nil, err
	}

	return s.FindAccessibleObj(ctx, user, id)
}

// FindAccessibleObj returns the obj if it is saved to any group of the user. Only the sources of
// the user's groups are returned, administrators see all of them.
func (s service) FindAccessibleObj(ctx context.Context, user *model.User, id string) (*model.Obj, error) {
	obj, err := s.repository.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.IsAdministrator() {
		return obj, nil
	}

	var accessible []model.Source
	for _, source := range obj.Sources {
		if user.IsMemberOf(source.GroupID) {
			accessible = append(accessible, source)
		}
	}
	if len(accessible) == 0 {
		return nil, errdef.NewNotFound("source %q doesn't exist", id)
	}
	obj.Sources = accessible

	return obj, nil
}
