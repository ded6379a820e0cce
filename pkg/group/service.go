package group

import (
	"context"
	"strings"

	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/pkg/model"
	"golang.org/x/exp/slices"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewService(groupRepository groupRepository, userService userService) *service {
	return &service{
		groupRepository,
		userService,
	}
}

type groupRepository interface {
	create(ctx context.Context, group *model.Group) error
	addUser(ctx context.Context, group *model.Group, user *model.User) error
	addAdminUser(ctx context.Context, group *model.Group, user *model.User) error
	removeUser(ctx context.Context, group *model.Group, user *model.User) error
	find(ctx context.Context, id uint) (*model.Group, error)
	findWithDetails(ctx context.Context, id uint) (*model.Group, error)
	findOrCreate(ctx context.Context, name string) (*model.Group, error)
	findAll(ctx context.Context) ([]model.Group, error)
	findByIds(ctx context.Context, ids []uint) ([]model.Group, error)
}

type userService interface {
	FindById(ctx context.Context, id uint) (*model.User, error)
}

type service struct {
	groupRepository groupRepository
	userService     userService
}

func (s *service) Find(ctx context.Context, id uint) (*model.Group, error) {
	return s.groupRepository.find(ctx, id)
}

// FindWithDetails returns the group with its members. Only members and administrators can see
// who else is a member.
func (s *service) FindWithDetails(ctx context.Context, user *model.User, id uint) (*model.Group, error) {
	if !user.IsAdministrator() && !user.IsMemberOf(id) {
		return nil, errdef.NewNotFound("group %d doesn't exist", id)
	}

	return s.groupRepository.findWithDetails(ctx, id)
}

// FindByIds returns the groups of given ids. An error is returned unless all of them exist.
func (s *service) FindByIds(ctx context.Context, ids []uint) ([]model.Group, error) {
	groups, err := s.groupRepository.findByIds(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		found := slices.ContainsFunc(groups, func(g model.Group) bool { return g.ID == id })
		if !found {
			return nil, errdef.NewNotFound("group %d doesn't exist", id)
		}
	}

	return groups, nil
}

func (s *service) Create(ctx context.Context, name string) (*model.Group, error) {
	group := &model.Group{
		Name: name,
	}

	err := s.groupRepository.create(ctx, group)
	if err != nil {
		return nil, err
	}

	return group, err
}

func (s *service) FindOrCreate(ctx context.Context, name string) (*model.Group, error) {
	return s.groupRepository.findOrCreate(ctx, name)
}

func (s *service) AddUser(ctx context.Context, groupID uint, userID uint) error {
	group, u, err := s.findGroupAndUser(ctx, groupID, userID)
	if err != nil {
		return err
	}

	return s.groupRepository.addUser(ctx, group, u)
}

// AddAdminUser adds the user as member and admin of the group.
func (s *service) AddAdminUser(ctx context.Context, groupID uint, userID uint) error {
	group, u, err := s.findGroupAndUser(ctx, groupID, userID)
	if err != nil {
		return err
	}

	if err := s.groupRepository.addUser(ctx, group, u); err != nil {
		return err
	}

	return s.groupRepository.addAdminUser(ctx, group, u)
}

func (s *service) RemoveUser(ctx context.Context, groupID uint, userID uint) error {
	group, u, err := s.findGroupAndUser(ctx, groupID, userID)
	if err != nil {
		return err
	}

	return s.groupRepository.removeUser(ctx, group, u)
}

func (s *service) findGroupAndUser(ctx context.Context, groupID uint, userID uint) (*model.Group, *model.User, error) {
	group, err := s.Find(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}

	u, err := s.userService.FindById(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	return group, u, nil
}

// FindAll returns all groups to administrators and the groups the user is a member of otherwise.
func (s *service) FindAll(ctx context.Context, user *model.User) ([]model.Group, error) {
	if user.IsAdministrator() {
		return s.groupRepository.findAll(ctx)
	}

	return findAllFromUser(user), nil
}

func findAllFromUser(user *model.User) []model.Group {
	var allGroups []model.Group
	allGroups = append(allGroups, user.Groups...)
	allGroups = append(allGroups, user.AdminGroups...)

	slices.SortFunc(allGroups, func(a, b model.Group) int {
		return strings.Compare(a.Name, b.Name)
	})

	return slices.CompactFunc(allGroups, func(a, b model.Group) bool {
		return a.ID == b.ID
	})
}
