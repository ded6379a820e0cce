package sharing

import (
	"context"

	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/pkg/model"
)

type NewGroup struct {
	GroupID              uint
	Owner                bool
	AutoShareToTNS       bool
	AutoShareToHermes    bool
	AutoSharingAllowBots bool
}

func (s service) AddGroup(ctx context.Context, user *model.User, id uint, newGroup NewGroup) (*model.SharingServiceGroup, error) {
	service, err := s.findWritable(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.groupService.FindByIds(ctx, []uint{newGroup.GroupID}); err != nil {
		return nil, err
	}
	if _, ok := service.FindGroup(newGroup.GroupID); ok {
		return nil, errdef.NewDuplicated("group %d is already part of sharing service %d", newGroup.GroupID, id)
	}

	group := &model.SharingServiceGroup{
		SharingServiceID:     service.ID,
		GroupID:              newGroup.GroupID,
		Owner:                newGroup.Owner,
		AutoShareToTNS:       newGroup.AutoShareToTNS,
		AutoShareToHermes:    newGroup.AutoShareToHermes,
		AutoSharingAllowBots: newGroup.AutoSharingAllowBots,
	}
	if err := s.repository.createGroup(ctx, group); err != nil {
		return nil, err
	}

	return group, nil
}

type GroupUpdate struct {
	Owner                *bool
	AutoShareToTNS       *bool
	AutoShareToHermes    *bool
	AutoSharingAllowBots *bool
}

// UpdateGroup changes the flags of a group. A sharing service always keeps an owner group and bots
// can only remain auto publishers of groups which allow them.
func (s service) UpdateGroup(ctx context.Context, user *model.User, id, groupID uint, update GroupUpdate) (*model.SharingServiceGroup, error) {
	service, group, err := s.findWritableGroup(ctx, user, id, groupID)
	if err != nil {
		return nil, err
	}

	if update.Owner != nil {
		if !*update.Owner && group.Owner && service.OwnerCount() == 1 {
			return nil, errdef.NewBadRequest("sharing service %d must have at least one owner group", id)
		}
		group.Owner = *update.Owner
	}
	if update.AutoSharingAllowBots != nil {
		if !*update.AutoSharingAllowBots && group.HasBotAutoPublisher() {
			return nil, errdef.NewBadRequest("bots can't be disallowed while any auto publisher of group %d is a bot", groupID)
		}
		group.AutoSharingAllowBots = *update.AutoSharingAllowBots
	}
	if update.AutoShareToTNS != nil {
		group.AutoShareToTNS = *update.AutoShareToTNS
	}
	if update.AutoShareToHermes != nil {
		group.AutoShareToHermes = *update.AutoShareToHermes
	}

	if err := s.repository.updateGroup(ctx, group); err != nil {
		return nil, err
	}

	return group, nil
}

func (s service) DeleteGroup(ctx context.Context, user *model.User, id, groupID uint) error {
	service, group, err := s.findWritableGroup(ctx, user, id, groupID)
	if err != nil {
		return err
	}

	if group.Owner && service.OwnerCount() == 1 {
		return errdef.NewBadRequest("sharing service %d must have at least one owner group", id)
	}

	return s.repository.deleteGroup(ctx, group)
}

func (s service) findWritableGroup(ctx context.Context, user *model.User, id, groupID uint) (*model.SharingService, *model.SharingServiceGroup, error) {
	service, err := s.findWritable(ctx, user, id)
	if err != nil {
		return nil, nil, err
	}

	group, ok := service.FindGroup(groupID)
	if !ok {
		return nil, nil, errdef.NewNotFound("group %d is not part of sharing service %d", groupID, id)
	}

	return service, group, nil
}

// AddAutoPublishers opts users in to automatic submissions of the sources they save to the group.
// Owners can add any member of the group, other members only themselves.
func (s service) AddAutoPublishers(ctx context.Context, user *model.User, id, groupID uint, userIDs []uint) (*model.SharingServiceGroup, error) {
	if len(userIDs) == 0 {
		return nil, errdef.NewBadRequest("at least one user id is required")
	}

	service, group, err := s.findGroupForAutoPublishers(ctx, user, id, groupID, userIDs)
	if err != nil {
		return nil, err
	}

	users := make([]*model.User, 0, len(userIDs))
	for _, userID := range userIDs {
		if group.HasAutoPublisher(userID) {
			continue
		}

		u, err := s.userService.FindById(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !u.IsMemberOf(groupID) {
			return nil, errdef.NewBadRequest("user %d is not a member of group %d", u.ID, groupID)
		}
		if !u.HasAffiliation() {
			return nil, errdef.NewBadRequest("user %d has no affiliation", u.ID)
		}
		if u.IsBot && !group.AutoSharingAllowBots {
			return nil, errdef.NewBadRequest("group %d of sharing service %d doesn't allow bots as auto publishers", groupID, service.ID)
		}
		users = append(users, u)
	}

	if len(users) > 0 {
		if err := s.repository.addAutoPublishers(ctx, group, users); err != nil {
			return nil, err
		}
	}

	service, err = s.repository.find(ctx, id)
	if err != nil {
		return nil, err
	}
	group, _ = service.FindGroup(groupID)

	return group, nil
}

func (s service) RemoveAutoPublisher(ctx context.Context, user *model.User, id, groupID, userID uint) error {
	_, group, err := s.findGroupForAutoPublishers(ctx, user, id, groupID, []uint{userID})
	if err != nil {
		return err
	}

	if !group.HasAutoPublisher(userID) {
		return errdef.NewNotFound("user %d is not an auto publisher of group %d", userID, groupID)
	}

	return s.repository.removeAutoPublisher(ctx, group, &model.User{ID: userID})
}

func (s service) findGroupForAutoPublishers(ctx context.Context, user *model.User, id, groupID uint, userIDs []uint) (*model.SharingService, *model.SharingServiceGroup, error) {
	service, err := s.Find(ctx, user, id)
	if err != nil {
		return nil, nil, err
	}

	group, ok := service.FindGroup(groupID)
	if !ok {
		return nil, nil, errdef.NewNotFound("group %d is not part of sharing service %d", groupID, id)
	}

	if !service.IsWritableBy(user) && !onlySelf(user, userIDs) {
		return nil, nil, errdef.NewForbidden("only owners of sharing service %d can manage auto publishers of other users", id)
	}

	return service, group, nil
}

func onlySelf(user *model.User, userIDs []uint) bool {
	for _, id := range userIDs {
		if id != user.ID {
			return false
		}
	}
	return true
}

// AddCoauthor adds a user to the authors listed on every report of the sharing service.
func (s service) AddCoauthor(ctx context.Context, user *model.User, id, userID uint) (*model.SharingService, error) {
	service, err := s.findWritable(ctx, user, id)
	if err != nil {
		return nil, err
	}

	for _, coauthor := range service.Coauthors {
		if coauthor.ID == userID {
			return nil, errdef.NewDuplicated("user %d is already a coauthor of sharing service %d", userID, id)
		}
	}

	coauthor, err := s.userService.FindById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if coauthor.IsBot {
		return nil, errdef.NewBadRequest("bots can't be coauthors")
	}
	if !coauthor.HasAffiliation() {
		return nil, errdef.NewBadRequest("user %d has no affiliation", coauthor.ID)
	}
	if !isMemberOfAny(coauthor, service) {
		return nil, errdef.NewBadRequest("user %d is not a member of any group of sharing service %d", coauthor.ID, id)
	}

	if err := s.repository.addCoauthor(ctx, service, coauthor); err != nil {
		return nil, err
	}

	return s.repository.find(ctx, id)
}

func isMemberOfAny(user *model.User, service *model.SharingService) bool {
	for _, g := range service.Groups {
		if user.IsMemberOf(g.GroupID) {
			return true
		}
	}
	return false
}

func (s service) RemoveCoauthor(ctx context.Context, user *model.User, id, userID uint) error {
	service, err := s.findWritable(ctx, user, id)
	if err != nil {
		return err
	}

	for _, coauthor := range service.Coauthors {
		if coauthor.ID == userID {
			return s.repository.removeCoauthor(ctx, service, &coauthor)
		}
	}

	return errdef.NewNotFound("user %d is not a coauthor of sharing service %d", userID, id)
}

// AutoSharingGroups returns the groups among groupIDs which automatically share with any target
// together with their sharing service.
func (s service) AutoSharingGroups(ctx context.Context, groupIDs []uint) ([]AutoSharingGroup, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}

	groups, err := s.repository.findAutoSharingGroups(ctx, groupIDs)
	if err != nil {
		return nil, err
	}

	services := make(map[uint]*model.SharingService)
	autoSharing := make([]AutoSharingGroup, 0, len(groups))
	for _, group := range groups {
		service, ok := services[group.SharingServiceID]
		if !ok {
			service, err = s.repository.find(ctx, group.SharingServiceID)
			if err != nil {
				return nil, err
			}
			services[group.SharingServiceID] = service
		}
		autoSharing = append(autoSharing, AutoSharingGroup{Service: service, Group: group})
	}

	return autoSharing, nil
}

type AutoSharingGroup struct {
	Service *model.SharingService
	Group   model.SharingServiceGroup
}
