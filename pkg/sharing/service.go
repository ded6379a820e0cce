package sharing

import (
	"context"
	"strings"

	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/pkg/dataaccess"
	"github.com/skyportal/skyportal/pkg/model"
	"gorm.io/datatypes"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewService(
	repository *repository,
	cipher *apiKeyCipher,
	groupService groupService,
	userService userService,
	idProcessor idProcessor,
) *service {
	return &service{
		repository:   repository,
		cipher:       cipher,
		groupService: groupService,
		userService:  userService,
		idProcessor:  idProcessor,
	}
}

type groupService interface {
	FindByIds(ctx context.Context, ids []uint) ([]model.Group, error)
}

type userService interface {
	FindById(ctx context.Context, id uint) (*model.User, error)
}

type idProcessor interface {
	ProcessInstrumentIDs(ctx context.Context, ids any, accessible []uint) ([]model.Instrument, error)
	ProcessStreamIDs(ctx context.Context, user *model.User, ids any, accessible []uint) ([]model.Stream, error)
}

type service struct {
	repository   *repository
	cipher       *apiKeyCipher
	groupService groupService
	userService  userService
	idProcessor  idProcessor
}

type NewSharingService struct {
	Name                    string
	BotName                 string
	BotID                   int
	SourceGroupID           int
	APIKey                  string
	Acknowledgments         string
	PhotometryOptions       map[string]any
	InstrumentIDs           any
	StreamIDs               any
	OwnerGroupIDs           []uint
	EnableSharingWithTNS    bool
	EnableSharingWithHermes bool
	Testing                 bool
}

func (s service) Create(ctx context.Context, user *model.User, params NewSharingService) (*model.SharingService, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, errdef.NewBadRequest("sharing service name can't be blank")
	}
	if len(params.OwnerGroupIDs) == 0 {
		return nil, errdef.NewBadRequest("at least one owner group is required")
	}

	owners, err := s.groupService.FindByIds(ctx, params.OwnerGroupIDs)
	if err != nil {
		return nil, err
	}
	groups := make([]model.SharingServiceGroup, len(owners))
	for i, owner := range owners {
		if !user.IsAdministrator() && !user.IsMemberOf(owner.ID) {
			return nil, errdef.NewForbidden("user %d is not a member of group %d", user.ID, owner.ID)
		}
		groups[i] = model.SharingServiceGroup{GroupID: owner.ID, Owner: true}
	}

	instruments, err := s.idProcessor.ProcessInstrumentIDs(ctx, params.InstrumentIDs, nil)
	if err != nil {
		return nil, err
	}
	if len(instruments) == 0 {
		return nil, errdef.NewBadRequest("at least one instrument is required")
	}

	streams, err := s.idProcessor.ProcessStreamIDs(ctx, user, params.StreamIDs, nil)
	if err != nil {
		return nil, err
	}

	options, err := dataaccess.ValidatePhotometryOptions(params.PhotometryOptions, nil)
	if err != nil {
		return nil, err
	}

	encryptedAPIKey, err := s.encryptAPIKey(params.APIKey)
	if err != nil {
		return nil, err
	}

	service := &model.SharingService{
		Name:                    name,
		BotName:                 params.BotName,
		BotID:                   params.BotID,
		SourceGroupID:           params.SourceGroupID,
		EncryptedAPIKey:         encryptedAPIKey,
		Acknowledgments:         params.Acknowledgments,
		PhotometryOptions:       datatypes.NewJSONType(options),
		EnableSharingWithTNS:    params.EnableSharingWithTNS,
		EnableSharingWithHermes: params.EnableSharingWithHermes,
		Testing:                 params.Testing,
		Instruments:             instruments,
		Streams:                 streams,
		Groups:                  groups,
	}
	if err := s.repository.create(ctx, service); err != nil {
		return nil, err
	}

	return s.repository.find(ctx, service.ID)
}

func (s service) encryptAPIKey(apiKey string) (string, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return "", nil
	}
	return s.cipher.encrypt(apiKey)
}

// APIKey returns the decrypted API key of the sharing service.
func (s service) APIKey(service *model.SharingService) (string, error) {
	return s.cipher.decrypt(service.EncryptedAPIKey)
}

// Find returns the sharing service if the user is a member of any of its groups.
func (s service) Find(ctx context.Context, user *model.User, id uint) (*model.SharingService, error) {
	service, err := s.repository.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !service.IsReadableBy(user) {
		return nil, errdef.NewNotFound("sharing service %d doesn't exist", id)
	}
	return service, nil
}

// FindByID returns the sharing service without checking access.
func (s service) FindByID(ctx context.Context, id uint) (*model.SharingService, error) {
	return s.repository.find(ctx, id)
}

// FindAll returns the sharing services the user can read ordered by id. A non-zero groupID only
// returns the services the group is part of.
func (s service) FindAll(ctx context.Context, user *model.User, groupID uint) ([]model.SharingService, error) {
	all, err := s.repository.findAll(ctx)
	if err != nil {
		return nil, err
	}

	services := make([]model.SharingService, 0, len(all))
	for _, service := range all {
		if !service.IsReadableBy(user) {
			continue
		}
		if _, ok := service.FindGroup(groupID); groupID != 0 && !ok {
			continue
		}
		services = append(services, service)
	}

	return services, nil
}

type SharingServiceUpdate struct {
	Name                    *string
	BotName                 *string
	BotID                   *int
	SourceGroupID           *int
	APIKey                  *string
	Acknowledgments         *string
	PhotometryOptions       map[string]any
	InstrumentIDs           any
	StreamIDs               any
	EnableSharingWithTNS    *bool
	EnableSharingWithHermes *bool
	Testing                 *bool
}

// Update applies the set fields of update. Only members of an owner group can update a sharing
// service.
func (s service) Update(ctx context.Context, user *model.User, id uint, update SharingServiceUpdate) (*model.SharingService, error) {
	service, err := s.findWritable(ctx, user, id)
	if err != nil {
		return nil, err
	}

	var u sharingServiceUpdate
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, errdef.NewBadRequest("sharing service name can't be blank")
		}
		service.Name = name
		u.columns = append(u.columns, "Name")
	}
	if update.BotName != nil {
		service.BotName = *update.BotName
		u.columns = append(u.columns, "BotName")
	}
	if update.BotID != nil {
		service.BotID = *update.BotID
		u.columns = append(u.columns, "BotID")
	}
	if update.SourceGroupID != nil {
		service.SourceGroupID = *update.SourceGroupID
		u.columns = append(u.columns, "SourceGroupID")
	}
	if update.APIKey != nil {
		service.EncryptedAPIKey, err = s.encryptAPIKey(*update.APIKey)
		if err != nil {
			return nil, err
		}
		u.columns = append(u.columns, "EncryptedAPIKey")
	}
	if update.Acknowledgments != nil {
		service.Acknowledgments = *update.Acknowledgments
		u.columns = append(u.columns, "Acknowledgments")
	}
	if update.PhotometryOptions != nil {
		existing := service.PhotometryOptions.Data()
		options, err := dataaccess.ValidatePhotometryOptions(update.PhotometryOptions, &existing)
		if err != nil {
			return nil, err
		}
		service.PhotometryOptions = datatypes.NewJSONType(options)
		u.columns = append(u.columns, "PhotometryOptions")
	}
	if update.EnableSharingWithTNS != nil {
		service.EnableSharingWithTNS = *update.EnableSharingWithTNS
		u.columns = append(u.columns, "EnableSharingWithTNS")
	}
	if update.EnableSharingWithHermes != nil {
		service.EnableSharingWithHermes = *update.EnableSharingWithHermes
		u.columns = append(u.columns, "EnableSharingWithHermes")
	}
	if update.Testing != nil {
		service.Testing = *update.Testing
		u.columns = append(u.columns, "Testing")
	}

	if update.InstrumentIDs != nil {
		u.instruments, err = s.idProcessor.ProcessInstrumentIDs(ctx, update.InstrumentIDs, nil)
		if err != nil {
			return nil, err
		}
		if len(u.instruments) == 0 {
			return nil, errdef.NewBadRequest("at least one instrument is required")
		}
	}
	if update.StreamIDs != nil {
		u.streams, err = s.idProcessor.ProcessStreamIDs(ctx, user, update.StreamIDs, nil)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repository.update(ctx, service, u); err != nil {
		return nil, err
	}

	return s.repository.find(ctx, id)
}

func (s service) Delete(ctx context.Context, user *model.User, id uint) error {
	if _, err := s.findWritable(ctx, user, id); err != nil {
		return err
	}
	return s.repository.delete(ctx, id)
}

// findWritable returns the sharing service if the user can modify it. Users who can't even read it
// get a not found error.
func (s service) findWritable(ctx context.Context, user *model.User, id uint) (*model.SharingService, error) {
	service, err := s.Find(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if !service.IsWritableBy(user) {
		return nil, errdef.NewForbidden("user %d is not a member of an owner group of sharing service %d", user.ID, id)
	}
	return service, nil
}
