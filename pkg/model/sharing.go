package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// PhotometryOptions controls which photometry of an object is published.
type PhotometryOptions struct {
	// Require the first and the last detection of the object to be published
	FirstAndLastDetections bool `json:"firstAndLastDetections"`
	// Allow automatic submissions to be archival reports
	AutoSharingAllowArchival bool `json:"autoSharingAllowArchival"`
}

// DefaultPhotometryOptions are applied to keys neither the request nor the sharing service set.
var DefaultPhotometryOptions = PhotometryOptions{
	FirstAndLastDetections:   true,
	AutoSharingAllowArchival: false,
}

// SharingService domain object defining a robot publishing objects to TNS and/or Hermes on behalf
// of its groups
// swagger:model
type SharingService struct {
	ID                      uint                                  `json:"id" gorm:"primaryKey"`
	CreatedAt               time.Time                             `json:"createdAt"`
	UpdatedAt               time.Time                             `json:"updatedAt"`
	Name                    string                                `json:"name" gorm:"unique"`
	Slug                    string                                `json:"slug" gorm:"unique"`
	BotName                 string                                `json:"botName"`
	BotID                   int                                   `json:"botId"`
	SourceGroupID           int                                   `json:"sourceGroupId"`
	EncryptedAPIKey         string                                `json:"-"`
	Acknowledgments         string                                `json:"acknowledgments"`
	PhotometryOptions       datatypes.JSONType[PhotometryOptions] `json:"photometryOptions"`
	EnableSharingWithTNS    bool                                  `json:"enableSharingWithTns"`
	EnableSharingWithHermes bool                                  `json:"enableSharingWithHermes"`
	Testing                 bool                                  `json:"testing"`
	Instruments             []Instrument                          `json:"instruments" gorm:"many2many:sharing_service_instruments;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Streams                 []Stream                              `json:"streams" gorm:"many2many:sharing_service_streams;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Groups                  []SharingServiceGroup                 `json:"groups" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Coauthors               []User                                `json:"coauthors" gorm:"many2many:sharing_service_coauthors;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (s *SharingService) InstrumentIDs() []uint {
	ids := make([]uint, len(s.Instruments))
	for i, instrument := range s.Instruments {
		ids[i] = instrument.ID
	}
	return ids
}

func (s *SharingService) StreamIDs() []uint {
	ids := make([]uint, len(s.Streams))
	for i, stream := range s.Streams {
		ids[i] = stream.ID
	}
	return ids
}

// IsReadableBy reports whether user is a member of any of the sharing service groups.
func (s *SharingService) IsReadableBy(user *User) bool {
	if user.IsAdministrator() {
		return true
	}
	for _, g := range s.Groups {
		if user.IsMemberOf(g.GroupID) {
			return true
		}
	}
	return false
}

// IsWritableBy reports whether user is a member of any of the owner groups.
func (s *SharingService) IsWritableBy(user *User) bool {
	if user.IsAdministrator() {
		return true
	}
	for _, g := range s.Groups {
		if g.Owner && user.IsMemberOf(g.GroupID) {
			return true
		}
	}
	return false
}

// OwnerCount returns the number of owner groups.
func (s *SharingService) OwnerCount() int {
	count := 0
	for _, g := range s.Groups {
		if g.Owner {
			count++
		}
	}
	return count
}

// FindGroup returns the sharing service group of groupID.
func (s *SharingService) FindGroup(groupID uint) (*SharingServiceGroup, bool) {
	for i := range s.Groups {
		if s.Groups[i].GroupID == groupID {
			return &s.Groups[i], true
		}
	}
	return nil, false
}

// SharingServiceGroup links a group to a sharing service and holds the group's auto sharing policy
// swagger:model
type SharingServiceGroup struct {
	ID                   uint      `json:"id" gorm:"primaryKey"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
	SharingServiceID     uint      `json:"sharingServiceId" gorm:"uniqueIndex:idx_sharing_service_group"`
	GroupID              uint      `json:"groupId" gorm:"uniqueIndex:idx_sharing_service_group"`
	Group                *Group    `json:"group,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Owner                bool      `json:"owner"`
	AutoShareToTNS       bool      `json:"autoShareToTns"`
	AutoShareToHermes    bool      `json:"autoShareToHermes"`
	AutoSharingAllowBots bool      `json:"autoSharingAllowBots"`
	AutoPublishers       []User    `json:"autoPublishers" gorm:"many2many:sharing_service_group_auto_publishers;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (g *SharingServiceGroup) HasAutoPublisher(userID uint) bool {
	for _, u := range g.AutoPublishers {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// HasBotAutoPublisher reports whether any auto publisher is a bot account.
func (g *SharingServiceGroup) HasBotAutoPublisher() bool {
	for _, u := range g.AutoPublishers {
		if u.IsBot {
			return true
		}
	}
	return false
}

const (
	SubmissionStatusPending     = "pending"
	SubmissionStatusProcessing  = "processing"
	SubmissionStatusSubmitted   = "submitted"
	SubmissionStatusComplete    = "complete"
	SubmissionStatusErrorPrefix = "error: "
)

// SharingServiceSubmission domain object recording an attempt to publish an object
// swagger:model
type SharingServiceSubmission struct {
	ID                     uint                                  `json:"id" gorm:"primaryKey"`
	CreatedAt              time.Time                             `json:"createdAt"`
	UpdatedAt              time.Time                             `json:"updatedAt"`
	SharingServiceID       uint                                  `json:"sharingServiceId" gorm:"index"`
	SharingService         *SharingService                       `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	ObjID                  string                                `json:"objId" gorm:"index"`
	UserID                 uint                                  `json:"userId"`
	User                   *User                                 `json:"user,omitempty"`
	InstrumentIDs          pq.Int64Array                         `json:"instrumentIds" gorm:"type:integer[]"`
	StreamIDs              pq.Int64Array                         `json:"streamIds" gorm:"type:integer[]"`
	PhotometryOptions      datatypes.JSONType[PhotometryOptions] `json:"photometryOptions"`
	CustomPublishingString string                                `json:"customPublishingString"`
	Archival               bool                                  `json:"archival"`
	ArchivalComment        string                                `json:"archivalComment"`
	AutoSubmission         bool                                  `json:"autoSubmission"`
	PublishToTNS           bool                                  `json:"publishToTns"`
	PublishToHermes        bool                                  `json:"publishToHermes"`
	TNSStatus              string                                `json:"tnsStatus"`
	HermesStatus           string                                `json:"hermesStatus"`
	TNSSubmissionID        *int                                  `json:"tnsSubmissionId,omitempty"`
	TNSPayload             datatypes.JSON                        `json:"tnsPayload,omitempty"`
	TNSResponse            datatypes.JSON                        `json:"tnsResponse,omitempty"`
	HermesPayload          datatypes.JSON                        `json:"hermesPayload,omitempty"`
	HermesResponse         datatypes.JSON                        `json:"hermesResponse,omitempty"`
}

// IsPending reports whether any of the targets is still waiting to be processed.
func (s *SharingServiceSubmission) IsPending() bool {
	return (s.PublishToTNS && isPendingStatus(s.TNSStatus)) ||
		(s.PublishToHermes && isPendingStatus(s.HermesStatus))
}

func isPendingStatus(status string) bool {
	return status == SubmissionStatusPending || status == SubmissionStatusProcessing
}

func SubmissionErrorStatus(err error) string {
	return SubmissionStatusErrorPrefix + err.Error()
}
