package model

import (
	"context"
	"strings"
	"time"

	"github.com/lib/pq"
)

// User domain object defining a user
// swagger:model
type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	Username     string         `json:"username" gorm:"index;unique"`
	Password     string         `json:"-"`
	FirstName    string         `json:"firstName"`
	LastName     string         `json:"lastName"`
	Email        string         `json:"email,omitempty"`
	Affiliations pq.StringArray `json:"affiliations" gorm:"type:text[]"`
	IsBot        bool           `json:"isBot"`
	Groups       []Group        `json:"groups" gorm:"many2many:group_users;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	AdminGroups  []Group        `json:"adminGroups" gorm:"many2many:group_admins;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Streams      []Stream       `json:"streams" gorm:"many2many:stream_users;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (u *User) IsMemberOf(groupID uint) bool {
	return containsGroup(groupID, u.Groups)
}

func (u *User) IsAdminOf(groupID uint) bool {
	return containsGroup(groupID, u.AdminGroups)
}

func containsGroup(groupID uint, groups []Group) bool {
	for _, g := range groups {
		if groupID == g.ID {
			return true
		}
	}
	return false
}

// IsAdministrator reports whether the user is a member of the administrators group.
func (u *User) IsAdministrator() bool {
	for _, g := range u.Groups {
		if g.Name == AdministratorGroupName {
			return true
		}
	}
	return false
}

// GroupIDs returns the ids of all groups the user is a member of.
func (u *User) GroupIDs() []uint {
	ids := make([]uint, len(u.Groups))
	for i, g := range u.Groups {
		ids[i] = g.ID
	}
	return ids
}

// StreamIDs returns the ids of all streams the user has access to.
func (u *User) StreamIDs() []uint {
	ids := make([]uint, len(u.Streams))
	for i, s := range u.Streams {
		ids[i] = s.ID
	}
	return ids
}

func (u *User) HasAffiliation() bool {
	for _, a := range u.Affiliations {
		if strings.TrimSpace(a) != "" {
			return true
		}
	}
	return false
}

// FullName returns "first last" falling back to the username when no name is set.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

type userCtxKey int

var userKey userCtxKey

// NewContextWithUser returns a new [context.Context] that carries given user.
func NewContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUserFromContext returns the user stored in the ctx, if any.
func GetUserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userKey).(*User)
	return u, ok
}

func (u *User) HasStreamAccess(streamID uint) bool {
	for _, s := range u.Streams {
		if s.ID == streamID {
			return true
		}
	}
	return false
}
