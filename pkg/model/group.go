package model

import "time"

const AdministratorGroupName = "administrators"

// Group domain object defining a group
// swagger:model
type Group struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Name       string    `json:"name" gorm:"index;unique"`
	Users      []User    `json:"users,omitempty" gorm:"many2many:group_users;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	AdminUsers []User    `json:"adminUsers,omitempty" gorm:"many2many:group_admins;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
