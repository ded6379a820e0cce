package model

import (
	"time"

	"github.com/lib/pq"
)

// Instrument domain object defining a telescope instrument
// swagger:model
type Instrument struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Name      string         `json:"name" gorm:"index;unique"`
	Type      string         `json:"type"`
	Filters   pq.StringArray `json:"filters" gorm:"type:text[]"`
}

// Stream domain object defining an alert stream. Photometry tagged with a stream is only visible
// to users with access to the stream.
// swagger:model
type Stream struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Name      string    `json:"name" gorm:"index;unique"`
	Users     []User    `json:"users,omitempty" gorm:"many2many:stream_users;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
