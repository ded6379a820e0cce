package model

import (
	"math"
	"strings"
	"time"
)

// Obj domain object defining an astronomical object
// swagger:model
type Obj struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	RA        float64   `json:"ra"`
	Dec       float64   `json:"dec"`
	Redshift  *float64  `json:"redshift,omitempty"`
	Sources   []Source  `json:"sources,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// Source records an Obj being saved to a Group.
// swagger:model
type Source struct {
	ObjID     string    `json:"objId" gorm:"primaryKey"`
	GroupID   uint      `json:"groupId" gorm:"primaryKey"`
	Group     *Group    `json:"group,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	SavedByID uint      `json:"savedById"`
	SavedBy   *User     `json:"savedBy,omitempty"`
	SavedAt   time.Time `json:"savedAt" gorm:"autoCreateTime"`
}

// PhotometryZeroPoint is the AB zero point of stored fluxes, which are in microjansky.
const PhotometryZeroPoint = 23.9

// Photometry domain object defining a single flux measurement
// swagger:model
type Photometry struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	ObjID        string      `json:"objId" gorm:"index"`
	Obj          *Obj        `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	InstrumentID uint        `json:"instrumentId" gorm:"index"`
	Instrument   *Instrument `json:"instrument,omitempty"`
	MJD          float64     `json:"mjd"`
	Flux         *float64    `json:"flux"`
	FluxErr      float64     `json:"fluxerr"`
	Filter       string      `json:"filter"`
	MagSys       string      `json:"magsys"`
	Origin       string      `json:"origin"`
	Groups       []Group     `json:"groups,omitempty" gorm:"many2many:photometry_groups;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Streams      []Stream    `json:"streams,omitempty" gorm:"many2many:photometry_streams;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// IsDetection reports whether the signal-to-noise ratio reaches threshold.
func (p Photometry) IsDetection(threshold float64) bool {
	if p.Flux == nil || p.FluxErr <= 0 {
		return false
	}
	return *p.Flux/p.FluxErr >= threshold
}

// IsForced reports whether the point originates from forced photometry.
func (p Photometry) IsForced() bool {
	origin := strings.ToLower(p.Origin)
	return strings.Contains(origin, "fp") || strings.Contains(origin, "forced")
}

// Mag returns the AB magnitude of a detection. Non-positive fluxes have no magnitude.
func (p Photometry) Mag() (float64, bool) {
	if p.Flux == nil || *p.Flux <= 0 {
		return 0, false
	}
	return -2.5*math.Log10(*p.Flux) + PhotometryZeroPoint, true
}

// MagErr returns the magnitude uncertainty derived from the flux uncertainty.
func (p Photometry) MagErr() (float64, bool) {
	if p.Flux == nil || *p.Flux <= 0 {
		return 0, false
	}
	return 2.5 / math.Ln10 * p.FluxErr / *p.Flux, true
}

// LimitingMag returns the magnitude corresponding to nSigma times the flux uncertainty.
func (p Photometry) LimitingMag(nSigma float64) float64 {
	return -2.5*math.Log10(nSigma*p.FluxErr) + PhotometryZeroPoint
}

// MJDToTime converts a modified julian date to UTC.
func MJDToTime(mjd float64) time.Time {
	const mjdEpochUnix = -3506716800 // 1858-11-17T00:00:00Z
	seconds := mjd * 86400
	whole := math.Floor(seconds)
	nanos := int64((seconds - whole) * 1e9)
	return time.Unix(mjdEpochUnix+int64(whole), nanos).UTC()
}

// IsAccessibleBy reports whether user can read the point. Users need to be a member of one of its
// groups and have access to every stream it is tagged with.
func (p Photometry) IsAccessibleBy(user *User) bool {
	if user.IsAdministrator() {
		return true
	}

	member := false
	for _, g := range p.Groups {
		if user.IsMemberOf(g.ID) {
			member = true
			break
		}
	}
	if !member {
		return false
	}

	for _, s := range p.Streams {
		if !user.HasStreamAccess(s.ID) {
			return false
		}
	}
	return true
}
