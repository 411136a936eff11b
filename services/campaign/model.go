package campaign

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusExpired  Status = "EXPIRED"
)

// Campaign is a clipping campaign: a brand brief creators clip content for.
// RateKey links the campaign to the rate registry entry that prices its
// submissions.
type Campaign struct {
	ID           string         `gorm:"column:id;primaryKey"`
	Name         string         `gorm:"column:name;type:varchar(255);not null"`
	Description  string         `gorm:"column:description;type:text"`
	Category     string         `gorm:"column:category;type:varchar(100)"`
	Platforms    datatypes.JSON `gorm:"column:platforms"`
	RateKey      string         `gorm:"column:rate_key;index"`
	InviteLink   string         `gorm:"column:invite_link"`
	ThumbnailURL string         `gorm:"column:thumbnail_url"`
	CreatedBy    string         `gorm:"column:created_by;index"`
	Status       Status         `gorm:"column:status;type:varchar(50);not null;default:'DRAFT'"`
	StartAt      *time.Time     `gorm:"column:start_at"`
	EndAt        *time.Time     `gorm:"column:end_at"`
	Metadata     datatypes.JSON `gorm:"column:metadata"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

// IsActive checks whether the campaign accepts submissions at the given time.
func (c *Campaign) IsActive(now time.Time) bool {
	if c.Status != StatusActive {
		return false
	}
	if c.StartAt != nil && now.Before(*c.StartAt) {
		return false
	}
	if c.EndAt != nil && now.After(*c.EndAt) {
		return false
	}
	return true
}
