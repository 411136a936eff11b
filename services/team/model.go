package team

import "time"

// DefaultCommissionRate is the percentage a team owner takes from member
// payouts when none is specified at creation.
const DefaultCommissionRate = 5.0

type Team struct {
	ID             string    `gorm:"column:id;primaryKey"`
	Name           string    `gorm:"column:name;type:varchar(255);not null"`
	OwnerID        string    `gorm:"column:owner_id;uniqueIndex;not null"`
	CommissionRate float64   `gorm:"column:commission_rate"`
	InviteCode     string    `gorm:"column:invite_code;uniqueIndex;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Team) TableName() string {
	return "teams"
}

type Member struct {
	ID       string    `gorm:"column:id;primaryKey"`
	TeamID   string    `gorm:"column:team_id;not null;uniqueIndex:idx_team_members_membership,priority:1"`
	UserID   string    `gorm:"column:user_id;not null;uniqueIndex:idx_team_members_membership,priority:2"`
	JoinedAt time.Time `gorm:"column:joined_at;autoCreateTime"`
}

func (Member) TableName() string {
	return "team_members"
}
