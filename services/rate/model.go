package rate

import (
	"strings"
	"time"
)

type Kind string

const (
	KindFlat         Kind = "FLAT"
	KindProportional Kind = "PROPORTIONAL"
)

// StandardKey is the rate applied to posts without a bounty tag.
const StandardKey = "standard"

// Definition is a payout rate keyed by a normalized tag.
//
// FLAT pays AmountUSD per PerViews views gained since tracking started.
// PROPORTIONAL pays AmountPer1000 per thousand absolute views.
type Definition struct {
	ID            string    `gorm:"column:id;primaryKey"`
	Key           string    `gorm:"column:key;uniqueIndex;not null"`
	Kind          Kind      `gorm:"column:kind;type:varchar(20);not null"`
	AmountUSD     float64   `gorm:"column:amount_usd"`
	PerViews      int64     `gorm:"column:per_views"`
	AmountPer1000 float64   `gorm:"column:amount_per_1000"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Definition) TableName() string {
	return "rate_definitions"
}

// NormalizeKey folds case and trims surrounding whitespace so lookups
// and stored keys always agree.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
