package payout

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"clipbounty/services/post"

	"gorm.io/datatypes"
)

// Record is one settled post. The payout ledger is append-only: rows are
// written once when a settlement runs and never updated.
type Record struct {
	ID        string         `gorm:"column:id;primaryKey"`
	BatchID   string         `gorm:"column:batch_id;index;not null"`
	OwnerID   string         `gorm:"column:owner_id;index;not null"`
	Platform  post.Platform  `gorm:"column:platform;type:varchar(20)"`
	URL       string         `gorm:"column:url"`
	VideoID   string         `gorm:"column:video_id"`
	Views     int64          `gorm:"column:views"`
	EarnedUSD float64        `gorm:"column:earned_usd"`
	Reference string         `gorm:"column:reference;index"`
	Metadata  datatypes.JSON `gorm:"column:metadata"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (Record) TableName() string {
	return "payout_records"
}

// Settlement summarizes one settlement run for an owner.
type Settlement struct {
	BatchID  string  `json:"batch_id"`
	OwnerID  string  `json:"owner_id"`
	Records  int     `json:"records"`
	TotalUSD float64 `json:"total_usd"`
}

// GeneratePayoutReference builds a date-prefixed random reference, used
// when no sequence generator is available or the sequence call fails.
func GeneratePayoutReference() (string, error) {
	datePart := time.Now().Format("20060102")

	r := make([]byte, 3)
	if _, err := rand.Read(r); err != nil {
		return "", err
	}
	randomPart := strings.ToUpper(fmt.Sprintf("%x", r))

	return fmt.Sprintf("PAY-%s-%s", datePart, randomPart), nil
}
