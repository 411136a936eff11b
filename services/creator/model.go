package creator

import (
	"time"

	"clipbounty/services/post"
)

// Creator is a registered content creator, keyed by their external chat ID.
type Creator struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Username  string    `gorm:"column:username"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Creator) TableName() string {
	return "creators"
}

// SocialAccount links a creator to a handle on one platform. A handle only
// counts for payouts once verified.
type SocialAccount struct {
	ID               string        `gorm:"column:id;primaryKey"`
	CreatorID        string        `gorm:"column:creator_id;index;not null;uniqueIndex:idx_social_accounts_identity,priority:1"`
	Platform         post.Platform `gorm:"column:platform;type:varchar(20);not null;uniqueIndex:idx_social_accounts_identity,priority:2"`
	Username         string        `gorm:"column:username;not null;uniqueIndex:idx_social_accounts_identity,priority:3"`
	VerificationCode string        `gorm:"column:verification_code"`
	IsVerified       bool          `gorm:"column:is_verified;index"`
	VerifiedAt       *time.Time    `gorm:"column:verified_at"`
	CreatedAt        time.Time     `gorm:"column:created_at;autoCreateTime"`
}

func (SocialAccount) TableName() string {
	return "social_accounts"
}

const MethodPayPal = "paypal"

// PaymentMethod stores where a creator gets paid. One row per creator.
type PaymentMethod struct {
	ID          string    `gorm:"column:id;primaryKey"`
	CreatorID   string    `gorm:"column:creator_id;uniqueIndex;not null"`
	Method      string    `gorm:"column:method;type:varchar(20);not null"`
	PayPalEmail string    `gorm:"column:paypal_email"`
	FirstName   string    `gorm:"column:first_name"`
	LastName    string    `gorm:"column:last_name"`
	AddedAt     time.Time `gorm:"column:added_at;autoCreateTime"`
}

func (PaymentMethod) TableName() string {
	return "payment_methods"
}
