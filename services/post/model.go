package post

import (
	"strings"
	"time"
)

type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
)

// ParsePlatform normalizes and validates a platform name.
func ParsePlatform(s string) (Platform, bool) {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case PlatformYouTube:
		return PlatformYouTube, true
	case PlatformTikTok:
		return PlatformTikTok, true
	case PlatformInstagram:
		return PlatformInstagram, true
	default:
		return "", false
	}
}

// TrackedPost is a monetized piece of content. One row per (platform, url).
//
// StartingViews is the baseline for flat-rate earnings: zero when the post
// entered tracking organically, or the view count at the moment a bounty
// was assigned.
type TrackedPost struct {
	ID             string    `gorm:"column:id;primaryKey"`
	Platform       Platform  `gorm:"column:platform;type:varchar(20);not null;uniqueIndex:idx_tracked_posts_platform_url,priority:1"`
	URL            string    `gorm:"column:url;not null;uniqueIndex:idx_tracked_posts_platform_url,priority:2"`
	OwnerID        string    `gorm:"column:owner_id;index;not null"`
	VideoID        string    `gorm:"column:video_id"`
	Views          int64     `gorm:"column:views"`
	Likes          int64     `gorm:"column:likes"`
	Shares         int64     `gorm:"column:shares"`
	IsBounty       bool      `gorm:"column:is_bounty;index"`
	BountyTag      string    `gorm:"column:bounty_tag"`
	StartingViews  int64     `gorm:"column:starting_views"`
	FinalEarnedUSD float64   `gorm:"column:final_earned_usd"`
	UploadedAt     time.Time `gorm:"column:uploaded_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (TrackedPost) TableName() string {
	return "tracked_posts"
}
