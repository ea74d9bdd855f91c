package models

import (
	"time"

	"github.com/climaxott/ledger/pkg/types"
)

// Content is a catalog entry. Playback past the climax timestamp requires
// an approved premium-content payment.
type Content struct {
	ID          string            `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Title       string            `gorm:"column:title;type:varchar(256);not null" json:"title"`
	Description string            `gorm:"column:description;type:text" json:"description"`
	VideoURL    string            `gorm:"column:video_url;type:varchar(512)" json:"videoUrl,omitempty"`
	Thumbnail   string            `gorm:"column:thumbnail;type:varchar(512)" json:"thumbnail"`
	Category    string            `gorm:"column:category;type:varchar(64)" json:"category"`
	Type        types.ContentType `gorm:"column:type;type:varchar(16);not null" json:"type"`
	// DurationSeconds and ClimaxTimestamp are in seconds.
	DurationSeconds int64  `gorm:"column:duration_seconds;type:bigint" json:"duration"`
	ClimaxTimestamp int64  `gorm:"column:climax_timestamp;type:bigint" json:"climaxTimestamp"`
	Language        string `gorm:"column:language;type:varchar(32)" json:"language"`
	// PremiumPrice is in paise.
	PremiumPrice int64 `gorm:"column:premium_price;type:bigint;not null" json:"premiumPrice"`
	IsActive     bool  `gorm:"column:is_active;not null;default:true" json:"isActive"`
	// Fan fest paid participation.
	FestPaymentEnabled   bool      `gorm:"column:fest_payment_enabled;not null;default:false" json:"festPaymentEnabled"`
	FestParticipationFee int64     `gorm:"column:fest_participation_fee;type:bigint;default:0" json:"festParticipationFee"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func (Content) TableName() string { return "content" }
