package models

import (
	"time"
)

// Generation is the durable record of one successful plushie transformation.
// It is created only after both the original and the generated image are
// stored in blob storage, and is immutable afterwards except for deletion.
type Generation struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UUID         string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	UserID       uint       `gorm:"index;not null" json:"user_id"`
	OriginalURL  string     `gorm:"type:varchar(512);not null" json:"original_url"`
	GeneratedURL string     `gorm:"type:varchar(512);not null" json:"generated_url"`
	Style        string     `gorm:"type:varchar(100);not null" json:"style"`
	Quality      string     `gorm:"type:varchar(50);not null" json:"quality"`
	CreditsCost  int        `gorm:"not null" json:"credits_cost"`
	Width        int        `gorm:"default:0" json:"width"`
	Height       int        `gorm:"default:0" json:"height"`
	TakenAt      *time.Time `gorm:"type:timestamp;default:null" json:"taken_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
