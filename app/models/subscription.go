package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	PLAN_FREE       = "free"
	PLAN_PRO        = "pro"
	PLAN_ENTERPRISE = "enterprise"

	// FreeStartingCredits is granted once when a ledger row is created.
	FreeStartingCredits = 3
)

// Subscription is the per-user credit ledger: exactly one row per user,
// created lazily on first access. Credits never go below zero; all balance
// mutations happen through the atomic repository primitives, never through
// read-modify-write in application code.
type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id" validate:"required"`
	Plan      string    `gorm:"type:varchar(50);default:'free'" json:"plan" validate:"oneof=free pro enterprise"`
	Credits   int       `gorm:"not null;default:0" json:"credits" validate:"gte=0"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Subscription) Validate() error {
	v := validator.New()

	return v.Struct(s)
}

// IsValidPlan reports whether the given plan string is one of the known tiers.
func IsValidPlan(plan string) bool {
	switch plan {
	case PLAN_FREE, PLAN_PRO, PLAN_ENTERPRISE:
		return true
	default:
		return false
	}
}
