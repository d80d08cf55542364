package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/plushify/plushify/app/models"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Ensure returns the ledger row for userID, creating it with the free plan
// and the starting credit grant if absent. Concurrent calls for a brand-new
// user are safe: the insert ignores the unique-constraint conflict and the
// follow-up fetch returns whichever row won.
func (r *subscriptionRepository) Ensure(userID uint) (*models.Subscription, error) {
	sub := models.Subscription{
		UserID:  userID,
		Plan:    models.PLAN_FREE,
		Credits: models.FreeStartingCredits,
	}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&sub).Error; err != nil {
		return nil, err
	}

	return r.GetByUserID(userID)
}

// GetByUserID retrieves the ledger row for a user
func (r *subscriptionRepository) GetByUserID(userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.Where("user_id = ?", userID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// Consume debits amount in a single conditional statement:
//
//	UPDATE subscriptions SET credits = credits - ? WHERE user_id = ? AND credits >= ?
//
// Zero matched rows means no ledger or insufficient balance; both surface as
// ErrInsufficientCredits. Callers that need to tell the cases apart call
// Ensure first.
func (r *subscriptionRepository) Consume(userID uint, amount int) (*models.Subscription, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	res := r.db.Model(&models.Subscription{}).
		Where("user_id = ? AND credits >= ?", userID, amount).
		Updates(map[string]interface{}{
			"credits":    gorm.Expr("credits - ?", amount),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInsufficientCredits
	}

	return r.GetByUserID(userID)
}

// Add credits amount unconditionally and atomically. A missing ledger row
// yields ErrNoSubscription; for an already-charged user this should never
// happen, so callers log it as a critical condition.
func (r *subscriptionRepository) Add(userID uint, amount int) (*models.Subscription, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	res := r.db.Model(&models.Subscription{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"credits":    gorm.Expr("credits + ?", amount),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNoSubscription
	}

	return r.GetByUserID(userID)
}

// SetBalance is the administrative override: it writes an absolute balance,
// creating the ledger row if missing. It bypasses the consume/add primitives
// on purpose and must only be reached through the admin surface.
func (r *subscriptionRepository) SetBalance(userID uint, credits int) (*models.Subscription, error) {
	if credits < 0 {
		return nil, ErrInvalidAmount
	}

	if _, err := r.GetByUserID(userID); err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		sub := models.Subscription{UserID: userID, Plan: models.PLAN_FREE, Credits: credits}
		if err := r.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&sub).Error; err != nil {
			return nil, err
		}
	}

	res := r.db.Model(&models.Subscription{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"credits":    credits,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}

	return r.GetByUserID(userID)
}

// UpdatePlan switches the plan tier for a user's ledger
func (r *subscriptionRepository) UpdatePlan(userID uint, plan string) (*models.Subscription, error) {
	if !models.IsValidPlan(plan) {
		return nil, ErrInvalidPlan
	}

	res := r.db.Model(&models.Subscription{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"plan":       plan,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNoSubscription
	}

	return r.GetByUserID(userID)
}
