package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/plushify/plushify/app/models"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByProvider retrieves a user by OAuth provider identity
func (r *userRepository) GetByProvider(provider, providerID string) (*models.User, error) {
	var user models.User
	err := r.db.Where("provider = ? AND provider_id = ?", provider, providerID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates an existing user in the database
func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete soft deletes a user by their ID
func (r *userRepository) Delete(id uint) error {
	return r.db.Delete(&models.User{}, id).Error
}

// List retrieves a paginated list of users
func (r *userRepository) List(offset, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

// Count returns the total number of users
func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// ListWithSubscriptions retrieves users joined with their credit ledger and
// generation counts, for the admin back-office listing
func (r *userRepository) ListWithSubscriptions(offset, limit int) ([]UserWithSubscription, error) {
	var users []models.User
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, err
	}

	var out []UserWithSubscription
	for _, user := range users {
		row := UserWithSubscription{User: user, Plan: models.PLAN_FREE}

		var sub models.Subscription
		if err := r.db.Where("user_id = ?", user.ID).First(&sub).Error; err == nil {
			row.Plan = sub.Plan
			row.Credits = sub.Credits
			row.Subscription = &sub
		} else if err != gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("failed to load subscription for user %d: %w", user.ID, err)
		}

		var generations int64
		if err := r.db.Model(&models.Generation{}).Where("user_id = ?", user.ID).Count(&generations).Error; err != nil {
			return nil, fmt.Errorf("failed to count generations for user %d: %w", user.ID, err)
		}
		row.Generations = generations

		out = append(out, row)
	}

	return out, nil
}
