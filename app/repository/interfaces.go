package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/plushify/plushify/app/models"
)

var (
	// ErrInvalidAmount is returned when a ledger mutation amount is not positive.
	ErrInvalidAmount = errors.New("amount must be a positive integer")
	// ErrInsufficientCredits is returned when the conditional decrement matched no row.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrNoSubscription is returned when an increment targets a missing ledger row.
	ErrNoSubscription = errors.New("no subscription for user")
	// ErrInvalidPlan is returned when a plan update names an unknown tier.
	ErrInvalidPlan = errors.New("unknown plan")
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByProvider(provider, providerID string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	ListWithSubscriptions(offset, limit int) ([]UserWithSubscription, error)
}

// SubscriptionRepository is the credit ledger. Consume and Add are single
// atomic statements at the storage layer; they are the only paths through
// which generation flows mutate a balance. SetBalance is the separate,
// audited admin override.
type SubscriptionRepository interface {
	Ensure(userID uint) (*models.Subscription, error)
	GetByUserID(userID uint) (*models.Subscription, error)
	Consume(userID uint, amount int) (*models.Subscription, error)
	Add(userID uint, amount int) (*models.Subscription, error)
	SetBalance(userID uint, credits int) (*models.Subscription, error)
	UpdatePlan(userID uint, plan string) (*models.Subscription, error)
}

// GenerationRepository defines the interface for generation-record operations
type GenerationRepository interface {
	Create(generation *models.Generation) error
	GetByUUIDAndUser(uuid string, userID uint) (*models.Generation, error)
	ListByUserID(userID uint, offset, limit int) ([]models.Generation, error)
	CountByUserID(userID uint) (int64, error)
	Delete(id uint) error
}

// UserWithSubscription pairs a user with its ledger row for admin listings.
type UserWithSubscription struct {
	User         models.User
	Plan         string
	Credits      int
	Generations  int64
	Subscription *models.Subscription
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Subscription SubscriptionRepository
	Generation   GenerationRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Subscription: NewSubscriptionRepository(db),
		Generation:   NewGenerationRepository(db),
	}
}
