package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The amount guards run before any database access, so a nil DB is enough
// to exercise them.

func TestConsumeRejectsNonPositiveAmount(t *testing.T) {
	repo := NewSubscriptionRepository(nil)

	for _, amount := range []int{0, -1, -100} {
		sub, err := repo.Consume(1, amount)
		assert.Nil(t, sub)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestAddRejectsNonPositiveAmount(t *testing.T) {
	repo := NewSubscriptionRepository(nil)

	for _, amount := range []int{0, -5} {
		sub, err := repo.Add(1, amount)
		assert.Nil(t, sub)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestSetBalanceRejectsNegative(t *testing.T) {
	repo := NewSubscriptionRepository(nil)

	sub, err := repo.SetBalance(1, -1)
	assert.Nil(t, sub)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestUpdatePlanRejectsUnknownTier(t *testing.T) {
	repo := NewSubscriptionRepository(nil)

	sub, err := repo.UpdatePlan(1, "platinum")
	assert.Nil(t, sub)
	assert.ErrorIs(t, err, ErrInvalidPlan)
}
