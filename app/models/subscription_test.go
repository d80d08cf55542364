package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionValidate(t *testing.T) {
	sub := &Subscription{UserID: 1, Plan: PLAN_FREE, Credits: FreeStartingCredits}
	assert.NoError(t, sub.Validate())

	sub.Plan = "platinum"
	assert.Error(t, sub.Validate())

	sub.Plan = PLAN_PRO
	sub.Credits = -1
	assert.Error(t, sub.Validate())
}

func TestIsValidPlan(t *testing.T) {
	assert.True(t, IsValidPlan(PLAN_FREE))
	assert.True(t, IsValidPlan(PLAN_PRO))
	assert.True(t, IsValidPlan(PLAN_ENTERPRISE))
	assert.False(t, IsValidPlan(""))
	assert.False(t, IsValidPlan("platinum"))
}
