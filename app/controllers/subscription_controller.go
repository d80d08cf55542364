package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/plushify/plushify/app/repository"
	"github.com/plushify/plushify/internal/pkg/usercontext"
)

type consumeRequest struct {
	Amount int `json:"amount"`
}

type subscriptionResponse struct {
	Plan    string `json:"plan"`
	Credits int    `json:"credits"`
}

// HandleSubscriptionGet returns the caller's plan and balance, creating the
// ledger with the starting grant on first touch
func HandleSubscriptionGet(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	sub, err := repository.GetGlobalRepositories().Subscription.Ensure(userID)
	if err != nil {
		fiberlog.Errorf("[Subscription] ensure failed for user %d: %v", userID, err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Something went wrong.")
	}

	return c.JSON(subscriptionResponse{Plan: sub.Plan, Credits: sub.Credits})
}

// HandleSubscriptionConsume debits credits directly. The conditional update
// makes concurrent calls safe; an uncovered debit costs nothing.
func HandleSubscriptionConsume(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	var req consumeRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", "Invalid request body.")
	}
	if req.Amount <= 0 {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", "Amount must be a positive integer.")
	}

	subs := repository.GetGlobalRepositories().Subscription
	if _, err := subs.Ensure(userID); err != nil {
		fiberlog.Errorf("[Subscription] ensure failed for user %d: %v", userID, err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Something went wrong.")
	}

	sub, err := subs.Consume(userID, req.Amount)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientCredits) {
			return errorResponse(c, fiber.StatusPaymentRequired, "INSUFFICIENT_CREDITS", "You don't have enough credits.")
		}
		fiberlog.Errorf("[Subscription] consume failed for user %d: %v", userID, err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Something went wrong.")
	}

	return c.JSON(subscriptionResponse{Plan: sub.Plan, Credits: sub.Credits})
}
