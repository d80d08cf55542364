package controllers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/plushify/plushify/app/models"
	"github.com/plushify/plushify/app/repository"
	"github.com/plushify/plushify/internal/pkg/metrics/counter"
)

// AdminController handles the back-office endpoints using the repository pattern
type AdminController struct {
	repos *repository.Repositories
}

// NewAdminController creates a new admin controller with repository dependencies
func NewAdminController(repos *repository.Repositories) *AdminController {
	return &AdminController{repos: repos}
}

type adminUserItem struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	Plan        string     `json:"plan"`
	Credits     int        `json:"credits"`
	Generations int64      `json:"generations"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type adminCreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Plan     string `json:"plan"`
}

type adminUpdateUserRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Role   *string `json:"role"`
	Status *string `json:"status"`
	Plan   *string `json:"plan"`
}

type adminPasswordRequest struct {
	Password string `json:"password"`
}

type adminCreditsRequest struct {
	Credits *int `json:"credits"`
}

// HandleListUsers returns users joined with their ledger, newest first
func (ac *AdminController) HandleListUsers(c *fiber.Ctx) error {
	page, pageSize, offset := pagination(c)

	rows, err := ac.repos.User.ListWithSubscriptions(offset, pageSize)
	if err != nil {
		fiberlog.Errorf("[Admin] user listing failed: %v", err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Something went wrong.")
	}
	total, err := ac.repos.User.Count()
	if err != nil {
		fiberlog.Errorf("[Admin] user count failed: %v", err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Something went wrong.")
	}

	items := make([]adminUserItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, adminUserItem{
			ID:          row.User.ID,
			Name:        row.User.Name,
			Email:       row.User.Email,
			Role:        row.User.Role,
			Status:      row.User.Status,
			Plan:        row.Plan,
			Credits:     row.Credits,
			Generations: row.Generations,
			LastLoginAt: row.User.LastLoginAt,
			CreatedAt:   row.User.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"items":     items,
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	})
}

// HandleCreateUser creates an account from the back office
func (ac *AdminController) HandleCreateUser(c *fiber.Ctx) error {
	var req adminCreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", "Invalid request body.")
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", err.Error())
	}
	if req.Role != "" {
		if req.Role != models.ROLE_USER && req.Role != models.ROLE_ADMIN {
			return errorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", "Invalid role.")
		}
		user.Role = req.Role
	}

	if err := ac.repos.User.Create(user); err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return errorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", "An account with this email already exists.")
		}
		fiberlog.Errorf("[Admin] user create failed: %v", err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Something went wrong.")
	}

	sub, err := ac.repos.Subscription.Ensure(user.ID)
	if err != nil {
		fiberlog.Errorf("[Admin] subscription bootstrap failed for user %d: %v", user.ID, err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Something went wrong.")
	}
	if req.Plan != "" && req.Plan != sub.Plan {
		if !models.IsValidPlan(req.Plan) {
			return errorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", "Invalid plan.")
		}
		if sub, err = ac.repos.Subscription.UpdatePlan(user.ID, req.Plan); err != nil {
			fiberlog.Errorf("[Admin] plan update failed for user %d: %v", user.ID, err)
			return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Something went wrong.")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(toUserResponse(user, sub))
}

// HandleUpdateUser patches profile fields, role, status, and plan
func (ac *AdminController) HandleUpdateUser(c *fiber.Ctx) error {
	user := ac.userFromParams(c)
	if user == nil {
		return nil
	}

	var req adminUpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", "Invalid request body.")
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Role != nil {
		if *req.Role != models.ROLE_USER && *req.Role != models.ROLE_ADMIN {
			return errorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", "Invalid role.")
		}
		user.Role = *req.Role
	}
	if req.Status != nil {
		if *req.Status != models.STATUS_ACTIVE && *req.Status != models.STATUS_DISABLED {
			return errorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", "Invalid status.")
		}
		user.Status = *req.Status
	}
	if err := user.Validate(); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", err.Error())
	}

	if err := ac.repos.User.Update(user); err != nil {
		fiberlog.Errorf("[Admin] user update failed for %d: %v", user.ID, err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Something went wrong.")
	}

	sub, err := ac.repos.Subscription.Ensure(user.ID)
	if err != nil {
		fiberlog.Errorf("[Admin] subscription lookup failed for user %d: %v", user.ID, err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Something went wrong.")
	}
	if req.Plan != nil && *req.Plan != sub.Plan {
		if !models.IsValidPlan(*req.Plan) {
			return errorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", "Invalid plan.")
		}
		if sub, err = ac.repos.Subscription.UpdatePlan(user.ID, *req.Plan); err != nil {
			fiberlog.Errorf("[Admin] plan update failed for user %d: %v", user.ID, err)
			return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Something went wrong.")
		}
	}

	return c.JSON(toUserResponse(user, sub))
}

// HandleSetPassword replaces a user's password
func (ac *AdminController) HandleSetPassword(c *fiber.Ctx) error {
	user := ac.userFromParams(c)
	if user == nil {
		return nil
	}

	var req adminPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", "Invalid request body.")
	}

	if err := user.SetPassword(req.Password); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", err.Error())
	}
	if err := ac.repos.User.Update(user); err != nil {
		fiberlog.Errorf("[Admin] password update failed for %d: %v", user.ID, err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Something went wrong.")
	}

	return c.JSON(fiber.Map{"message": "Password updated."})
}

// HandleSetCredits writes an absolute credit balance. This is the only path
// that bypasses the consume/add primitives.
func (ac *AdminController) HandleSetCredits(c *fiber.Ctx) error {
	user := ac.userFromParams(c)
	if user == nil {
		return nil
	}

	var req adminCreditsRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", "Invalid request body.")
	}
	if req.Credits == nil || *req.Credits < 0 {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", "Credits must be a non-negative integer.")
	}

	sub, err := ac.repos.Subscription.SetBalance(user.ID, *req.Credits)
	if err != nil {
		fiberlog.Errorf("[Admin] credit override failed for user %d: %v", user.ID, err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Something went wrong.")
	}

	return c.JSON(subscriptionResponse{Plan: sub.Plan, Credits: sub.Credits})
}

// HandleStats returns the operations dashboard: user totals plus the
// generation outcome counters from Redis
func (ac *AdminController) HandleStats(c *fiber.Ctx) error {
	totalUsers, err := ac.repos.User.Count()
	if err != nil {
		fiberlog.Errorf("[Admin] user count failed: %v", err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Something went wrong.")
	}

	counters, err := counter.GenerationCounters()
	if err != nil {
		fiberlog.Warnf("[Admin] counter read failed: %v", err)
		counters = map[string]int64{}
	}

	return c.JSON(fiber.Map{
		"total_users": totalUsers,
		"generations": counters,
	})
}

// userFromParams resolves the :id path param. On failure the error response
// has already been written and the caller just returns nil.
func (ac *AdminController) userFromParams(c *fiber.Ctx) *models.User {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		errorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", "Invalid user id.")
		return nil
	}
	user, err := ac.repos.User.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			errorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "User not found.")
		} else {
			fiberlog.Errorf("[Admin] user lookup failed for %d: %v", id, err)
			errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Something went wrong.")
		}
		return nil
	}
	return user
}
