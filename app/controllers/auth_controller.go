package controllers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/plushify/plushify/app/models"
	"github.com/plushify/plushify/app/repository"
	"github.com/plushify/plushify/internal/pkg/session"
	"github.com/plushify/plushify/internal/pkg/usercontext"
	"github.com/plushify/plushify/internal/pkg/utils"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Plan      string `json:"plan"`
	Credits   int    `json:"credits"`
}

// HandleRegister creates an account and opens a session. The starting credit
// grant happens through the ledger's insert-or-fetch, so repeated signups or
// races never grant twice.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", "Invalid request body.")
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", err.Error())
	}
	user.AvatarURL = utils.GravatarURL(user.Email, 200)

	repos := repository.GetGlobalRepositories()
	if err := repos.User.Create(user); err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return errorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", "An account with this email already exists.")
		}
		fiberlog.Errorf("[Auth] register failed: %v", err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Registration failed. Please try again.")
	}

	sub, err := repos.Subscription.Ensure(user.ID)
	if err != nil {
		fiberlog.Errorf("[Auth] subscription bootstrap failed for user %d: %v", user.ID, err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Registration failed. Please try again.")
	}

	if err := openSession(c, user, sub.Plan); err != nil {
		fiberlog.Errorf("[Auth] session open failed for user %d: %v", user.ID, err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Registration failed. Please try again.")
	}

	return c.Status(fiber.StatusCreated).JSON(toUserResponse(user, sub))
}

// HandleLogin authenticates with email and password. Lookup failures and bad
// passwords share one message on purpose.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", "Invalid request body.")
	}

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByEmail(req.Email)
	if err != nil || !models.CheckPasswordHash(req.Password, user.Password) {
		return errorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password.")
	}
	if !user.IsActive() {
		return errorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "This account is disabled.")
	}

	sub, err := repos.Subscription.Ensure(user.ID)
	if err != nil {
		fiberlog.Errorf("[Auth] subscription lookup failed for user %d: %v", user.ID, err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Login failed. Please try again.")
	}

	if err := openSession(c, user, sub.Plan); err != nil {
		fiberlog.Errorf("[Auth] session open failed for user %d: %v", user.ID, err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Login failed. Please try again.")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := repos.User.Update(user); err != nil {
		fiberlog.Warnf("[Auth] last_login_at update failed for user %d: %v", user.ID, err)
	}

	return c.JSON(toUserResponse(user, sub))
}

// HandleLogout destroys the session. Logging out twice is not an error.
func HandleLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		if err := sess.Destroy(); err != nil {
			fiberlog.Warnf("[Auth] session destroy failed: %v", err)
		}
	}
	return c.JSON(fiber.Map{"message": "Signed out."})
}

// HandleMe returns the signed-in user's profile with the current ledger state
func HandleMe(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	repos := repository.GetGlobalRepositories()

	user, err := repos.User.GetByID(userID)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "You must be signed in.")
	}
	sub, err := repos.Subscription.Ensure(user.ID)
	if err != nil {
		fiberlog.Errorf("[Auth] subscription lookup failed for user %d: %v", user.ID, err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Something went wrong.")
	}

	return c.JSON(toUserResponse(user, sub))
}

// openSession writes the auth keys and cached plan into a fresh session
func openSession(c *fiber.Ctx, user *models.User, plan string) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return err
	}

	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set(usercontext.KeyIsAdmin, user.IsAdmin())
	sess.Set("user_plan", plan)

	return sess.Save()
}

func toUserResponse(user *models.User, sub *models.Subscription) userResponse {
	return userResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		AvatarURL: user.AvatarURL,
		Plan:      sub.Plan,
		Credits:   sub.Credits,
	}
}
