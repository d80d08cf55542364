package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	gothfiber "github.com/shareed2k/goth_fiber"
	"gorm.io/gorm"

	"github.com/plushify/plushify/app/models"
	"github.com/plushify/plushify/app/repository"
	"github.com/plushify/plushify/internal/pkg/utils"
)

// HandleOAuthBegin redirects to the provider's consent screen
func HandleOAuthBegin(c *fiber.Ctx) error {
	return gothfiber.BeginAuthHandler(c)
}

// HandleOAuthCallback completes the provider flow and logs the user in.
// Accounts are matched by provider identity first, then by verified email;
// a brand-new identity creates an account with the starting credit grant.
func HandleOAuthCallback(c *fiber.Ctx) error {
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "UNAUTHORIZED", "Sign-in with the provider failed.")
	}

	repos := repository.GetGlobalRepositories()

	user, err := repos.User.GetByProvider(u.Provider, u.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if u.Email != "" {
			if byEmail, emailErr := repos.User.GetByEmail(u.Email); emailErr == nil {
				// Link the provider identity to the existing account.
				byEmail.Provider = u.Provider
				byEmail.ProviderID = u.UserID
				if byEmail.AvatarURL == "" {
					byEmail.AvatarURL = u.AvatarURL
				}
				if err := repos.User.Update(byEmail); err != nil {
					fiberlog.Errorf("[OAuth] provider link failed for user %d: %v", byEmail.ID, err)
					return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Sign-in failed. Please try again.")
				}
				user = byEmail
			}
		}
		if user == nil {
			user, err = createOAuthUser(u.Provider, u.UserID, u.Email, firstNonEmpty(u.Name, u.NickName, u.Email, "User"), u.AvatarURL)
			if err != nil {
				fiberlog.Errorf("[OAuth] account creation failed: %v", err)
				return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Sign-in failed. Please try again.")
			}
		}
	} else if err != nil {
		fiberlog.Errorf("[OAuth] provider lookup failed: %v", err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Sign-in failed. Please try again.")
	}

	if !user.IsActive() {
		return errorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "This account is disabled.")
	}

	sub, err := repos.Subscription.Ensure(user.ID)
	if err != nil {
		fiberlog.Errorf("[OAuth] subscription bootstrap failed for user %d: %v", user.ID, err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Sign-in failed. Please try again.")
	}

	if err := openSession(c, user, sub.Plan); err != nil {
		fiberlog.Errorf("[OAuth] session open failed for user %d: %v", user.ID, err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Sign-in failed. Please try again.")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := repos.User.Update(user); err != nil {
		fiberlog.Warnf("[OAuth] last_login_at update failed for user %d: %v", user.ID, err)
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleOAuthLogout clears the provider session alongside the app session
func HandleOAuthLogout(c *fiber.Ctx) error {
	if err := gothfiber.Logout(c); err != nil {
		fiberlog.Warnf("[OAuth] provider logout failed: %v", err)
	}
	return HandleLogout(c)
}

func createOAuthUser(provider, providerID, email, name, avatarURL string) (*models.User, error) {
	// Password is a random placeholder; OAuth accounts never log in with it.
	placeholder := fmt.Sprintf("oauth_%d", time.Now().UnixNano())
	hash, err := models.HashPassword(placeholder)
	if err != nil {
		return nil, err
	}
	if email == "" {
		// MySQL unique index needs a non-empty value.
		email = fmt.Sprintf("%s_%s@%s.oauth.local", provider, providerID, provider)
	}
	if avatarURL == "" {
		avatarURL = utils.GravatarURL(email, 200)
	}

	user := &models.User{
		Name:       name,
		Email:      email,
		Password:   hash,
		AvatarURL:  avatarURL,
		Provider:   provider,
		ProviderID: providerID,
		Role:       models.ROLE_USER,
		Status:     models.STATUS_ACTIVE,
	}
	if err := repository.GetGlobalRepositories().User.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
