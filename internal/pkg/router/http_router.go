package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/plushify/plushify/app/controllers"
	"github.com/plushify/plushify/internal/pkg/middleware"
	"github.com/plushify/plushify/internal/pkg/oauth"
	"github.com/plushify/plushify/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Initialize admin controller with repositories
	controllers.InitializeAdminController()

	// OAuth flows live outside /api because the provider redirects land here.
	app.Get("/auth/:provider", controllers.HandleOAuthBegin)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)
	app.Get("/auth/logout", controllers.HandleOAuthLogout)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
