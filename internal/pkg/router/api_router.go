package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/plushify/plushify/app/controllers"
	"github.com/plushify/plushify/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max: 60,
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")

	// Public: account lifecycle and catalogs
	v1.Post("/auth/register", controllers.HandleRegister)
	v1.Post("/auth/login", controllers.HandleLogin)
	v1.Post("/auth/logout", controllers.HandleLogout)
	v1.Get("/styles", controllers.HandleStyles)
	v1.Get("/qualities", controllers.HandleQualities)

	// Signed-in surface
	authed := v1.Group("", middleware.RequireAPISessionAuth)
	authed.Get("/me", controllers.HandleMe)
	authed.Post("/generate", controllers.HandleGenerate)
	authed.Get("/subscription", controllers.HandleSubscriptionGet)
	authed.Post("/subscription/consume", controllers.HandleSubscriptionConsume)
	authed.Get("/gallery", controllers.HandleGalleryList)
	authed.Delete("/gallery/:uuid", controllers.HandleGalleryDelete)

	// Back office
	admin := v1.Group("/admin", middleware.RequireAdminAPI)
	admin.Get("/users", controllers.HandleAdminListUsers)
	admin.Post("/users", controllers.HandleAdminCreateUser)
	admin.Patch("/users/:id", controllers.HandleAdminUpdateUser)
	admin.Post("/users/:id/password", controllers.HandleAdminSetPassword)
	admin.Patch("/users/:id/credits", controllers.HandleAdminSetCredits)
	admin.Get("/stats", controllers.HandleAdminStats)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
