package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/plushify/plushify/app/repository"
)

// Global admin controller instance
var adminController *AdminController

// InitializeAdminController initializes the global admin controller with repositories
func InitializeAdminController() {
	adminController = NewAdminController(repository.GetGlobalRepositories())
}

// GetAdminController returns the global admin controller instance
func GetAdminController() *AdminController {
	if adminController == nil {
		InitializeAdminController()
	}
	return adminController
}

// Adapter functions to maintain compatibility with the router

func HandleAdminListUsers(c *fiber.Ctx) error {
	return GetAdminController().HandleListUsers(c)
}

func HandleAdminCreateUser(c *fiber.Ctx) error {
	return GetAdminController().HandleCreateUser(c)
}

func HandleAdminUpdateUser(c *fiber.Ctx) error {
	return GetAdminController().HandleUpdateUser(c)
}

func HandleAdminSetPassword(c *fiber.Ctx) error {
	return GetAdminController().HandleSetPassword(c)
}

func HandleAdminSetCredits(c *fiber.Ctx) error {
	return GetAdminController().HandleSetCredits(c)
}

func HandleAdminStats(c *fiber.Ctx) error {
	return GetAdminController().HandleStats(c)
}
