package authRoutes

import (
	authController "playvault/controllers/auth"
	authValidator "playvault/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, ctl *authController.Controller) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidator.Signup(), ctl.Signup)
	authGroup.Post("/login", authValidator.Login(), ctl.Login)
}
