package adminRoutes

import (
	adminController "playvault/controllers/admin"
	gamesController "playvault/controllers/games"
	"playvault/middleware"
	"playvault/models"
	adminValidator "playvault/validators/admin"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupAdminRoutes(app *fiber.App, db *gorm.DB, ctl *adminController.Controller, gamesCtl *gamesController.Controller) {
	admin := app.Group("/api/admin", middleware.JWTMiddleware, middleware.RequireRole(db, models.RoleAdmin))

	// Purchase workflow
	admin.Get("/credit-purchases", ctl.ListPurchases)
	admin.Patch("/credit-purchases/:id", adminValidator.AttachURL(), ctl.AttachPaymentLink)
	admin.Post("/credit-purchases/:id/photo", ctl.UploadPhoto)
	admin.Patch("/credit-purchases/:id/confirm", ctl.ConfirmPayment)

	// Redemption workflow
	admin.Get("/redemptions", ctl.ListRedemptions)
	admin.Patch("/redemptions/:id", adminValidator.AttachURL(), ctl.AttachRedemptionLink)
	admin.Patch("/redemptions/:id/paid", ctl.MarkRedemptionPaid)

	// User management
	admin.Get("/users", ctl.ListUsers)
	admin.Delete("/users/:id", ctl.DeleteUser)
	admin.Get("/stats", ctl.GetStats)

	// Game catalog
	admin.Post("/games", adminValidator.CreateGame(), gamesCtl.CreateGame)
}
