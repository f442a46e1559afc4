package creditRoutes

import (
	creditsController "playvault/controllers/credits"
	"playvault/middleware"
	creditsValidator "playvault/validators/credits"

	"github.com/gofiber/fiber/v2"
)

func SetupCreditRoutes(app *fiber.App, ctl *creditsController.Controller) {
	api := app.Group("/api", middleware.JWTMiddleware)

	api.Post("/credit-purchase", creditsValidator.Purchase(), ctl.CreatePurchase)
	api.Get("/credit-purchase/:id/status", ctl.PurchaseStatus)
	api.Post("/redeem-credits", creditsValidator.Redeem(), ctl.RedeemCredits)

	api.Get("/credits/balance", ctl.GetBalance)
	api.Get("/credits/history", ctl.GetHistory)
}
