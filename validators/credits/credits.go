package creditsValidator

import (
	"playvault/middleware"

	"github.com/gofiber/fiber/v2"
)

// Purchase validates a credit purchase request
func Purchase() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CreditsRequested int64   `json:"creditsRequested"`
			USDAmount        float64 `json:"usdAmount"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.CreditsRequested <= 0 {
			errors["creditsRequested"] = "Credits requested must be greater than 0!"
		}
		if reqData.USDAmount <= 0 {
			errors["usdAmount"] = "USD amount must be greater than 0!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPurchase", reqData)
		return c.Next()
	}
}

// Redeem validates a credit redemption request
func Redeem() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CreditsToRedeem int64  `json:"creditsToRedeem"`
			Description     string `json:"description"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.CreditsToRedeem <= 0 {
			errors["creditsToRedeem"] = "Credits to redeem must be greater than 0!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedRedeem", reqData)
		return c.Next()
	}
}
