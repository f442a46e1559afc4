package adminValidator

import (
	"strings"

	"playvault/middleware"

	"github.com/gofiber/fiber/v2"
)

// AttachURL validates the payment/payout link body used by both purchase and
// redemption PATCH endpoints
func AttachURL() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			AdminURL string `json:"adminUrl"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.AdminURL) == "" {
			errors["adminUrl"] = "Admin URL is required!"
		} else if !strings.HasPrefix(reqData.AdminURL, "http://") && !strings.HasPrefix(reqData.AdminURL, "https://") {
			errors["adminUrl"] = "Admin URL must be a valid http(s) link!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAdminURL", reqData)
		return c.Next()
	}
}

// CreateGame validates a new game catalog entry
func CreateGame() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Name            string `json:"name"`
			Slug            string `json:"slug"`
			LoginURL        string `json:"loginUrl"`
			AccountUsername string `json:"accountUsername"`
			AccountPassword string `json:"accountPassword"`
			EntryCredits    int64  `json:"entryCredits"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Name) == "" {
			errors["name"] = "Game name is required!"
		}
		if strings.TrimSpace(reqData.Slug) == "" {
			errors["slug"] = "Game slug is required!"
		}
		if !strings.HasPrefix(reqData.LoginURL, "http://") && !strings.HasPrefix(reqData.LoginURL, "https://") {
			errors["loginUrl"] = "Login URL must be a valid http(s) link!"
		}
		if reqData.AccountUsername == "" {
			errors["accountUsername"] = "Account username is required!"
		}
		if reqData.AccountPassword == "" {
			errors["accountPassword"] = "Account password is required!"
		}
		if reqData.EntryCredits <= 0 {
			errors["entryCredits"] = "Entry credits must be greater than 0!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedGame", reqData)
		return c.Next()
	}
}
