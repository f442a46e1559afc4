package gameRoutes

import (
	gamesController "playvault/controllers/games"
	"playvault/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupGameRoutes(app *fiber.App, ctl *gamesController.Controller) {
	games := app.Group("/api/games", middleware.JWTMiddleware)

	games.Get("/", ctl.ListGames)
	games.Post("/:id/play", ctl.PlayGame)
}
