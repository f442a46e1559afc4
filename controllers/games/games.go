package gamesController

import (
	"errors"
	"log"

	"playvault/middleware"
	"playvault/models"
	"playvault/services/ledger"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Controller struct {
	DB     *gorm.DB
	Ledger *ledger.Ledger
}

func New(db *gorm.DB, led *ledger.Ledger) *Controller {
	return &Controller{DB: db, Ledger: led}
}

// ListGames returns the active game catalog
func (ct *Controller) ListGames(c *fiber.Ctx) error {
	var games []models.Game
	if err := ct.DB.Where("is_active = true").Order("name ASC").Find(&games).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch games!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Games fetched!", fiber.Map{
		"games": games,
	})
}

// PlayGame debits the game's entry fee and returns the login form fields the
// client auto-submits against the third-party site.
func (ct *Controller) PlayGame(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid game id!", nil)
	}

	var game models.Game
	if err := ct.DB.Where("id = ? AND is_active = true", id).First(&game).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Game not found!", nil)
	}

	txn, err := ct.Ledger.RecordGamePlay(userId, &game)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInsufficientCredits):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Insufficient credits!", nil)
		case errors.Is(err, ledger.ErrNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
		default:
			log.Printf("Error recording game play: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to start game session!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Game session ready!", fiber.Map{
		"transactionId":  txn.ID,
		"game":           game.Name,
		"creditsCharged": game.EntryCredits,
		"loginUrl":       game.LoginURL,
		"form": fiber.Map{
			"username": game.AccountUsername,
			"password": game.AccountPassword,
		},
		"autoSubmit": true,
	})
}

// CreateGame adds a game to the catalog (admin only)
func (ct *Controller) CreateGame(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedGame").(*struct {
		Name            string `json:"name"`
		Slug            string `json:"slug"`
		LoginURL        string `json:"loginUrl"`
		AccountUsername string `json:"accountUsername"`
		AccountPassword string `json:"accountPassword"`
		EntryCredits    int64  `json:"entryCredits"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := ct.DB.Where("slug = ?", reqData.Slug).First(&models.Game{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Game slug already exists!", nil)
	}

	game := models.Game{
		Name:            reqData.Name,
		Slug:            reqData.Slug,
		LoginURL:        reqData.LoginURL,
		AccountUsername: reqData.AccountUsername,
		AccountPassword: reqData.AccountPassword,
		EntryCredits:    reqData.EntryCredits,
		IsActive:        true,
	}
	if err := ct.DB.Create(&game).Error; err != nil {
		log.Printf("Error creating game: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create game!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Game created!", game)
}
