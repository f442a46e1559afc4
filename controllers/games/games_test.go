package gamesController_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"playvault/config"
	gamesController "playvault/controllers/games"
	"playvault/database"
	"playvault/middleware"
	"playvault/models"
	"playvault/routers/gameRoutes"
	"playvault/services/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupApp(t *testing.T) (*fiber.App, *gorm.DB, *ledger.Ledger) {
	t.Helper()

	config.AppConfig = &config.Config{JWTKey: "test-secret"}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.RunMigrations(db))

	led := ledger.New(db)

	app := fiber.New()
	gameRoutes.SetupGameRoutes(app, gamesController.New(db, led))
	return app, db, led
}

func createUser(t *testing.T, db *gorm.DB) (models.User, string) {
	t.Helper()
	user := models.User{
		Name:     "Test Player",
		Email:    uuid.NewString() + "@test.io",
		Password: "hashed",
		Role:     models.RoleUser,
	}
	require.NoError(t, db.Create(&user).Error)

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email, user.Mobile)
	require.NoError(t, err)
	return user, token
}

func createGame(t *testing.T, db *gorm.DB, entryCredits int64, active bool) models.Game {
	t.Helper()
	game := models.Game{
		Name:            "Lucky Spins",
		Slug:            uuid.NewString(),
		LoginURL:        "https://luckyspins.example/login",
		AccountUsername: "house-account",
		AccountPassword: "house-secret",
		EntryCredits:    entryCredits,
		IsActive:        true,
	}
	require.NoError(t, db.Create(&game).Error)
	if !active {
		// The column defaults to true, so deactivation is an explicit update
		require.NoError(t, db.Model(&game).Update("is_active", false).Error)
	}
	return game
}

func fundUser(t *testing.T, led *ledger.Ledger, userID uint, credits int64) {
	t.Helper()
	req, err := led.CreatePurchase(userID, credits, float64(credits)*models.CreditRateUSD)
	require.NoError(t, err)
	_, err = led.ConfirmPurchase(req.ID)
	require.NoError(t, err)
}

func doPlay(t *testing.T, app *fiber.App, gameID interface{}, token string) (int, envelope) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/games/%v/play", gameID), nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestPlayGameReturnsLoginForm(t *testing.T) {
	app, db, led := setupApp(t)
	user, token := createUser(t, db)
	fundUser(t, led, user.ID, 500)
	game := createGame(t, db, 100, true)

	code, env := doPlay(t, app, game.ID, token)
	require.Equal(t, http.StatusOK, code, env.Message)

	var data struct {
		Game           string `json:"game"`
		CreditsCharged int64  `json:"creditsCharged"`
		LoginURL       string `json:"loginUrl"`
		AutoSubmit     bool   `json:"autoSubmit"`
		Form           struct {
			Username string `json:"username"`
			Password string `json:"password"`
		} `json:"form"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "Lucky Spins", data.Game)
	assert.Equal(t, int64(100), data.CreditsCharged)
	assert.Equal(t, "https://luckyspins.example/login", data.LoginURL)
	assert.True(t, data.AutoSubmit)
	assert.Equal(t, "house-account", data.Form.Username)
	assert.Equal(t, "house-secret", data.Form.Password)

	var updated models.User
	require.NoError(t, db.First(&updated, user.ID).Error)
	assert.Equal(t, int64(400), updated.Credits)

	var txn models.Transaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", user.ID, models.TransactionTypeGamePlay).First(&txn).Error)
	assert.Equal(t, int64(-100), txn.Amount)
	assert.Equal(t, game.ID, txn.GameID)
}

func TestPlayGameRejectsInsufficientCredits(t *testing.T) {
	app, db, _ := setupApp(t)
	user, token := createUser(t, db)
	game := createGame(t, db, 100, true)

	code, env := doPlay(t, app, game.ID, token)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Insufficient credits!", env.Message)

	var updated models.User
	require.NoError(t, db.First(&updated, user.ID).Error)
	assert.Equal(t, int64(0), updated.Credits)
}

func TestPlayGameUnknownOrInactive(t *testing.T) {
	app, db, led := setupApp(t)
	user, token := createUser(t, db)
	fundUser(t, led, user.ID, 500)
	inactive := createGame(t, db, 100, false)

	code, _ := doPlay(t, app, 99999, token)
	assert.Equal(t, http.StatusNotFound, code)

	code, env := doPlay(t, app, inactive.ID, token)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Game not found!", env.Message)

	// Balance untouched by rejected plays
	var updated models.User
	require.NoError(t, db.First(&updated, user.ID).Error)
	assert.Equal(t, int64(500), updated.Credits)
}
