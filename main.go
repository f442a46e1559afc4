package main

import (
	"context"
	"log"

	"playvault/config"
	authController "playvault/controllers/auth"
	creditsController "playvault/controllers/credits"
	gamesController "playvault/controllers/games"
	"playvault/database"
	"playvault/routers/adminRoutes"
	"playvault/routers/authRoutes"
	"playvault/routers/creditRoutes"
	"playvault/routers/gameRoutes"
	"playvault/services/ledger"
	"playvault/utils"

	adminController "playvault/controllers/admin"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Database setup failed: %v", err)
	}

	// Process-scoped clients, passed down explicitly
	mailer := utils.NewMailer(cfg.SendGridKey, cfg.EmailSender)
	var sms *utils.SMSClient
	if cfg.SMSApiURL != "" {
		sms = utils.NewSMSClient(cfg.SMSApiURL, cfg.SMSApiKey, cfg.SMSSenderID)
	}
	notifier := utils.NewNotifier(mailer, sms)

	var sheetMirror creditsController.SheetAppender
	if cfg.SheetsSpreadsheetID != "" {
		mirror, err := utils.NewSheetMirror(context.Background(), cfg.SheetsCredentialsFile, cfg.SheetsSpreadsheetID)
		if err != nil {
			log.Printf("Warning: sheets mirror disabled: %v", err)
		} else {
			sheetMirror = mirror
		}
	}

	led := ledger.New(db)

	authCtl := authController.New(db, notifier)
	creditsCtl := creditsController.New(db, led, notifier, sheetMirror)
	adminCtl := adminController.New(db, led, notifier, cfg.UploadDir)
	gamesCtl := gamesController.New(db, led)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Serve uploaded payment evidence
	app.Static("/uploads", cfg.UploadDir)

	authRoutes.SetupAuthRoutes(app, authCtl)
	creditRoutes.SetupCreditRoutes(app, creditsCtl)
	gameRoutes.SetupGameRoutes(app, gamesCtl)
	adminRoutes.SetupAdminRoutes(app, db, adminCtl, gamesCtl)

	audit := utils.StartLedgerAudit(led)
	defer audit.Stop()

	log.Printf("Server is running on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
