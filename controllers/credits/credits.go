package creditsController

import (
	"errors"
	"log"

	"playvault/middleware"
	"playvault/models"
	"playvault/services/ledger"
	"playvault/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SheetAppender mirrors purchase requests to an external spreadsheet.
type SheetAppender interface {
	AppendPurchaseRow(req *models.CreditPurchaseRequest, user *models.User) (int64, error)
}

type Controller struct {
	DB       *gorm.DB
	Ledger   *ledger.Ledger
	Notifier *utils.Notifier
	Sheets   SheetAppender // optional; nil disables mirroring
}

func New(db *gorm.DB, led *ledger.Ledger, notifier *utils.Notifier, sheets SheetAppender) *Controller {
	return &Controller{DB: db, Ledger: led, Notifier: notifier, Sheets: sheets}
}

// CreatePurchase records a pending purchase request and mirrors it to the staff
// spreadsheet. Mirroring is best-effort; its failure never fails the request.
func (ct *Controller) CreatePurchase(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedPurchase").(*struct {
		CreditsRequested int64   `json:"creditsRequested"`
		USDAmount        float64 `json:"usdAmount"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	req, err := ct.Ledger.CreatePurchase(userId, reqData.CreditsRequested, reqData.USDAmount)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Credits and USD amount must be greater than 0!", nil)
		case errors.Is(err, ledger.ErrNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
		default:
			log.Printf("Error creating purchase request: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create purchase request!", nil)
		}
	}

	if ct.Sheets != nil {
		go ct.mirrorPurchase(*req)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Credit purchase request created!", fiber.Map{
		"id":               req.ID,
		"status":           req.Status,
		"stage":            req.Stage(),
		"creditsRequested": req.CreditsRequested,
		"usdAmount":        req.USDAmount,
		"createdAt":        req.CreatedAt,
	})
}

func (ct *Controller) mirrorPurchase(req models.CreditPurchaseRequest) {
	var user models.User
	if err := ct.DB.First(&user, req.UserID).Error; err != nil {
		log.Printf("[SHEETS] user lookup for purchase %d failed: %v", req.ID, err)
		return
	}

	rowID, err := ct.Sheets.AppendPurchaseRow(&req, &user)
	if err != nil {
		log.Printf("[SHEETS] mirror append for purchase %d failed: %v", req.ID, err)
		return
	}
	if rowID > 0 {
		ct.DB.Model(&models.CreditPurchaseRequest{}).
			Where("id = ?", req.ID).
			Update("sheet_row_id", rowID)
	}
}

// PurchaseStatus returns the stored workflow state plus the derived stage the
// client poller consumes. Owner or admin only.
func (ct *Controller) PurchaseStatus(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request id!", nil)
	}

	var viewer models.User
	if err := ct.DB.Where("id = ? AND is_deleted = false", userId).First(&viewer).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	req, err := ct.Ledger.GetPurchase(uint(id))
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Purchase request not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch purchase request!", nil)
	}

	if req.UserID != viewer.ID && viewer.Role != models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have access to this request!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Purchase status fetched!", fiber.Map{
		"id":               req.ID,
		"status":           req.Status,
		"stage":            req.Stage(),
		"adminUrl":         req.AdminURL,
		"creditsRequested": req.CreditsRequested,
		"usdAmount":        req.USDAmount,
		"createdAt":        req.CreatedAt,
		"updatedAt":        req.UpdatedAt,
	})
}

// RedeemCredits debits the balance immediately and records a pending redemption
// transaction for an admin to pay out.
func (ct *Controller) RedeemCredits(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedRedeem").(*struct {
		CreditsToRedeem int64  `json:"creditsToRedeem"`
		Description     string `json:"description"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	txn, err := ct.Ledger.Redeem(userId, reqData.CreditsToRedeem, reqData.Description)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Credits to redeem must be greater than 0!", nil)
		case errors.Is(err, ledger.ErrInsufficientCredits):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Insufficient credits!", nil)
		case errors.Is(err, ledger.ErrNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
		default:
			log.Printf("Error recording redemption: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to redeem credits!", nil)
		}
	}

	resp := fiber.Map{
		"transactionId": txn.ID,
		"amount":        txn.Amount,
		"usdValue":      txn.USDValue,
		"status":        txn.Status,
	}

	// Balance is included only when the re-read succeeds
	var user models.User
	if err := ct.DB.First(&user, userId).Error; err == nil {
		ct.Notifier.RedemptionRecorded(user, *txn)
		resp["balance"] = user.Credits
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Redemption recorded!", resp)
}

// GetBalance returns the user's current credit balance
func (ct *Controller) GetBalance(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var user models.User
	if err := ct.DB.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Credit balance fetched!", fiber.Map{
		"credits":    user.Credits,
		"usdBalance": user.USDBalance(),
	})
}

// GetHistory returns the user's transaction history
func (ct *Controller) GetHistory(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var user models.User
	if err := ct.DB.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	// Parse query params
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	txnType := c.Query("type") // purchase, redemption, game_play

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	offset := (page - 1) * limit

	query := ct.DB.Model(&models.Transaction{}).Where("user_id = ?", userId)
	if txnType != "" {
		query = query.Where("type = ?", txnType)
	}

	var total int64
	query.Count(&total)

	var transactions []models.Transaction
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&transactions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Transaction history fetched!", fiber.Map{
		"transactions":   transactions,
		"currentBalance": user.Credits,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}
