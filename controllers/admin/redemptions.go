package adminController

import (
	"errors"
	"log"

	"playvault/middleware"
	"playvault/models"
	"playvault/services/ledger"

	"github.com/gofiber/fiber/v2"
)

// ListRedemptions returns redemption transactions, optionally filtered by status
func (ct *Controller) ListRedemptions(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	status := c.Query("status")

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	query := ct.DB.Model(&models.Transaction{}).Where("type = ?", models.TransactionTypeRedemption)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var redemptions []models.Transaction
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&redemptions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch redemptions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Redemptions fetched!", fiber.Map{
		"redemptions": redemptions,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// AttachRedemptionLink sets the payout URL on a redemption and notifies the
// user. Credits were already debited when the redemption was created.
func (ct *Controller) AttachRedemptionLink(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid redemption id!", nil)
	}

	reqData, ok := c.Locals("validatedAdminURL").(*struct {
		AdminURL string `json:"adminUrl"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	txn, err := ct.Ledger.AttachRedemptionLink(uint(id), reqData.AdminURL)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidLink):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Payout link must not be empty!", nil)
		case errors.Is(err, ledger.ErrNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Redemption not found!", nil)
		default:
			log.Printf("Error attaching payout link: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to attach payout link!", nil)
		}
	}

	var user models.User
	if err := ct.DB.First(&user, txn.UserID).Error; err == nil {
		ct.Notifier.RedemptionLinkAttached(user, *txn)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payout link attached!", fiber.Map{
		"transactionId": txn.ID,
		"status":        txn.Status,
		"adminUrl":      txn.AdminURL,
	})
}

// MarkRedemptionPaid flips a pending redemption to completed once the payout
// went out. A second call is rejected with 409.
func (ct *Controller) MarkRedemptionPaid(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid redemption id!", nil)
	}

	txn, err := ct.Ledger.MarkRedemptionPaid(uint(id))
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Redemption not found!", nil)
		case errors.Is(err, ledger.ErrAlreadyPaid):
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Redemption already marked paid!", nil)
		default:
			log.Printf("Error marking redemption %d paid: %v", id, err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark redemption paid!", nil)
		}
	}

	var user models.User
	if err := ct.DB.First(&user, txn.UserID).Error; err == nil {
		ct.Notifier.RedemptionPaid(user, *txn)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Redemption marked paid!", fiber.Map{
		"transactionId": txn.ID,
		"status":        txn.Status,
	})
}
