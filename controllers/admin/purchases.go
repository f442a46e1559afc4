package adminController

import (
	"errors"
	"log"
	"strings"

	"playvault/middleware"
	"playvault/models"
	"playvault/services/ledger"
	"playvault/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const maxPhotoSize = 10 << 20 // 10 MB

type Controller struct {
	DB        *gorm.DB
	Ledger    *ledger.Ledger
	Notifier  *utils.Notifier
	UploadDir string
}

func New(db *gorm.DB, led *ledger.Ledger, notifier *utils.Notifier, uploadDir string) *Controller {
	return &Controller{DB: db, Ledger: led, Notifier: notifier, UploadDir: uploadDir}
}

// ListPurchases returns purchase requests, optionally filtered by status
func (ct *Controller) ListPurchases(c *fiber.Ctx) error {
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

	query := ct.DB.Model(&models.CreditPurchaseRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var requests []models.CreditPurchaseRequest
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&requests).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch purchase requests!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Purchase requests fetched!", fiber.Map{
		"requests": requests,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// AttachPaymentLink sets the payment URL on a purchase request and notifies the
// user. Re-setting overwrites the URL and re-notifies.
func (ct *Controller) AttachPaymentLink(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request id!", nil)
	}

	reqData, ok := c.Locals("validatedAdminURL").(*struct {
		AdminURL string `json:"adminUrl"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	req, err := ct.Ledger.AttachPaymentLink(uint(id), reqData.AdminURL)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidLink):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Payment link must not be empty!", nil)
		case errors.Is(err, ledger.ErrNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Purchase request not found!", nil)
		default:
			log.Printf("Error attaching payment link: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to attach payment link!", nil)
		}
	}

	var user models.User
	if err := ct.DB.First(&user, req.UserID).Error; err == nil {
		ct.Notifier.PaymentLinkAttached(user, *req)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment link attached!", fiber.Map{
		"id":       req.ID,
		"status":   req.Status,
		"stage":    req.Stage(),
		"adminUrl": req.AdminURL,
	})
}

// UploadPhoto attaches payment evidence to a purchase request. Images only,
// 10 MB cap. Status is untouched.
func (ct *Controller) UploadPhoto(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request id!", nil)
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Photo file is required!", nil)
	}
	if file.Size > maxPhotoSize {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Photo must be 10 MB or smaller!", nil)
	}
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Only image uploads are allowed!", nil)
	}

	path, err := utils.SaveUploadedFile(file, ct.UploadDir)
	if err != nil {
		log.Printf("Error saving uploaded photo: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save photo!", nil)
	}

	req, err := ct.Ledger.AttachPhoto(uint(id), path)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Purchase request not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to attach photo!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Photo attached!", fiber.Map{
		"id":        req.ID,
		"photoPath": req.PhotoPath,
		"photoUrl":  utils.GetFileURL(req.PhotoPath),
	})
}

// ConfirmPayment completes a purchase request and credits the user. A second
// confirm on the same request is rejected with 409 and has no ledger effect.
func (ct *Controller) ConfirmPayment(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request id!", nil)
	}

	req, err := ct.Ledger.ConfirmPurchase(uint(id))
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Purchase request not found!", nil)
		case errors.Is(err, ledger.ErrAlreadyConfirmed):
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Purchase request already confirmed!", nil)
		default:
			log.Printf("Error confirming purchase %d: %v", id, err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to confirm payment!", nil)
		}
	}

	var user models.User
	if err := ct.DB.First(&user, req.UserID).Error; err == nil {
		ct.Notifier.PurchaseConfirmed(user, *req)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment confirmed, credits added!", fiber.Map{
		"id":            req.ID,
		"status":        req.Status,
		"stage":         req.Stage(),
		"creditsAdded":  req.CreditsRequested,
		"userBalance":   user.Credits,
		"transactionOf": req.UserID,
	})
}
