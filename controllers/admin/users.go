package adminController

import (
	"playvault/middleware"
	"playvault/models"

	"github.com/gofiber/fiber/v2"
)

// ListUsers returns all non-deleted users with pagination
func (ct *Controller) ListUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	var users []models.User
	var total int64

	ct.DB.Model(&models.User{}).Where("is_deleted = false").Count(&total)

	if err := ct.DB.
		Where("is_deleted = false").
		Offset(offset).
		Limit(limit).
		Find(&users).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch user list!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User List.", fiber.Map{
		"users": users,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// DeleteUser soft-deletes a user. Their ledger rows are kept; only access goes.
func (ct *Controller) DeleteUser(c *fiber.Ctx) error {
	adminId := c.Locals("userId").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid user id!", nil)
	}
	if uint(id) == adminId {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You cannot delete your own account!", nil)
	}

	var user models.User
	if err := ct.DB.Where("id = ? AND is_deleted = false", id).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	if err := ct.DB.Model(&user).Update("is_deleted", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete user!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User deleted.", fiber.Map{
		"userId": user.ID,
	})
}

// GetStats returns dashboard counters for the admin overview
func (ct *Controller) GetStats(c *fiber.Ctx) error {
	var totalUsers, pendingPurchases, completedPurchases, pendingRedemptions int64
	var outstandingCredits int64

	ct.DB.Model(&models.User{}).Where("is_deleted = false").Count(&totalUsers)
	ct.DB.Model(&models.CreditPurchaseRequest{}).
		Where("status <> ?", models.PurchaseStatusCompleted).
		Count(&pendingPurchases)
	ct.DB.Model(&models.CreditPurchaseRequest{}).
		Where("status = ?", models.PurchaseStatusCompleted).
		Count(&completedPurchases)
	ct.DB.Model(&models.Transaction{}).
		Where("type = ? AND status = ?", models.TransactionTypeRedemption, models.TransactionStatusPending).
		Count(&pendingRedemptions)
	ct.DB.Model(&models.User{}).
		Where("is_deleted = false").
		Select("COALESCE(SUM(credits), 0)").
		Scan(&outstandingCredits)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched!", fiber.Map{
		"totalUsers":         totalUsers,
		"pendingPurchases":   pendingPurchases,
		"completedPurchases": completedPurchases,
		"pendingRedemptions": pendingRedemptions,
		"outstandingCredits": outstandingCredits,
		"outstandingUSD":     float64(outstandingCredits) * models.CreditRateUSD,
	})
}
