package models

import (
	"gorm.io/gorm"
)

// PurchaseStatus is the stored workflow status of a credit purchase request.
// It only ever moves forward: pending -> payment_link_sent -> completed.
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusLinkSent  PurchaseStatus = "payment_link_sent"
	PurchaseStatusCompleted PurchaseStatus = "completed"
)

// Stage is the client-facing phase derived from stored status + payment link presence.
type Stage string

const (
	StagePending    Stage = "pending"
	StageProcessing Stage = "processing"
	StageURLSent    Stage = "url_sent"
	StageCompleted  Stage = "completed"
)

// CreditPurchaseRequest tracks a user's ask to convert USD into credits. Admins
// fulfill it out-of-band: attach a payment link, optionally attach photo evidence
// of payment, then confirm to credit the balance.
type CreditPurchaseRequest struct {
	gorm.Model
	UserID           uint           `gorm:"not null;index" json:"userId"`
	CreditsRequested int64          `gorm:"not null" json:"creditsRequested"`
	USDAmount        float64        `gorm:"not null" json:"usdAmount"`
	Status           PurchaseStatus `gorm:"type:varchar(30);default:'pending'" json:"status"`
	AdminURL         string         `gorm:"type:varchar(512)" json:"adminUrl"`
	PhotoPath        string         `gorm:"type:varchar(512)" json:"photoPath"`
	CashappLink      string         `gorm:"type:varchar(512)" json:"cashappLink"`
	SheetRowID       int64          `gorm:"default:0" json:"sheetRowId"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (CreditPurchaseRequest) TableName() string {
	return "credit_purchase_requests"
}

// DeriveStage maps stored workflow state to the client-facing stage. Total over
// every status and admin-URL combination; unknown statuses read as pending.
func DeriveStage(status PurchaseStatus, adminURL string) Stage {
	switch status {
	case PurchaseStatusCompleted:
		return StageCompleted
	case PurchaseStatusLinkSent:
		return StageURLSent
	case PurchaseStatusPending:
		if adminURL != "" {
			return StageProcessing
		}
		return StagePending
	default:
		return StagePending
	}
}

// Stage returns the derived stage of this request.
func (r *CreditPurchaseRequest) Stage() Stage {
	return DeriveStage(r.Status, r.AdminURL)
}
