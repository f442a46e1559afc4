package ledger

import (
	"errors"
	"fmt"

	"playvault/models"

	"gorm.io/gorm"
)

var (
	ErrInvalidAmount       = errors.New("amount must be a positive number of credits")
	ErrInvalidLink         = errors.New("payment link must not be empty")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrAlreadyConfirmed    = errors.New("purchase request already confirmed")
	ErrAlreadyPaid         = errors.New("redemption already marked paid")
	ErrNotFound            = errors.New("record not found")
)

// Ledger owns every balance mutation and workflow transition. All mutations run
// as conditional UPDATEs inside a database transaction, so two admins racing on
// the same request cannot double-credit a balance.
type Ledger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// CreatePurchase records a pending credit purchase request. The balance is not
// touched until an admin confirms payment.
func (l *Ledger) CreatePurchase(userID uint, credits int64, usdAmount float64) (*models.CreditPurchaseRequest, error) {
	if credits <= 0 || usdAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	var user models.User
	if err := l.db.Where("id = ? AND is_deleted = false", userID).First(&user).Error; err != nil {
		return nil, ErrNotFound
	}

	req := &models.CreditPurchaseRequest{
		UserID:           userID,
		CreditsRequested: credits,
		USDAmount:        usdAmount,
		Status:           models.PurchaseStatusPending,
	}
	if err := l.db.Create(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

func (l *Ledger) GetPurchase(id uint) (*models.CreditPurchaseRequest, error) {
	var req models.CreditPurchaseRequest
	if err := l.db.First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// AttachPaymentLink sets the admin payment URL on a purchase request and
// promotes a pending request to payment_link_sent. Re-attaching overwrites the
// URL; the stored status never moves backward. The promotion is decided inside
// the UPDATE itself, so a confirm landing between a read and this write cannot
// be overwritten back to payment_link_sent.
func (l *Ledger) AttachPaymentLink(id uint, url string) (*models.CreditPurchaseRequest, error) {
	if url == "" {
		return nil, ErrInvalidLink
	}

	res := l.db.Model(&models.CreditPurchaseRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"admin_url": url,
			"status": gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END",
				models.PurchaseStatusPending, models.PurchaseStatusLinkSent),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return l.GetPurchase(id)
}

// AttachPhoto stores the path of uploaded payment evidence. Status is untouched.
func (l *Ledger) AttachPhoto(id uint, path string) (*models.CreditPurchaseRequest, error) {
	req, err := l.GetPurchase(id)
	if err != nil {
		return nil, err
	}
	if err := l.db.Model(req).Update("photo_path", path).Error; err != nil {
		return nil, err
	}
	return req, nil
}

// ConfirmPurchase completes a purchase request: flips its status, credits the
// user, and appends the ledger transaction, all in one database transaction.
// The status flip is a conditional UPDATE; if another confirm already landed,
// zero rows match and ErrAlreadyConfirmed is returned with no ledger effect.
func (l *Ledger) ConfirmPurchase(id uint) (*models.CreditPurchaseRequest, error) {
	req, err := l.GetPurchase(id)
	if err != nil {
		return nil, err
	}

	err = l.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CreditPurchaseRequest{}).
			Where("id = ? AND status <> ?", id, models.PurchaseStatusCompleted).
			Update("status", models.PurchaseStatusCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyConfirmed
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", req.UserID).
			Update("credits", gorm.Expr("credits + ?", req.CreditsRequested)).Error; err != nil {
			return err
		}

		txn := models.Transaction{
			UserID:      req.UserID,
			Type:        models.TransactionTypePurchase,
			Amount:      req.CreditsRequested,
			USDValue:    req.USDAmount,
			Status:      models.TransactionStatusCompleted,
			Description: fmt.Sprintf("Credit purchase #%d confirmed", req.ID),
			AdminURL:    req.AdminURL,
		}
		return tx.Create(&txn).Error
	})
	if err != nil {
		return nil, err
	}

	req.Status = models.PurchaseStatusCompleted
	return req, nil
}

// Redeem debits the user's balance immediately and appends a pending redemption
// transaction. The platform treats redeemed credits as spent while an admin
// processes the payout out-of-band (escrow policy). The debit is a conditional
// UPDATE guarded on the current balance, so concurrent redemptions cannot
// overdraw.
func (l *Ledger) Redeem(userID uint, credits int64, description string) (*models.Transaction, error) {
	if credits <= 0 {
		return nil, ErrInvalidAmount
	}
	if description == "" {
		description = "Credit redemption"
	}

	var txn models.Transaction
	err := l.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND is_deleted = false AND credits >= ?", userID, credits).
			Update("credits", gorm.Expr("credits - ?", credits))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			tx.Model(&models.User{}).Where("id = ? AND is_deleted = false", userID).Count(&count)
			if count == 0 {
				return ErrNotFound
			}
			return ErrInsufficientCredits
		}

		txn = models.Transaction{
			UserID:      userID,
			Type:        models.TransactionTypeRedemption,
			Amount:      -credits,
			USDValue:    float64(credits) * models.CreditRateUSD,
			Status:      models.TransactionStatusPending,
			Description: description,
		}
		return tx.Create(&txn).Error
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (l *Ledger) getRedemption(txID uint) (*models.Transaction, error) {
	var txn models.Transaction
	err := l.db.Where("id = ? AND type = ?", txID, models.TransactionTypeRedemption).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// AttachRedemptionLink sets the payout URL on a redemption transaction. Credits
// were already debited at creation; this has no ledger effect.
func (l *Ledger) AttachRedemptionLink(txID uint, url string) (*models.Transaction, error) {
	if url == "" {
		return nil, ErrInvalidLink
	}

	txn, err := l.getRedemption(txID)
	if err != nil {
		return nil, err
	}
	if err := l.db.Model(txn).Update("admin_url", url).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

// MarkRedemptionPaid flips a pending redemption to completed once the admin has
// sent the payout. No balance effect. Idempotence guard mirrors ConfirmPurchase.
func (l *Ledger) MarkRedemptionPaid(txID uint) (*models.Transaction, error) {
	txn, err := l.getRedemption(txID)
	if err != nil {
		return nil, err
	}

	res := l.db.Model(&models.Transaction{}).
		Where("id = ? AND type = ? AND status <> ?", txID, models.TransactionTypeRedemption, models.TransactionStatusCompleted).
		Update("status", models.TransactionStatusCompleted)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyPaid
	}

	txn.Status = models.TransactionStatusCompleted
	return txn, nil
}

// RecordGamePlay debits the game's entry fee and appends a completed game_play
// transaction, guarded the same way as Redeem.
func (l *Ledger) RecordGamePlay(userID uint, game *models.Game) (*models.Transaction, error) {
	if game.EntryCredits <= 0 {
		return nil, ErrInvalidAmount
	}

	var txn models.Transaction
	err := l.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND is_deleted = false AND credits >= ?", userID, game.EntryCredits).
			Update("credits", gorm.Expr("credits - ?", game.EntryCredits))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			tx.Model(&models.User{}).Where("id = ? AND is_deleted = false", userID).Count(&count)
			if count == 0 {
				return ErrNotFound
			}
			return ErrInsufficientCredits
		}

		txn = models.Transaction{
			UserID:      userID,
			Type:        models.TransactionTypeGamePlay,
			Amount:      -game.EntryCredits,
			USDValue:    float64(game.EntryCredits) * models.CreditRateUSD,
			Status:      models.TransactionStatusCompleted,
			Description: "Game entry: " + game.Name,
			GameID:      game.ID,
		}
		return tx.Create(&txn).Error
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}
