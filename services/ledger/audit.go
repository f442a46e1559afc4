package ledger

import (
	"playvault/models"
)

// AuditResult is one user's balance checked against their transaction history.
type AuditResult struct {
	UserID    uint
	Email     string
	Credits   int64
	LedgerSum int64
}

// Balanced reports whether the stored balance matches the ledger sum.
func (r AuditResult) Balanced() bool {
	return r.Credits == r.LedgerSum
}

// AuditUser recomputes the sum of a user's transaction amounts and compares it
// to the stored balance. Read-only.
func (l *Ledger) AuditUser(userID uint) (*AuditResult, error) {
	var user models.User
	if err := l.db.First(&user, userID).Error; err != nil {
		return nil, ErrNotFound
	}

	var sum int64
	err := l.db.Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return nil, err
	}

	return &AuditResult{
		UserID:    user.ID,
		Email:     user.Email,
		Credits:   user.Credits,
		LedgerSum: sum,
	}, nil
}

// AuditAll checks every non-deleted user and returns only those whose balance
// has drifted from their ledger sum.
func (l *Ledger) AuditAll() ([]AuditResult, error) {
	var users []models.User
	if err := l.db.Where("is_deleted = false").Find(&users).Error; err != nil {
		return nil, err
	}

	var drifted []AuditResult
	for _, user := range users {
		result, err := l.AuditUser(user.ID)
		if err != nil {
			return nil, err
		}
		if !result.Balanced() {
			drifted = append(drifted, *result)
		}
	}
	return drifted, nil
}
