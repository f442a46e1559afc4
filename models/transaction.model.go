package models

import (
	"gorm.io/gorm"
)

// TransactionType defines the type of ledger transaction
type TransactionType string

const (
	TransactionTypePurchase   TransactionType = "purchase"
	TransactionTypeRedemption TransactionType = "redemption"
	TransactionTypeGamePlay   TransactionType = "game_play"
)

// TransactionStatus defines the status of a transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is an append-only ledger row. Amount is signed credits; the sum of
// a user's amounts must always equal their current balance. Rows are never deleted.
type Transaction struct {
	gorm.Model
	UserID      uint              `gorm:"not null;index" json:"userId"`
	Type        TransactionType   `gorm:"type:varchar(20);not null" json:"type"`
	Amount      int64             `gorm:"not null" json:"amount"`
	USDValue    float64           `gorm:"not null" json:"usdValue"`
	Status      TransactionStatus `gorm:"type:varchar(20);default:'completed'" json:"status"`
	Description string            `gorm:"type:text" json:"description"`

	// Payout link attached by an admin (redemptions)
	AdminURL string `gorm:"type:varchar(512)" json:"adminUrl"`

	// Game reference (game_play only)
	GameID uint `gorm:"default:0" json:"gameId,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}
