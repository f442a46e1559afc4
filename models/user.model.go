package models

import (
	"time"

	"gorm.io/gorm"
)

// CreditRateUSD is the fixed exchange rate: 1 credit = $0.01.
const CreditRateUSD = 0.01

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	gorm.Model
	Name      string    `gorm:"default:''" json:"name"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Mobile    string    `gorm:"default:''" json:"mobile"`
	Role      string    `gorm:"default:'USER'" json:"role"` // USER, ADMIN
	Password  string    `gorm:"not null" json:"-"`
	Credits   int64     `gorm:"not null;default:0" json:"credits"`
	LastLogin time.Time `gorm:"default:NULL" json:"lastLogin"`
	IsDeleted bool      `gorm:"default:false" json:"isDeleted"`
}

// USDBalance converts the credit balance at the fixed rate.
func (u *User) USDBalance() float64 {
	return float64(u.Credits) * CreditRateUSD
}
