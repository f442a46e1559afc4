package models

import (
	"gorm.io/gorm"
)

// Game is a third-party game site users enter through an auto-submitted login
// form. Account credentials are platform-owned and never serialized in listings.
type Game struct {
	gorm.Model
	Name            string `gorm:"not null" json:"name"`
	Slug            string `gorm:"unique;not null" json:"slug"`
	LoginURL        string `gorm:"not null" json:"loginUrl"`
	AccountUsername string `gorm:"not null" json:"-"`
	AccountPassword string `gorm:"not null" json:"-"`
	EntryCredits    int64  `gorm:"not null;default:100" json:"entryCredits"`
	IsActive        bool   `gorm:"default:true" json:"isActive"`
}
