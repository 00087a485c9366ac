package models

import (
	"time"
)

// User represents a platform user. Registration and sessions are handled by
// the web layer; the engines only read identity, wallet, and point totals.
type User struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Username      string `gorm:"uniqueIndex;not null;size:255" json:"username"`
	Email         string `gorm:"size:255" json:"email"`
	WalletAddress string `gorm:"size:128" json:"wallet_address,omitempty"`
	TotalPoints   int64  `gorm:"not null;default:0" json:"total_points"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}

// HasWallet reports whether the user has connected a ledger wallet.
// Reward claims require a connected wallet.
func (u *User) HasWallet() bool {
	return u.WalletAddress != ""
}
