package models

import (
	"time"
)

// User represents a wallet that has signed in
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	WalletAddress string    `gorm:"uniqueIndex;size:44;not null" json:"wallet_address"`
	Nickname      string    `gorm:"size:40" json:"nickname"`
	LastLoginAt   time.Time `json:"last_login_at"`
	LastSignedAt  int64     `gorm:"not null;default:0" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
