package models

import (
	"time"
)

// WalletAccount per creator balance row, created on first touch
type WalletAccount struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	CreatorID      uint64    `gorm:"not null;uniqueIndex" json:"creator_id"`
	Balance        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`         // withdrawable balance
	TotalEarned    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_earned"`    // lifetime sale earnings
	ReferralEarned Money     `gorm:"type:decimal(20,2);not null;default:0" json:"referral_earned"` // lifetime referral earnings
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName sets the table name
func (WalletAccount) TableName() string {
	return "wallet_accounts"
}
