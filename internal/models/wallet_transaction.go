package models

import (
	"time"
)

// WalletTransaction wallet movement history row
type WalletTransaction struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatorID    uint64    `gorm:"not null;index" json:"creator_id"`
	Type         string    `gorm:"type:varchar(32);not null;index" json:"type"`              // sale / referral / withdraw_debit / withdraw_refund
	Direction    string    `gorm:"type:varchar(8);not null" json:"direction"`                // in / out
	Amount       Money     `gorm:"type:decimal(20,2);not null" json:"amount"`                // always positive
	BalanceAfter Money     `gorm:"type:decimal(20,2);not null" json:"balance_after"`         // balance snapshot after the movement
	Reference    string    `gorm:"type:varchar(128);not null;uniqueIndex" json:"reference"`  // idempotency reference
	Remark       string    `gorm:"type:varchar(255)" json:"remark"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

// TableName sets the table name
func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
