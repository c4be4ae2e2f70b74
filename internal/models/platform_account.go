package models

import (
	"time"
)

// PlatformAccount singleton aggregate of platform earnings
type PlatformAccount struct {
	ID                uint      `gorm:"primarykey" json:"id"`
	TotalEarnings     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_earnings"`      // platform net of referral payouts
	TotalReferralPaid Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_referral_paid"` // referral shares carved out of commission
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName sets the table name
func (PlatformAccount) TableName() string {
	return "platform_accounts"
}

// PlatformAccountID the singleton row id
const PlatformAccountID uint = 1
