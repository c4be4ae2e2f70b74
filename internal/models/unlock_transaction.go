package models

import (
	"time"
)

// UnlockTransaction immutable settlement record for one paid unlock
type UnlockTransaction struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	EventID       string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"event_id"`     // gateway event id, dedupe key
	LinkID        uint      `gorm:"not null;index" json:"link_id"`
	LinkCode      string    `gorm:"type:varchar(32);not null;index" json:"link_code"`
	BuyerID       uint64    `gorm:"not null;index" json:"buyer_id"`                            // paying user id
	CreatorID     uint64    `gorm:"not null;index" json:"creator_id"`                          // link owner
	ReferrerID    *uint64   `gorm:"index" json:"referrer_id"`                                  // nil when no referral share applies
	Gross         Money     `gorm:"type:decimal(20,2);not null" json:"gross"`
	CreatorShare  Money     `gorm:"type:decimal(20,2);not null" json:"creator_share"`
	PlatformShare Money     `gorm:"type:decimal(20,2);not null" json:"platform_share"`         // platform share net of referral
	ReferralShare Money     `gorm:"type:decimal(20,2);not null" json:"referral_share"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

// TableName sets the table name
func (UnlockTransaction) TableName() string {
	return "unlock_transactions"
}
