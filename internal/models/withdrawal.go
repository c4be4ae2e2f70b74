package models

import (
	"time"
)

// Withdrawal payout request, debited optimistically at request time
type Withdrawal struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	CreatorID     uint64     `gorm:"not null;index" json:"creator_id"`
	Amount        Money      `gorm:"type:decimal(20,2);not null" json:"amount"`
	Method        string     `gorm:"type:varchar(16);not null" json:"method"`           // upi / bank
	Destination   string     `gorm:"type:varchar(255);not null" json:"destination"`     // payout destination snapshot
	Status        string     `gorm:"type:varchar(20);not null;index" json:"status"`     // pending / paid / failed / rejected
	ExternalRef   string     `gorm:"type:varchar(128)" json:"external_ref"`             // provider transfer reference
	FailureReason string     `gorm:"type:varchar(255)" json:"failure_reason"`
	ProcessedBy   *uint      `gorm:"index" json:"processed_by"`                         // admin id for manual overrides
	ProcessedAt   *time.Time `json:"processed_at"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName sets the table name
func (Withdrawal) TableName() string {
	return "withdrawals"
}
