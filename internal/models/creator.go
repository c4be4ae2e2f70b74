package models

import (
	"time"
)

// Creator registered link seller, keyed by the external chat user id
type Creator struct {
	ID                uint64    `gorm:"primarykey;autoIncrement:false" json:"id"`                   // external user id
	Handle            string    `gorm:"type:varchar(64)" json:"handle"`                             // display handle
	ReferralCode      string    `gorm:"type:varchar(32);not null;uniqueIndex" json:"referral_code"` // own referral code
	ReferredBy        string    `gorm:"type:varchar(32);index" json:"referred_by"`                  // referral code entered at signup, first write wins
	PayoutUPI         string    `gorm:"type:varchar(128)" json:"payout_upi"`                        // UPI id
	PayoutBankAccount string    `gorm:"type:varchar(64)" json:"payout_bank_account"`                // bank account number
	PayoutBankIFSC    string    `gorm:"type:varchar(16)" json:"payout_bank_ifsc"`                   // bank IFSC
	CreatedAt         time.Time `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName sets the table name
func (Creator) TableName() string {
	return "creators"
}
