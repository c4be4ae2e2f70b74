package models

import (
	"time"
)

// Link paid link listing
type Link struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatorID   uint64    `gorm:"not null;index" json:"creator_id"`
	Code        string    `gorm:"type:varchar(32);not null;uniqueIndex" json:"code"`         // unlock code
	URL         string    `gorm:"type:varchar(2048);not null" json:"url"`                    // protected destination
	Price       Money     `gorm:"type:decimal(20,2);not null" json:"price"`                  // unlock price, rupees
	Status      string    `gorm:"type:varchar(20);not null;index" json:"status"`             // active / inactive
	UnlockCount int64     `gorm:"not null;default:0" json:"unlock_count"`                    // settled unlocks
	Earnings    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"earnings"`     // gross settled through this link
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName sets the table name
func (Link) TableName() string {
	return "links"
}
