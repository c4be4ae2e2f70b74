package repository

import "time"

// CreatorListFilter filter for creator listings
type CreatorListFilter struct {
	Page     int
	PageSize int
	Search   string
}

// LinkListFilter filter for link listings
type LinkListFilter struct {
	Page       int
	PageSize   int
	CreatorID  uint64
	Status     string
	OnlyActive bool
}

// WalletTransactionListFilter filter for wallet history listings
type WalletTransactionListFilter struct {
	Page        int
	PageSize    int
	CreatorID   uint64
	Type        string
	Direction   string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// UnlockTransactionListFilter filter for settlement listings
type UnlockTransactionListFilter struct {
	Page        int
	PageSize    int
	CreatorID   uint64
	LinkID      uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// WithdrawalListFilter filter for withdrawal listings
type WithdrawalListFilter struct {
	Page        int
	PageSize    int
	CreatorID   uint64
	Status      string
	Method      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
