package constants

// Withdrawal status constants
const (
	WithdrawStatusPending  = "pending"
	WithdrawStatusPaid     = "paid"
	WithdrawStatusFailed   = "failed"
	WithdrawStatusRejected = "rejected"
)

// Withdrawal payout method constants
const (
	PayoutMethodUPI  = "upi"
	PayoutMethodBank = "bank"
)

// Link status constants
const (
	LinkStatusActive   = "active"
	LinkStatusInactive = "inactive"
)

// Wallet transaction direction constants
const (
	WalletTxnDirectionIn  = "in"
	WalletTxnDirectionOut = "out"
)

// Wallet transaction type constants
const (
	WalletTxnTypeSale           = "sale"
	WalletTxnTypeReferral       = "referral"
	WalletTxnTypeWithdrawDebit  = "withdraw_debit"
	WalletTxnTypeWithdrawRefund = "withdraw_refund"
)

// Admin review action constants
const (
	ReviewActionApprove = "approve"
	ReviewActionReject  = "reject"
)

// Code generation constants; alphabet drops 0/O/1/I to stay readable in chat
const (
	CodeAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	CodeLength     = 8
	CodeMaxRetries = 8
)

// Queue constants
const (
	QueueDefault         = "default"
	QueueCritical        = "critical"
	TaskWithdrawalPayout = "withdrawal:payout"
	TaskWithdrawalNotify = "withdrawal:notify"
)

// Cache constants
const (
	RedisPrefixDefault = "tl"
)

// Currency constants
const (
	SiteCurrencyDefault = "INR"
)

// Payout reference prefix for idempotent transfer ids
const (
	PayoutTransferPrefix = "TLW_"
)
