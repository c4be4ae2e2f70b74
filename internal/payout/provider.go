package payout

import (
	"context"

	"github.com/shopspring/decimal"
)

// TransferInput one outbound transfer request
type TransferInput struct {
	TransferID  string          // idempotency key, stable per withdrawal
	Method      string          // upi / bank
	Destination string          // UPI id, or "IFSC|ACCOUNT" for bank
	Amount      decimal.Decimal // rupees
	Name        string          // beneficiary display name
}

// TransferResult provider acknowledgement
type TransferResult struct {
	ReferenceID  string // provider side reference
	Acknowledged bool
}

// Provider outbound money transfer interface
type Provider interface {
	Send(ctx context.Context, input TransferInput) (*TransferResult, error)
}
