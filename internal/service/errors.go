package service

import "errors"

// Shared service sentinel errors, mapped to response codes by handlers.
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrWeakPassword       = errors.New("password too short")

	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidEvent  = errors.New("event id must not be empty")
	ErrInvalidPrice  = errors.New("price must be positive")
	ErrInvalidURL    = errors.New("url must not be empty")

	ErrUnknownLink  = errors.New("unknown or inactive link")
	ErrOrphanedLink = errors.New("link owner no longer exists")
	ErrLinkNotOwned = errors.New("link belongs to another creator")

	ErrCreatorNotFound = errors.New("creator not found")
	ErrCodeExhausted   = errors.New("could not generate a unique code")

	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrBelowMinimum         = errors.New("amount below minimum withdrawal")
	ErrInvalidPayoutMethod  = errors.New("invalid payout method")
	ErrPayoutMethodNotSet   = errors.New("payout destination not configured")
	ErrWithdrawalNotPending = errors.New("withdrawal already processed")
	ErrInvalidReviewAction  = errors.New("invalid review action")
)
