package public

import (
	"errors"
	"strings"

	"github.com/telelink-next/internal/http/response"
	"github.com/telelink-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RequestWithdrawalRequest withdrawal request body
type RequestWithdrawalRequest struct {
	CreatorID   uint64 `json:"creator_id" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Method      string `json:"method" binding:"required"`
	Destination string `json:"destination"`
}

// RequestWithdrawal debits the wallet and opens a pending withdrawal
func (h *Handler) RequestWithdrawal(c *gin.Context) {
	var req RequestWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid amount", nil)
		return
	}

	withdrawal, err := h.WithdrawalService.Request(service.WithdrawRequestInput{
		CreatorID:   req.CreatorID,
		Amount:      amount,
		Method:      req.Method,
		Destination: req.Destination,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCreatorNotFound):
			respondError(c, response.CodeNotFound, "creator not found", nil)
		case errors.Is(err, service.ErrInvalidPayoutMethod):
			respondError(c, response.CodeBadRequest, "unsupported payout method", nil)
		case errors.Is(err, service.ErrPayoutMethodNotSet):
			respondError(c, response.CodeBadRequest, "payout destination not configured", nil)
		case errors.Is(err, service.ErrInvalidAmount):
			respondError(c, response.CodeBadRequest, "amount must be positive", nil)
		case errors.Is(err, service.ErrInsufficientBalance):
			respondError(c, response.CodeBadRequest, "insufficient balance", nil)
		case errors.Is(err, service.ErrBelowMinimum):
			respondError(c, response.CodeBadRequest, "amount below minimum withdrawal", nil)
		default:
			respondError(c, response.CodeInternal, "withdrawal request failed", err)
		}
		return
	}
	response.Success(c, withdrawal)
}
