package public

import (
	"errors"

	"github.com/telelink-next/internal/http/response"
	"github.com/telelink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetWallet returns the creator's wallet account
func (h *Handler) GetWallet(c *gin.Context) {
	id, ok := creatorIDParam(c)
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid creator id", nil)
		return
	}
	account, err := h.WalletService.GetWallet(id)
	if err != nil {
		if errors.Is(err, service.ErrCreatorNotFound) {
			respondError(c, response.CodeNotFound, "creator not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "wallet fetch failed", err)
		return
	}
	response.Success(c, account)
}

// GetCreatorStats returns aggregated sales numbers for one creator
func (h *Handler) GetCreatorStats(c *gin.Context) {
	id, ok := creatorIDParam(c)
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid creator id", nil)
		return
	}
	stats, err := h.WalletService.GetCreatorStats(id)
	if err != nil {
		if errors.Is(err, service.ErrCreatorNotFound) {
			respondError(c, response.CodeNotFound, "creator not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "stats fetch failed", err)
		return
	}
	response.Success(c, stats)
}

// ListWalletTransactions pages through a creator's wallet history
func (h *Handler) ListWalletTransactions(c *gin.Context) {
	id, ok := creatorIDParam(c)
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid creator id", nil)
		return
	}
	page, pageSize := pageParams(c)

	rows, total, err := h.WalletService.ListTransactions(id, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "transaction fetch failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// ListCreatorWithdrawals pages through a creator's withdrawals
func (h *Handler) ListCreatorWithdrawals(c *gin.Context) {
	id, ok := creatorIDParam(c)
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid creator id", nil)
		return
	}
	page, pageSize := pageParams(c)

	rows, total, err := h.WalletService.ListWithdrawals(id, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "withdrawal fetch failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}
