package public

import (
	"errors"

	"github.com/telelink-next/internal/http/response"
	"github.com/telelink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterCreatorRequest creator upsert request
type RegisterCreatorRequest struct {
	ID         uint64 `json:"id" binding:"required"`
	Handle     string `json:"handle"`
	ReferredBy string `json:"referred_by"`
}

// RegisterCreator registers a creator or refreshes the stored handle.
// Safe to replay, the bot calls this on every /start.
func (h *Handler) RegisterCreator(c *gin.Context) {
	var req RegisterCreatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	creator, err := h.CreatorService.RegisterOrUpdate(service.CreatorRegisterInput{
		ID:         req.ID,
		Handle:     req.Handle,
		ReferredBy: req.ReferredBy,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCodeExhausted):
			respondError(c, response.CodeInternal, "referral code generation failed", err)
		default:
			respondError(c, response.CodeInternal, "creator save failed", err)
		}
		return
	}
	response.Success(c, creator)
}

// GetCreator fetches one creator profile
func (h *Handler) GetCreator(c *gin.Context) {
	id, ok := creatorIDParam(c)
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid creator id", nil)
		return
	}
	creator, err := h.CreatorService.GetByID(id)
	if err != nil {
		respondError(c, response.CodeInternal, "creator fetch failed", err)
		return
	}
	if creator == nil {
		respondError(c, response.CodeNotFound, "creator not found", nil)
		return
	}
	response.Success(c, creator)
}

// SetPayoutMethodRequest payout destination update request
type SetPayoutMethodRequest struct {
	UPI         string `json:"upi"`
	BankAccount string `json:"bank_account"`
	BankIFSC    string `json:"bank_ifsc"`
}

// SetPayoutMethod stores payout destinations, last write wins per field
func (h *Handler) SetPayoutMethod(c *gin.Context) {
	id, ok := creatorIDParam(c)
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid creator id", nil)
		return
	}
	var req SetPayoutMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	creator, err := h.CreatorService.SetPayoutMethod(id, service.CreatorPayoutInput{
		UPI:         req.UPI,
		BankAccount: req.BankAccount,
		BankIFSC:    req.BankIFSC,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCreatorNotFound):
			respondError(c, response.CodeNotFound, "creator not found", nil)
		case errors.Is(err, service.ErrInvalidPayoutMethod):
			respondError(c, response.CodeBadRequest, "bank account and ifsc must be set together", nil)
		default:
			respondError(c, response.CodeInternal, "payout method save failed", err)
		}
		return
	}
	response.Success(c, creator)
}

// ListCreatorLinks pages through a creator's links
func (h *Handler) ListCreatorLinks(c *gin.Context) {
	id, ok := creatorIDParam(c)
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid creator id", nil)
		return
	}
	page, pageSize := pageParams(c)

	links, total, err := h.LinkService.ListByCreator(id, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "link fetch failed", err)
		return
	}
	response.SuccessWithPage(c, links, response.BuildPagination(page, pageSize, total))
}
