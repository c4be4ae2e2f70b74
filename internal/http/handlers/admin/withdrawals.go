package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/telelink-next/internal/http/response"
	"github.com/telelink-next/internal/repository"
	"github.com/telelink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListWithdrawals pages through withdrawals across all creators
func (h *Handler) ListWithdrawals(c *gin.Context) {
	page, pageSize := pageParams(c)
	creatorID, _ := strconv.ParseUint(c.Query("creator_id"), 10, 64)

	rows, total, err := h.WithdrawalService.List(repository.WithdrawalListFilter{
		Page:      page,
		PageSize:  pageSize,
		CreatorID: creatorID,
		Status:    strings.TrimSpace(c.Query("status")),
		Method:    strings.TrimSpace(c.Query("method")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "withdrawal fetch failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetWithdrawal fetches one withdrawal
func (h *Handler) GetWithdrawal(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid withdrawal id", nil)
		return
	}
	withdrawal, err := h.WithdrawalService.GetByID(uint(id))
	if err != nil {
		respondError(c, response.CodeInternal, "withdrawal fetch failed", err)
		return
	}
	if withdrawal == nil {
		respondError(c, response.CodeNotFound, "withdrawal not found", nil)
		return
	}
	response.Success(c, withdrawal)
}

// ReviewWithdrawalRequest manual review request
type ReviewWithdrawalRequest struct {
	Action string `json:"action" binding:"required"` // approve / reject
	Reason string `json:"reason"`
}

// ReviewWithdrawal settles a pending withdrawal by hand.
// Approve marks it paid, reject refunds the wallet.
func (h *Handler) ReviewWithdrawal(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid withdrawal id", nil)
		return
	}
	var req ReviewWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	withdrawal, err := h.WithdrawalService.AdminOverride(uint(id), req.Action, adminID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "withdrawal not found", nil)
		case errors.Is(err, service.ErrWithdrawalNotPending):
			respondError(c, response.CodeConflict, "withdrawal already processed", nil)
		case errors.Is(err, service.ErrInvalidReviewAction):
			respondError(c, response.CodeBadRequest, "action must be approve or reject", nil)
		default:
			respondError(c, response.CodeInternal, "withdrawal review failed", err)
		}
		return
	}
	response.Success(c, withdrawal)
}
